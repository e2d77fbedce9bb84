package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server needs at start-up. Every key can be set
// through an environment variable of the same name in upper case, or through
// a .env file in the working directory.
type Config struct {
	Port               string         `mapstructure:"port"`
	GinMode            string         `mapstructure:"gin_mode"`
	LogLevel           string         `mapstructure:"log_level"`
	LogFile            string         `mapstructure:"log_file"`
	CORSAllowedOrigins string         `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration  `mapstructure:"shutdown_timeout"`
	Database           DatabaseConfig `mapstructure:",squash"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"db_driver"`
	Host            string        `mapstructure:"db_host"`
	Port            string        `mapstructure:"db_port"`
	User            string        `mapstructure:"db_user"`
	Password        string        `mapstructure:"db_password"`
	Name            string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"db_sslmode"`
	TimeZone        string        `mapstructure:"db_timezone"`
	MaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	MaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
}

var defaults = map[string]any{
	"port":                 "8080",
	"gin_mode":             "release",
	"log_level":            "info",
	"log_file":             "./logs/app.log",
	"cors_allowed_origins": "",
	"shutdown_timeout":     "10s",
	"db_driver":            "pgx",
	"db_host":              "localhost",
	"db_port":              "5432",
	"db_user":              "postgres",
	"db_password":          "password",
	"db_name":              "routes",
	"db_sslmode":           "disable",
	"db_timezone":          "UTC",
	"db_max_open_conns":    25,
	"db_max_idle_conns":    5,
	"db_conn_max_lifetime": "5m",
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want pgx or postgres)", c.Database.Driver)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS. An empty result means any
// origin is reflected back.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// DSN builds a key/value connection string understood by both pgx and lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}
