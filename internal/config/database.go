package config

import (
	"fmt"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"route_registry/internal/models"
)

// ciLineNumberIndex backs case-insensitive line number uniqueness. It catches
// concurrent creates that both pass the service's existence check.
const ciLineNumberIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uk_routes_line_number_ci ON routes (LOWER(line_number))`

// OpenDB connects to PostgreSQL through pgx, or through lib/pq when
// DB_DRIVER=postgres, and applies the pool settings.
func OpenDB(cfg DatabaseConfig, log gormlogger.Interface) (*gorm.DB, error) {
	dsn := cfg.DSN()

	var dialector gorm.Dialector
	if cfg.Driver == "postgres" {
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn})
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// Migrate creates or updates the routes table and its indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Route{}); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	if err := db.Exec(ciLineNumberIndex).Error; err != nil {
		return fmt.Errorf("create line number index: %w", err)
	}
	return nil
}
