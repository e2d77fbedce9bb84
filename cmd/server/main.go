package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"route_registry/internal/config"
	"route_registry/internal/controllers"
	"route_registry/internal/logger"
	"route_registry/internal/middleware"
	"route_registry/internal/repository"
	"route_registry/internal/routes"
	"route_registry/internal/services"
	"route_registry/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	// Initialize structured logging to file
	logOut, logFile := logger.Setup(cfg.LogLevel, cfg.LogFile)
	defer logFile.Close()

	// Connect to the database
	db, err := config.OpenDB(cfg.Database, logger.NewGormLogger(logrus.StandardLogger()))
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	if err := config.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}

	repo := repository.NewRouteRepository(db)
	svc := services.NewRouteService(repo)

	gin.SetMode(cfg.GinMode)
	r := routes.SetupRouter(routes.Dependencies{
		Routes:    controllers.NewRouteController(svc, validation.New()),
		Health:    controllers.NewHealthController(controllers.GormPinger{DB: db}),
		AccessLog: logOut,
	})

	// Wrap with CORS
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           middleware.EnableCORS(r, cfg.AllowedOrigins()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
