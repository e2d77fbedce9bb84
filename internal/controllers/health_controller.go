package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// GormPinger adapts a *gorm.DB to Pinger.
type GormPinger struct {
	DB *gorm.DB
}

func (p GormPinger) PingContext(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health returns 503 when the database cannot be pinged within two seconds.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hc.db.PingContext(ctx); err != nil {
		logrus.WithError(err).Warn("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
