package routes

import (
	"github.com/gin-gonic/gin"

	"route_registry/internal/controllers"
)

func HealthRoutes(r *gin.Engine, hc *controllers.HealthController) {
	r.GET("/health", hc.Health)
}
