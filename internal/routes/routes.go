package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"route_registry/internal/controllers"
	"route_registry/internal/middleware"
)

// Dependencies are the controllers and writers the router is built from.
type Dependencies struct {
	Routes *controllers.RouteController
	Health *controllers.HealthController
	// AccessLog receives one line per request; nil disables request logging.
	AccessLog io.Writer
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Request logging middleware
	if deps.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(deps.AccessLog),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/health"}),
		))
	}

	// Renders every error attached with c.Error
	r.Use(middleware.ErrorHandler())

	HealthRoutes(r, deps.Health)
	RouteRoutes(r, deps.Routes)

	return r
}
