package routes

import (
	"github.com/gin-gonic/gin"

	"route_registry/internal/controllers"
)

func RouteRoutes(r *gin.Engine, rc *controllers.RouteController) {
	api := r.Group("/api/routes")
	{
		api.GET("", rc.ListRoutes)
		api.GET("/search", rc.SearchRoutes)
		api.GET("/:id", rc.GetRoute)
		api.POST("", rc.CreateRoute)
		api.PUT("/:id", rc.UpdateRoute)
		api.DELETE("/:id", rc.DeleteRoute)
	}
}
