package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"route_registry/internal/services"
	"route_registry/internal/validation"
)

// RouteController maps the /api/routes endpoints onto RouteService.
// Failures are attached to the gin context and rendered by
// middleware.ErrorHandler; nothing here picks an error status.
type RouteController struct {
	service   services.RouteService
	validator *validation.Validator
}

func NewRouteController(service services.RouteService, validator *validation.Validator) *RouteController {
	return &RouteController{service: service, validator: validator}
}

// ListRoutes handles GET /api/routes?activeOnly=bool.
func (rc *RouteController) ListRoutes(c *gin.Context) {
	routes, err := rc.service.List(c.Request.Context(), optionalBool(c, "activeOnly"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// SearchRoutes handles GET /api/routes/search?q=text.
func (rc *RouteController) SearchRoutes(c *gin.Context) {
	var query *string
	if q, ok := c.GetQuery("q"); ok {
		query = &q
	}

	routes, err := rc.service.Search(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// GetRoute handles GET /api/routes/:id.
func (rc *RouteController) GetRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}

	route, err := rc.service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// CreateRoute handles POST /api/routes.
func (rc *RouteController) CreateRoute(c *gin.Context) {
	dto, ok := rc.bindRoute(c)
	if !ok {
		return
	}

	created, err := rc.service.Create(c.Request.Context(), dto)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/routes/%d", *created.ID))
	c.JSON(http.StatusCreated, created)
}

// UpdateRoute handles PUT /api/routes/:id.
func (rc *RouteController) UpdateRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	dto, ok := rc.bindRoute(c)
	if !ok {
		return
	}

	updated, err := rc.service.Update(c.Request.Context(), id, dto)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteRoute handles DELETE /api/routes/:id. Unknown ids still get 204.
func (rc *RouteController) DeleteRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}

	if err := rc.service.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindRoute decodes and validates the request body. The service is never
// reached with a body that failed validation.
func (rc *RouteController) bindRoute(c *gin.Context) (services.RouteDTO, bool) {
	var dto services.RouteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		logrus.WithError(err).Warn("route payload could not be decoded")
		fail(c, services.InvalidArgument("Malformed request body"))
		return dto, false
	}
	if err := rc.validator.Struct(&dto); err != nil {
		fail(c, err)
		return dto, false
	}
	return dto, true
}

func routeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, services.InvalidArgument("Invalid route id"))
		return 0, false
	}
	return uint(id), true
}

// optionalBool reads a boolean query parameter; missing or unparseable
// values are treated as absent.
func optionalBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
