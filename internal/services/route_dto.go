package services

import (
	"route_registry/internal/models"
)

// RouteDTO is the only route shape that crosses the API boundary.
type RouteDTO struct {
	ID         *uint   `json:"id"`
	LineNumber string  `json:"lineNumber" validate:"notblank,max=10"`
	Name       string  `json:"name" validate:"notblank,max=120"`
	StopsJSON  *string `json:"stopsJson" validate:"omitempty,max=4000"`
	Active     *bool   `json:"active"`
}

func toDTO(route models.Route) RouteDTO {
	id := route.ID
	active := route.Active
	return RouteDTO{
		ID:         &id,
		LineNumber: route.LineNumber,
		Name:       route.Name,
		StopsJSON:  route.StopsJSON,
		Active:     &active,
	}
}

func toDTOs(routes []models.Route) []RouteDTO {
	dtos := make([]RouteDTO, 0, len(routes))
	for _, r := range routes {
		dtos = append(dtos, toDTO(r))
	}
	return dtos
}

// toModel never copies the id; the store assigns it.
func toModel(dto RouteDTO) models.Route {
	return models.Route{
		LineNumber: dto.LineNumber,
		Name:       dto.Name,
		StopsJSON:  dto.StopsJSON,
		Active:     activeOrDefault(dto.Active),
	}
}

// applyDTO overwrites every mutable field of route with the values in dto.
func applyDTO(route *models.Route, dto RouteDTO) {
	route.LineNumber = dto.LineNumber
	route.Name = dto.Name
	route.StopsJSON = dto.StopsJSON
	route.Active = activeOrDefault(dto.Active)
}

func activeOrDefault(active *bool) bool {
	if active == nil {
		return true
	}
	return *active
}
