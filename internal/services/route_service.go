package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"route_registry/internal/models"
	"route_registry/internal/repository"
)

type RouteService interface {
	List(ctx context.Context, activeOnly *bool) ([]RouteDTO, error)
	Search(ctx context.Context, query *string) ([]RouteDTO, error)
	Get(ctx context.Context, id uint) (RouteDTO, error)
	Create(ctx context.Context, dto RouteDTO) (RouteDTO, error)
	Update(ctx context.Context, id uint, dto RouteDTO) (RouteDTO, error)
	Delete(ctx context.Context, id uint) error
}

type routeService struct {
	repo repository.RouteRepository
}

func NewRouteService(repo repository.RouteRepository) RouteService {
	return &routeService{repo: repo}
}

// List returns every route, or only the active ones when activeOnly is true.
func (s *routeService) List(ctx context.Context, activeOnly *bool) ([]RouteDTO, error) {
	var (
		routes []models.Route
		err    error
	)
	if activeOnly != nil && *activeOnly {
		routes, err = s.repo.FindActive(ctx)
	} else {
		routes, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return toDTOs(routes), nil
}

// Search matches query against line number and name ignoring case.
// A nil or blank query returns every route.
func (s *routeService) Search(ctx context.Context, query *string) ([]RouteDTO, error) {
	q := ""
	if query != nil {
		q = strings.TrimSpace(*query)
	}
	if q == "" {
		return s.List(ctx, nil)
	}

	routes, err := s.repo.FindByQueryCI(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search routes: %w", err)
	}
	return toDTOs(routes), nil
}

func (s *routeService) Get(ctx context.Context, id uint) (RouteDTO, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return RouteDTO{}, notFound()
		}
		return RouteDTO{}, fmt.Errorf("get route %d: %w", id, err)
	}
	return toDTO(*route), nil
}

// Create rejects line numbers already taken by another route, ignoring case.
// Any id on dto is ignored.
func (s *routeService) Create(ctx context.Context, dto RouteDTO) (RouteDTO, error) {
	var created models.Route
	err := s.repo.WithTx(ctx, func(tx repository.RouteRepository) error {
		exists, err := tx.ExistsByLineNumberCI(ctx, dto.LineNumber)
		if err != nil {
			return fmt.Errorf("check line number: %w", err)
		}
		if exists {
			return duplicateKey()
		}

		created = toModel(dto)
		return tx.Save(ctx, &created)
	})
	if err != nil {
		return RouteDTO{}, s.translate(err, "create route")
	}

	logrus.WithFields(logrus.Fields{
		"route_id":    created.ID,
		"line_number": created.LineNumber,
	}).Info("route created")
	return toDTO(created), nil
}

// Update overwrites line number, name, stops and active flag in place.
// The line number is not re-checked against other routes.
func (s *routeService) Update(ctx context.Context, id uint, dto RouteDTO) (RouteDTO, error) {
	var updated models.Route
	err := s.repo.WithTx(ctx, func(tx repository.RouteRepository) error {
		route, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		applyDTO(route, dto)
		if err := tx.Save(ctx, route); err != nil {
			return err
		}
		updated = *route
		return nil
	})
	if err != nil {
		return RouteDTO{}, s.translate(err, "update route")
	}

	logrus.WithField("route_id", updated.ID).Info("route updated")
	return toDTO(updated), nil
}

// Delete is a no-op for unknown ids.
func (s *routeService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTx(ctx, func(tx repository.RouteRepository) error {
		return tx.DeleteByID(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete route %d: %w", id, err)
	}

	logrus.WithField("route_id", id).Debug("route deleted")
	return nil
}

// translate turns repository sentinels into business failures and wraps
// everything else as an infrastructure error.
func (s *routeService) translate(err error, op string) error {
	var bizErr *Error
	switch {
	case errors.As(err, &bizErr):
		return bizErr
	case errors.Is(err, repository.ErrRouteNotFound):
		return notFound()
	case errors.Is(err, repository.ErrDuplicateLineNumber):
		// A concurrent create won the race past our pre-check.
		logrus.WithField("op", op).Warn("unique index rejected line number")
		return duplicateKey()
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
