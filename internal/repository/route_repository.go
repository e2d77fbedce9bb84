package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"route_registry/internal/models"
)

// uniqueViolation is the SQLSTATE postgres reports for unique index conflicts.
const uniqueViolation = "23505"

var (
	ErrRouteNotFound       = errors.New("route not found")
	ErrDuplicateLineNumber = errors.New("duplicate line number")
)

// RouteRepository is durable keyed storage for routes.
type RouteRepository interface {
	ExistsByLineNumberCI(ctx context.Context, lineNumber string) (bool, error)
	FindAll(ctx context.Context) ([]models.Route, error)
	FindActive(ctx context.Context) ([]models.Route, error)
	FindByQueryCI(ctx context.Context, q string) ([]models.Route, error)
	FindByID(ctx context.Context, id uint) (*models.Route, error)
	// Save inserts the route when ID is zero and updates it otherwise.
	// Updating a route that no longer exists returns ErrRouteNotFound.
	// A unique index conflict is reported as ErrDuplicateLineNumber.
	Save(ctx context.Context, route *models.Route) error
	// DeleteByID succeeds whether or not the route exists.
	DeleteByID(ctx context.Context, id uint) error
	// WithTx runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(RouteRepository) error) error
}

type routeRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) RouteRepository {
	return &routeRepository{db: db}
}

func (r *routeRepository) ExistsByLineNumberCI(ctx context.Context, lineNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("LOWER(line_number) = LOWER(?)", lineNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *routeRepository) FindAll(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}
	err := r.db.WithContext(ctx).Order("id").Find(&routes).Error
	return routes, err
}

func (r *routeRepository) FindActive(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&routes).Error
	return routes, err
}

func (r *routeRepository) FindByQueryCI(ctx context.Context, q string) ([]models.Route, error) {
	pattern := "%" + escapeLike(q) + "%"
	routes := []models.Route{}
	err := r.db.WithContext(ctx).
		Where("line_number ILIKE ? OR name ILIKE ?", pattern, pattern).
		Order("id").
		Find(&routes).Error
	return routes, err
}

func (r *routeRepository) FindByID(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	if err := r.db.WithContext(ctx).First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (r *routeRepository) Save(ctx context.Context, route *models.Route) error {
	db := r.db.WithContext(ctx)
	if route.ID == 0 {
		return translateError(db.Create(route).Error)
	}

	// Updates, not Save: Save re-inserts a row that was deleted meanwhile.
	result := db.Model(route).Select("*").Omit("created_at").Updates(route)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRouteNotFound
	}
	return nil
}

func (r *routeRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Route{}, id).Error
}

func (r *routeRepository) WithTx(ctx context.Context, fn func(RouteRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&routeRepository{db: tx})
	})
}

// translateError maps unique violations from either driver onto
// ErrDuplicateLineNumber. gorm only translates pgx errors when
// TranslateError is on, so both driver error types are checked too.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateLineNumber
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateLineNumber
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateLineNumber
	}
	return err
}

// escapeLike makes %, _ and \ in q match literally under ILIKE.
func escapeLike(q string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
}
