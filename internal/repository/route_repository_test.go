package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"route_registry/internal/config"
	"route_registry/internal/models"
	"route_registry/internal/repository"
)

// setupPostgres starts a throwaway PostgreSQL and returns a migrated
// connection. Tests are skipped with -short or when Docker is unavailable.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("routes"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:       "pgx",
		Host:         host,
		Port:         port.Port(),
		User:         "postgres",
		Password:     "postgres",
		Name:         "routes",
		SSLMode:      "disable",
		TimeZone:     "UTC",
		MaxOpenConns: 5,
		MaxIdleConns: 1,
	}
	db, err := config.OpenDB(cfg, gormlogger.Discard)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func truncate(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec("TRUNCATE routes RESTART IDENTITY").Error)
}

func strPtr(s string) *string { return &s }

func TestRouteRepository_Postgres(t *testing.T) {
	db := setupPostgres(t)
	repo := repository.NewRouteRepository(db)
	ctx := context.Background()

	seed := func(t *testing.T, routes ...models.Route) []models.Route {
		t.Helper()
		for i := range routes {
			require.NoError(t, repo.Save(ctx, &routes[i]))
			require.NotZero(t, routes[i].ID)
		}
		return routes
	}

	t.Run("save inserts then updates", func(t *testing.T) {
		truncate(t, db)
		r := seed(t, models.Route{LineNumber: "A1", Name: "Airport", StopsJSON: strPtr("[]"), Active: true})[0]

		r.Name = "Airport Express"
		r.Active = false
		r.StopsJSON = nil
		require.NoError(t, repo.Save(ctx, &r))

		got, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "Airport Express", got.Name)
		assert.False(t, got.Active)
		assert.Nil(t, got.StopsJSON)
	})

	t.Run("updating a deleted route does not bring it back", func(t *testing.T) {
		truncate(t, db)
		r := seed(t, models.Route{LineNumber: "U1", Name: "Before", Active: true})[0]

		loaded, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		require.NoError(t, repo.DeleteByID(ctx, r.ID))

		loaded.Name = "After"
		err = repo.Save(ctx, loaded)
		assert.ErrorIs(t, err, repository.ErrRouteNotFound)

		_, err = repo.FindByID(ctx, r.ID)
		assert.ErrorIs(t, err, repository.ErrRouteNotFound)
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("find by id reports missing rows", func(t *testing.T) {
		truncate(t, db)
		_, err := repo.FindByID(ctx, 12345)
		assert.ErrorIs(t, err, repository.ErrRouteNotFound)
	})

	t.Run("line number exists ignoring case", func(t *testing.T) {
		truncate(t, db)
		seed(t, models.Route{LineNumber: "Ab1", Name: "Mixed", Active: true})

		exists, err := repo.ExistsByLineNumberCI(ctx, "aB1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByLineNumberCI(ctx, "Ab")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unique index ignores case", func(t *testing.T) {
		truncate(t, db)
		seed(t, models.Route{LineNumber: "A1", Name: "First", Active: true})

		err := repo.Save(ctx, &models.Route{LineNumber: "a1", Name: "Second", Active: true})
		assert.ErrorIs(t, err, repository.ErrDuplicateLineNumber)
	})

	t.Run("find active and all", func(t *testing.T) {
		truncate(t, db)
		seed(t,
			models.Route{LineNumber: "1", Name: "One", Active: true},
			models.Route{LineNumber: "2", Name: "Two", Active: false},
			models.Route{LineNumber: "3", Name: "Three", Active: true},
		)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		active, err := repo.FindActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "1", active[0].LineNumber)
		assert.Equal(t, "3", active[1].LineNumber)
	})

	t.Run("query matches line number or name", func(t *testing.T) {
		truncate(t, db)
		seed(t,
			models.Route{LineNumber: "A1", Name: "Airport", Active: true},
			models.Route{LineNumber: "B7", Name: "Harbour via A1 road", Active: true},
			models.Route{LineNumber: "C3", Name: "100% Central", Active: true},
		)

		got, err := repo.FindByQueryCI(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, got, 2)

		got, err = repo.FindByQueryCI(ctx, "%")
		require.NoError(t, err)
		require.Len(t, got, 1, "wildcards must match literally")
		assert.Equal(t, "C3", got[0].LineNumber)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		truncate(t, db)
		r := seed(t, models.Route{LineNumber: "D1", Name: "Doomed", Active: true})[0]

		require.NoError(t, repo.DeleteByID(ctx, r.ID))
		require.NoError(t, repo.DeleteByID(ctx, r.ID))

		_, err := repo.FindByID(ctx, r.ID)
		assert.ErrorIs(t, err, repository.ErrRouteNotFound)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		truncate(t, db)
		boom := errors.New("boom")

		err := repo.WithTx(ctx, func(tx repository.RouteRepository) error {
			require.NoError(t, tx.Save(ctx, &models.Route{LineNumber: "T1", Name: "Temp", Active: true}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("concurrent duplicate inserts leave one row", func(t *testing.T) {
		truncate(t, db)

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.Save(ctx, &models.Route{LineNumber: "RACE", Name: "Racer", Active: true})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, repository.ErrDuplicateLineNumber)
		}
		assert.Equal(t, 1, succeeded)
	})
}
