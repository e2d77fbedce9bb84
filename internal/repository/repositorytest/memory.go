// Package repositorytest provides an in-memory RouteRepository for tests of
// the layers above storage.
package repositorytest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"route_registry/internal/models"
	"route_registry/internal/repository"
)

// MemoryRepository mirrors the postgres repository's observable behaviour,
// including the case-insensitive unique line number index. WithTx restores
// the previous contents when fn fails.
type MemoryRepository struct {
	mu    *sync.Mutex
	state *memoryState
	inTx  bool
	Err   error // returned by every call when set
}

type memoryState struct {
	routes map[uint]models.Route
	nextID uint
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu:    &sync.Mutex{},
		state: &memoryState{routes: map[uint]models.Route{}, nextID: 1},
	}
}

func (m *MemoryRepository) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryRepository) ExistsByLineNumberCI(_ context.Context, lineNumber string) (bool, error) {
	defer m.lock()()
	if m.Err != nil {
		return false, m.Err
	}
	for _, r := range m.state.routes {
		if strings.EqualFold(r.LineNumber, lineNumber) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) FindAll(context.Context) ([]models.Route, error) {
	defer m.lock()()
	return m.filter(func(models.Route) bool { return true })
}

func (m *MemoryRepository) FindActive(context.Context) ([]models.Route, error) {
	defer m.lock()()
	return m.filter(func(r models.Route) bool { return r.Active })
}

func (m *MemoryRepository) FindByQueryCI(_ context.Context, q string) ([]models.Route, error) {
	defer m.lock()()
	q = strings.ToLower(q)
	return m.filter(func(r models.Route) bool {
		return strings.Contains(strings.ToLower(r.LineNumber), q) ||
			strings.Contains(strings.ToLower(r.Name), q)
	})
}

func (m *MemoryRepository) FindByID(_ context.Context, id uint) (*models.Route, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.state.routes[id]
	if !ok {
		return nil, repository.ErrRouteNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) Save(_ context.Context, route *models.Route) error {
	defer m.lock()()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.state.routes[route.ID]; route.ID != 0 && !ok {
		return repository.ErrRouteNotFound
	}
	for id, r := range m.state.routes {
		if id != route.ID && strings.EqualFold(r.LineNumber, route.LineNumber) {
			return repository.ErrDuplicateLineNumber
		}
	}
	if route.ID == 0 {
		route.ID = m.state.nextID
		m.state.nextID++
	}
	m.state.routes[route.ID] = *route
	return nil
}

func (m *MemoryRepository) DeleteByID(_ context.Context, id uint) error {
	defer m.lock()()
	if m.Err != nil {
		return m.Err
	}
	delete(m.state.routes, id)
	return nil
}

func (m *MemoryRepository) WithTx(_ context.Context, fn func(repository.RouteRepository) error) error {
	defer m.lock()()
	if m.Err != nil {
		return m.Err
	}

	snapshot := make(map[uint]models.Route, len(m.state.routes))
	for id, r := range m.state.routes {
		snapshot[id] = r
	}
	nextID := m.state.nextID

	tx := &MemoryRepository{mu: m.mu, state: m.state, inTx: true}
	if err := fn(tx); err != nil {
		m.state.routes = snapshot
		m.state.nextID = nextID
		return err
	}
	return nil
}

// Len reports how many routes are stored.
func (m *MemoryRepository) Len() int {
	defer m.lock()()
	return len(m.state.routes)
}

func (m *MemoryRepository) filter(keep func(models.Route) bool) ([]models.Route, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Route{}
	for _, r := range m.state.routes {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.Route) int { return int(a.ID) - int(b.ID) })
	return out, nil
}
