package property

import (
	"context"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	pingFn    func(ctx context.Context) error
	loadFn    func(ctx context.Context, props []domprop.Property, replace bool) (batch.Result, error)
	getFn     func(ctx context.Context, id string) (domprop.Property, error)
	listFn    func(ctx context.Context) ([]domprop.Property, error)
	deleteFn  func(ctx context.Context, id string) (int, error)
	countFn   func(ctx context.Context) (int, error)
	countByFn func(ctx context.Context, field db.GroupField) (map[string]int, error)
	searchFn  func(ctx context.Context, c filter.Criteria) ([]result.Result, error)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) Load(ctx context.Context, props []domprop.Property, replace bool) (batch.Result, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, props, replace)
	}
	return batch.Result{}, nil
}

func (m *mockStore) Get(ctx context.Context, id string) (domprop.Property, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domprop.Property{}, db.ErrKeyNotFound
}

func (m *mockStore) List(ctx context.Context) ([]domprop.Property, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) Delete(ctx context.Context, id string) (int, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return 0, nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockStore) CountBy(ctx context.Context, field db.GroupField) (map[string]int, error) {
	if m.countByFn != nil {
		return m.countByFn(ctx, field)
	}
	return map[string]int{}, nil
}

func (m *mockStore) SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, c)
	}
	return nil, nil
}
