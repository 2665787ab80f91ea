package comparables

import (
	"context"

	"github.com/kailas-cloud/comparables/internal/domain/batch"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	comparablesuc "github.com/kailas-cloud/comparables/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/comparables/internal/usecase/health"
	statsuc "github.com/kailas-cloud/comparables/internal/usecase/stats"
)

type mockIngest struct {
	loadFn func(ctx context.Context, drafts []domprop.Draft, replace bool) (batch.Result, error)
}

func (m *mockIngest) Load(ctx context.Context, drafts []domprop.Draft, replace bool) (batch.Result, error) {
	return m.loadFn(ctx, drafts, replace)
}

type mockFinder struct {
	findFn func(ctx context.Context, c filter.Criteria) (comparablesuc.Outcome, error)
}

func (m *mockFinder) Find(ctx context.Context, c filter.Criteria) (comparablesuc.Outcome, error) {
	return m.findFn(ctx, c)
}

type mockProps struct {
	getFn    func(ctx context.Context, id string) (domprop.Property, error)
	listFn   func(ctx context.Context) ([]domprop.Property, error)
	deleteFn func(ctx context.Context, id string) (int, error)
}

func (m *mockProps) Get(ctx context.Context, id string) (domprop.Property, error) {
	return m.getFn(ctx, id)
}

func (m *mockProps) List(ctx context.Context) ([]domprop.Property, error) {
	return m.listFn(ctx)
}

func (m *mockProps) Delete(ctx context.Context, id string) (int, error) {
	return m.deleteFn(ctx, id)
}

type mockStats struct {
	computeFn func(ctx context.Context) (statsuc.Summary, error)
}

func (m *mockStats) Compute(ctx context.Context) (statsuc.Summary, error) {
	return m.computeFn(ctx)
}

type mockHealth struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealth) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}
