package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
	"github.com/kailas-cloud/comparables/internal/metrics"
)

// store is the consumer interface for property persistence (ISP).
//
//nolint:interfacebloat // one repository fronts every property operation
type store interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context, props []domprop.Property, replace bool) (batch.Result, error)
	Get(ctx context.Context, id string) (domprop.Property, error)
	List(ctx context.Context) ([]domprop.Property, error)
	Delete(ctx context.Context, id string) (int, error)
	Count(ctx context.Context) (int, error)
	CountBy(ctx context.Context, field db.GroupField) (map[string]int, error)
	SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error)
}

// Repo implements the usecase repository contracts on top of a db.Store.
// Every call runs under its own deadline and is timed per backend.
type Repo struct {
	store   store
	backend string
	timeout time.Duration
}

// New creates a property repository. A zero timeout leaves the caller's deadline untouched.
func New(s store, backend string, timeout time.Duration) *Repo {
	return &Repo{store: s, backend: backend, timeout: timeout}
}

// Ping checks store connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	ctx, done := r.begin(ctx, db.OpPing)
	err := r.store.Ping(ctx)
	done(err)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, mapErr(err))
	}
	return nil
}

// Load upserts a validated batch.
func (r *Repo) Load(ctx context.Context, props []domprop.Property, replace bool) (batch.Result, error) {
	ctx, done := r.begin(ctx, db.OpLoad)
	res, err := r.store.Load(ctx, props, replace)
	done(err)
	if err != nil {
		return batch.Result{}, fmt.Errorf("load %d properties: %w", len(props), mapErr(err))
	}
	metrics.PropertiesStored.Set(float64(res.Total()))
	return res, nil
}

// Get returns domain.ErrPropertyNotFound for an unknown id.
func (r *Repo) Get(ctx context.Context, id string) (domprop.Property, error) {
	ctx, done := r.begin(ctx, db.OpGet)
	p, err := r.store.Get(ctx, id)
	done(err)
	if err != nil {
		return domprop.Property{}, fmt.Errorf("get property %s: %w", id, mapErr(err))
	}
	return p, nil
}

// List returns every record, newest first.
func (r *Repo) List(ctx context.Context) ([]domprop.Property, error) {
	ctx, done := r.begin(ctx, db.OpList)
	props, err := r.store.List(ctx)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", mapErr(err))
	}
	return props, nil
}

// Delete removes a record and returns the remaining count.
func (r *Repo) Delete(ctx context.Context, id string) (int, error) {
	ctx, done := r.begin(ctx, db.OpDelete)
	total, err := r.store.Delete(ctx, id)
	done(err)
	if err != nil {
		return 0, fmt.Errorf("delete property %s: %w", id, mapErr(err))
	}
	metrics.PropertiesStored.Set(float64(total))
	return total, nil
}

// Count returns the number of stored records.
func (r *Repo) Count(ctx context.Context) (int, error) {
	ctx, done := r.begin(ctx, db.OpCount)
	n, err := r.store.Count(ctx)
	done(err)
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", mapErr(err))
	}
	return n, nil
}

// CountByOperation groups record counts by operation.
func (r *Repo) CountByOperation(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, db.GroupByOperation)
}

// CountByKind groups record counts by kind.
func (r *Repo) CountByKind(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, db.GroupByKind)
}

func (r *Repo) countBy(ctx context.Context, field db.GroupField) (map[string]int, error) {
	ctx, done := r.begin(ctx, db.OpCountBy)
	m, err := r.store.CountBy(ctx, field)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", field, mapErr(err))
	}
	return m, nil
}

// SearchRadius runs a comparable-property query.
func (r *Repo) SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error) {
	ctx, done := r.begin(ctx, db.OpSearch)
	res, err := r.store.SearchRadius(ctx, c)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("search radius: %w", mapErr(err))
	}
	return res, nil
}

// begin applies the per-call deadline and returns a completion hook that records metrics.
func (r *Repo) begin(ctx context.Context, op string) (context.Context, func(error)) {
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	start := time.Now()

	return ctx, func(err error) {
		defer cancel()
		metrics.StoreOperationDuration.WithLabelValues(r.backend, op).Observe(time.Since(start).Seconds())
		if err == nil || errors.Is(err, db.ErrKeyNotFound) {
			return
		}
		metrics.StoreErrorsTotal.WithLabelValues(r.backend, op, errorType(err)).Inc()
	}
}

// mapErr translates store errors into domain sentinels, keeping the cause in the chain.
func mapErr(err error) error {
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return fmt.Errorf("%w: %w", domain.ErrPropertyNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrStoreTimeout, err)
	default:
		return err
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}
