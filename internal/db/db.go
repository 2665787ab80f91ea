package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/comparables/internal/domain/batch"
	"github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	SchemaManager
	Loader
	Reader
	Deleter
	Counter
	RadiusSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaManager creates tables and indexes. Safe to call repeatedly.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
}

// Loader applies a batch of full-row upserts atomically.
// With replace set, every existing record is removed in the same unit of work.
type Loader interface {
	Load(ctx context.Context, props []property.Property, replace bool) (batch.Result, error)
}

// Reader fetches stored records.
type Reader interface {
	// Get returns ErrKeyNotFound for an unknown id.
	Get(ctx context.Context, id string) (property.Property, error)
	// List returns every record, newest first.
	List(ctx context.Context) ([]property.Property, error)
}

// Deleter removes records.
type Deleter interface {
	// Delete returns the record count after removal, or ErrKeyNotFound.
	Delete(ctx context.Context, id string) (int, error)
}

// GroupField names an attribute records can be counted by.
type GroupField string

// Supported group fields.
const (
	GroupByOperation GroupField = "operation"
	GroupByKind      GroupField = "kind"
)

// Counter reports record counts.
type Counter interface {
	Count(ctx context.Context) (int, error)
	CountBy(ctx context.Context, field GroupField) (map[string]int, error)
}

// RadiusSearcher answers comparable-property queries using the spatial index.
// Results carry the distance in meters and are ordered by distance, then id.
type RadiusSearcher interface {
	SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error)
}
