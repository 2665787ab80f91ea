package ingest

import (
	"context"

	"github.com/kailas-cloud/comparables/internal/domain/batch"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

// Loader applies a validated batch atomically.
type Loader interface {
	Load(ctx context.Context, props []domprop.Property, replace bool) (batch.Result, error)
}
