package comparables

import (
	"context"

	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
)

// Repository runs radius queries against the spatial index.
type Repository interface {
	SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error)
}
