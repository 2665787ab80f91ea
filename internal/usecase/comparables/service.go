package comparables

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
	"github.com/kailas-cloud/comparables/internal/logger"
	"github.com/kailas-cloud/comparables/internal/metrics"
)

// Outcome is the answer to a comparables query.
type Outcome struct {
	Hits     []result.Result
	IDs      []string
	Criteria filter.Criteria
	// Truncated is set when the service cap dropped matching hits.
	Truncated bool
}

// Count returns the number of hits.
func (o Outcome) Count() int { return len(o.Hits) }

// Service finds comparable properties around an anchor point.
type Service struct {
	repo       Repository
	maxResults int
}

// New creates a comparables service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithMaxResults caps the number of hits per query. Zero disables the cap.
func (s *Service) WithMaxResults(n int) *Service {
	if n >= 0 {
		s.maxResults = n
	}
	return s
}

// Find returns every stored property within the radius that matches all
// attribute predicates, ordered by distance ascending, then id.
func (s *Service) Find(ctx context.Context, c filter.Criteria) (Outcome, error) {
	limit, capped := c.Limit(), false
	if s.maxResults > 0 && (limit == 0 || limit > s.maxResults) {
		limit, capped = s.maxResults, true
		// One extra row tells a full page from a truncated one.
		c = c.WithLimit(s.maxResults + 1)
	}

	hits, err := s.repo.SearchRadius(ctx, c)
	if err != nil {
		return Outcome{}, fmt.Errorf("search radius: %w", err)
	}

	slices.SortStableFunc(hits, result.Compare)
	truncated := false
	if limit > 0 && len(hits) > limit {
		truncated = capped
		hits = hits[:limit]
	}
	if capped {
		c = c.WithLimit(limit)
	}

	ids := make([]string, len(hits))
	for i := range hits {
		ids[i] = hits[i].ID()
	}

	metrics.SearchResults.Observe(float64(len(hits)))
	log := logger.FromContext(ctx)
	if truncated {
		log.Warn("Comparables truncated", zap.Int("max_results", limit))
	}
	log.Debug("Comparables found",
		zap.Float64("lat", c.Anchor().Lat),
		zap.Float64("lng", c.Anchor().Lng),
		zap.Float64("radius", c.Radius()),
		zap.Int("count", len(hits)),
	)

	return Outcome{Hits: hits, IDs: ids, Criteria: c, Truncated: truncated}, nil
}
