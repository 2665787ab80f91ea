package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Summary aggregates the stored inventory.
type Summary struct {
	Total       int
	ByOperation map[string]int
	ByKind      map[string]int
}

// Service computes inventory statistics on demand.
type Service struct {
	repo Counter
}

// New creates a stats service.
func New(repo Counter) *Service {
	return &Service{repo: repo}
}

// Compute runs the three counts concurrently. Nothing is cached.
func (s *Service) Compute(ctx context.Context) (Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.Count(gctx)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		sum.Total = n
		return nil
	})
	g.Go(func() error {
		m, err := s.repo.CountByOperation(gctx)
		if err != nil {
			return fmt.Errorf("count by operation: %w", err)
		}
		sum.ByOperation = m
		return nil
	})
	g.Go(func() error {
		m, err := s.repo.CountByKind(gctx)
		if err != nil {
			return fmt.Errorf("count by kind: %w", err)
		}
		sum.ByKind = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if sum.ByOperation == nil {
		sum.ByOperation = map[string]int{}
	}
	if sum.ByKind == nil {
		sum.ByKind = map[string]int{}
	}
	return sum, nil
}
