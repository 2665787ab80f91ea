package property

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/domain"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/logger"
)

// Service handles single-record reads and deletes.
type Service struct {
	repo Repository
}

// New creates a property service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a property by id.
func (s *Service) Get(ctx context.Context, id string) (domprop.Property, error) {
	if id == "" {
		return domprop.Property{}, fmt.Errorf("id is required: %w", domain.ErrInvalidInput)
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprop.Property{}, fmt.Errorf("get property %s: %w", id, err)
	}
	return p, nil
}

// List returns every stored property, newest first.
func (s *Service) List(ctx context.Context) ([]domprop.Property, error) {
	props, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return props, nil
}

// Delete removes a property and returns the remaining total.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("id is required: %w", domain.ErrInvalidInput)
	}
	total, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete property %s: %w", id, err)
	}
	logger.FromContext(ctx).Info("Property deleted", zap.String("id", id), zap.Int("total", total))
	return total, nil
}
