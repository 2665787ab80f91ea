package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/logger"
	"github.com/kailas-cloud/comparables/internal/metrics"
)

// DefaultMaxBatchSize is the maximum number of records per load.
const DefaultMaxBatchSize = 5000

// Service validates and loads property batches.
type Service struct {
	repo         Loader
	policy       domprop.ZeroPolicy
	maxBatchSize int
}

// New creates an ingest service.
func New(repo Loader, policy domprop.ZeroPolicy) *Service {
	return &Service{repo: repo, policy: policy, maxBatchSize: DefaultMaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Policy returns the zero-value policy applied to records.
func (s *Service) Policy() domprop.ZeroPolicy { return s.policy }

// Load validates the whole batch, then upserts it in one atomic store call.
// Any invalid record rejects the batch with *property.InvalidBatchError and nothing is written.
// An empty batch writes nothing, or clears the store when replace is set.
func (s *Service) Load(ctx context.Context, drafts []domprop.Draft, replace bool) (batch.Result, error) {
	if len(drafts) > s.maxBatchSize {
		return batch.Result{}, fmt.Errorf("batch size %d exceeds %d: %w", len(drafts), s.maxBatchSize, domain.ErrInvalidInput)
	}

	if err := domprop.ValidateBatch(drafts, s.policy); err != nil {
		metrics.IngestRecordsTotal.WithLabelValues("rejected").Add(float64(len(drafts)))
		return batch.Result{}, err
	}

	props := make([]domprop.Property, 0, len(drafts))
	for i := range drafts {
		p, err := drafts[i].Property(s.policy)
		if err != nil {
			metrics.IngestRecordsTotal.WithLabelValues("rejected").Add(float64(len(drafts)))
			return batch.Result{}, fmt.Errorf("record %d: %w", i, err)
		}
		props = append(props, p)
	}

	res, err := s.repo.Load(ctx, props, replace)
	if err != nil {
		return batch.Result{}, fmt.Errorf("load batch: %w", err)
	}

	metrics.IngestRecordsTotal.WithLabelValues(string(batch.Inserted)).Add(float64(res.Inserted()))
	metrics.IngestRecordsTotal.WithLabelValues(string(batch.Updated)).Add(float64(res.Updated()))
	logger.FromContext(ctx).Info("Properties loaded",
		zap.Int("received", len(drafts)),
		zap.Int("inserted", res.Inserted()),
		zap.Int("updated", res.Updated()),
		zap.Int("total", res.Total()),
		zap.Bool("replace", replace),
	)
	return res, nil
}
