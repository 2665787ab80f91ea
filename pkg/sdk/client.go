package comparables

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/db/backend"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/logger"
	propertyrepo "github.com/kailas-cloud/comparables/internal/repository/property"
	comparablesuc "github.com/kailas-cloud/comparables/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/comparables/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/comparables/internal/usecase/ingest"
	propertyuc "github.com/kailas-cloud/comparables/internal/usecase/property"
	statsuc "github.com/kailas-cloud/comparables/internal/usecase/stats"
	"github.com/kailas-cloud/comparables/internal/version"
)

const (
	defaultKeyPrefix        = "cmp:"
	defaultQueryTimeout     = 5 * time.Second
	defaultReadinessTimeout = 30 * time.Second
)

type ingestService interface {
	Load(ctx context.Context, drafts []domprop.Draft, replace bool) (batch.Result, error)
}

type finderService interface {
	Find(ctx context.Context, c filter.Criteria) (comparablesuc.Outcome, error)
}

type propertyService interface {
	Get(ctx context.Context, id string) (domprop.Property, error)
	List(ctx context.Context) ([]domprop.Property, error)
	Delete(ctx context.Context, id string) (int, error)
}

type statsService interface {
	Compute(ctx context.Context) (statsuc.Summary, error)
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the comparables SDK entry point.
type Client struct {
	store  db.Store
	ingest ingestService
	finder finderService
	props  propertyService
	stats  statsService
	health healthService
	logger *zap.Logger
	obs    *observer
}

// New opens the configured backend, waits for it and ensures the schema.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        defaultKeyPrefix,
		maxBatchSize:     ingestuc.DefaultMaxBatchSize,
		zeroPolicy:       ZeroIsMissing,
		queryTimeout:     defaultQueryTimeout,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("comparables: a backend is required (WithSQLite, WithPostGIS or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("comparables: wait for store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("comparables: ensure schema: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	store, err := backend.Open(ctx, backend.Options{
		Driver:    cfg.driver,
		DSN:       cfg.dsn,
		Addrs:     cfg.addrs,
		Password:  cfg.password,
		KeyPrefix: cfg.keyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("comparables: %w", err)
	}
	return store, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := propertyrepo.New(store, cfg.driver, cfg.queryTimeout)

	return &Client{
		store:  store,
		ingest: ingestuc.New(repo, cfg.zeroPolicy).WithMaxBatchSize(cfg.maxBatchSize),
		finder: comparablesuc.New(repo).WithMaxResults(cfg.maxResults),
		props:  propertyuc.New(repo),
		stats:  statsuc.New(repo),
		health: healthuc.New(repo, repo, version.Version),
		logger: cfg.logger,
		obs:    obs,
	}
}

// Close releases the store connection.
func (c *Client) Close() error {
	c.store.Close()
	return nil
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	done := c.obs.start("ping")
	err := c.store.Ping(ctx)
	done(err)
	return err
}

// Properties returns the property service.
func (c *Client) Properties() *PropertyService {
	return &PropertyService{client: c}
}

// Search starts a comparables query.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c}
}

// Stats returns inventory counts by operation and kind.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	done := c.obs.start("stats")
	sum, err := c.stats.Compute(c.withLogger(ctx))
	done(err)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Total: sum.Total, ByOperation: sum.ByOperation, ByKind: sum.ByKind}, nil
}

// Health reports store connectivity and the stored record count.
func (c *Client) Health(ctx context.Context) HealthStatus {
	done := c.obs.start("health")
	r := c.health.Check(c.withLogger(ctx))
	done(r.Err)
	return HealthStatus{
		Status:          string(r.Status),
		Database:        string(r.Database),
		PropertiesCount: r.PropertiesCount,
		Timestamp:       r.Timestamp,
		Err:             r.Err,
	}
}

// withLogger hands the SDK logger to the usecases unless the caller already set one.
func (c *Client) withLogger(ctx context.Context) context.Context {
	if c.logger == nil {
		return ctx
	}
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.FatalLevel) {
		return ctx
	}
	return logger.ContextWithLogger(ctx, c.logger)
}
