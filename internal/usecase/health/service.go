package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the store is reachable.
	Healthy Status = "ok"
	// Unhealthy indicates the store cannot be reached.
	Unhealthy Status = "error"
)

// DatabaseState reports store connectivity.
type DatabaseState string

const (
	// Connected indicates a passing ping.
	Connected DatabaseState = "connected"
	// Disconnected indicates a failing ping or count.
	Disconnected DatabaseState = "disconnected"
)

// Report aggregates health check results.
type Report struct {
	Status          Status
	Database        DatabaseState
	Timestamp       time.Time
	PropertiesCount int
	Version         string
	Err             error
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return r.Status == Healthy }

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	counter Counter
	version string
	now     func() time.Time
}

// New creates a Service.
func New(db DBPinger, counter Counter, version string) *Service {
	return &Service{db: db, counter: counter, version: version, now: time.Now}
}

// Check pings the store and reads the record count.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{
		Status:    Healthy,
		Database:  Connected,
		Timestamp: s.now().UTC(),
		Version:   s.version,
	}

	if err := s.db.Ping(ctx); err != nil {
		return s.fail(ctx, r, err)
	}
	n, err := s.counter.Count(ctx)
	if err != nil {
		return s.fail(ctx, r, err)
	}
	r.PropertiesCount = n
	return r
}

func (s *Service) fail(ctx context.Context, r Report, err error) Report {
	logger.FromContext(ctx).Warn("Health check failed", zap.Error(err))
	r.Status = Unhealthy
	r.Database = Disconnected
	r.Err = err
	return r
}
