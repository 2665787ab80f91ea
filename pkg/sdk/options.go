package comparables

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/db/backend"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string
	dsn       string
	addrs     []string
	password  string
	keyPrefix string

	maxBatchSize     int
	maxResults       int
	zeroPolicy       ZeroPolicy
	queryTimeout     time.Duration
	readinessTimeout time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite stores properties in an SQLite file, created if missing.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = backend.SQLite
		c.dsn = path
	})
}

// WithPostGIS connects to PostgreSQL with the PostGIS extension.
func WithPostGIS(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = backend.PostGIS
		c.dsn = dsn
	})
}

// WithRedis connects to a standalone Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = backend.Redis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces Redis keys. Default: "cmp:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMaxBatchSize sets the maximum number of records per Load call.
// Default: 5000.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithMaxResults caps the number of comparables per search. Zero means no cap.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithZeroPolicy controls whether zero values count as missing.
// Default: ZeroIsMissing.
func WithZeroPolicy(p ZeroPolicy) Option {
	return optionFunc(func(c *clientConfig) {
		c.zeroPolicy = p
	})
}

// WithQueryTimeout bounds every store call. Default: 5s.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
