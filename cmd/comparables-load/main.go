// comparables-load bulk-loads a JSON file of listings through the comparables SDK.
//
// Usage:
//
//	comparables-load -file listings.json -batch-size 1000 -workers 4
//	comparables-load -file snapshot.json -replace
//
// Connection settings come from the same config/<ENV>.yaml as the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/comparables/internal/config"
	"github.com/kailas-cloud/comparables/internal/logger"
	comparables "github.com/kailas-cloud/comparables/pkg/sdk"
)

type options struct {
	file        string
	batchSize   int
	workers     int
	replace     bool
	metricsAddr string
}

func main() {
	opts := parseFlags()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, "comparables-load:", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	o := options{}
	flag.StringVar(&o.file, "file", "", "JSON file: an array of listings or {\"properties\": [...]}")
	flag.IntVar(&o.batchSize, "batch-size", 1000, "records per Load call")
	flag.IntVar(&o.workers, "workers", 4, "parallel Load calls")
	flag.BoolVar(&o.replace, "replace", false, "swap the stored set for the file contents in one call")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while loading")
	flag.Parse()
	return o
}

func run(ctx context.Context, o options) error {
	if o.file == "" {
		return errors.New("-file is required")
	}
	if o.batchSize <= 0 || o.workers <= 0 {
		return errors.New("-batch-size and -workers must be positive")
	}

	_ = godotenv.Load()
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	records, err := readRecords(o.file)
	if err != nil {
		return err
	}
	log.Info("Records read", zap.String("file", o.file), zap.Int("count", len(records)))

	reg := prometheus.NewRegistry()
	if o.metricsAddr != "" {
		srv := serveMetrics(o.metricsAddr, reg, log)
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	batchSize := o.batchSize
	if o.replace {
		// A replace must land in a single atomic call.
		batchSize = max(len(records), 1)
	}

	policy, err := comparables.ParseZeroPolicy(cfg.Ingest.ZeroValues)
	if err != nil {
		return err
	}

	client, err := comparables.New(ctx, clientOptions(cfg, policy, batchSize, reg, log)...)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	start := time.Now()
	sum, err := load(ctx, client, records, batchSize, o.workers, o.replace)
	if err != nil {
		return err
	}

	log.Info("Load finished",
		zap.Int64("inserted", sum.inserted.Load()),
		zap.Int64("updated", sum.updated.Load()),
		zap.Int64("total", sum.total.Load()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func clientOptions(
	cfg config.Config, policy comparables.ZeroPolicy, batchSize int,
	reg prometheus.Registerer, log *zap.Logger,
) []comparables.Option {
	opts := []comparables.Option{
		comparables.WithMaxBatchSize(batchSize),
		comparables.WithZeroPolicy(policy),
		comparables.WithQueryTimeout(cfg.Database.QueryTimeout()),
		comparables.WithLogger(log),
		comparables.WithPrometheus(reg),
	}
	switch cfg.Database.Driver {
	case config.DriverPostGIS:
		opts = append(opts, comparables.WithPostGIS(cfg.Database.DSN))
	case config.DriverRedis:
		opts = append(opts,
			comparables.WithRedis(cfg.Database.Addrs[0], cfg.Database.Password),
			comparables.WithKeyPrefix(cfg.Database.KeyPrefix),
		)
	default:
		opts = append(opts, comparables.WithSQLite(cfg.Database.DSN))
	}
	return opts
}

type summary struct {
	inserted atomic.Int64
	updated  atomic.Int64
	total    atomic.Int64
}

// loader is the slice of the SDK the batch pump needs.
type loader interface {
	Load(ctx context.Context, records []comparables.Record, replace bool) (comparables.LoadResult, error)
}

// load sends records in chunks over a bounded set of workers. The first
// invalid chunk stops the run; chunks already written stay written.
func load(
	ctx context.Context, client *comparables.Client, records []comparables.Record,
	batchSize, workers int, replace bool,
) (*summary, error) {
	return loadChunks(ctx, client.Properties(), records, batchSize, workers, replace)
}

func loadChunks(
	ctx context.Context, l loader, records []comparables.Record,
	batchSize, workers int, replace bool,
) (*summary, error) {
	sum := &summary{}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for offset := 0; offset < len(records); offset += batchSize {
		chunk := records[offset:min(offset+batchSize, len(records))]
		g.Go(func() error {
			res, err := l.Load(ctx, chunk, replace)
			if err != nil {
				var ve *comparables.ValidationError
				if errors.As(err, &ve) {
					return fmt.Errorf("records %d..%d: %w (first: index %d, missing %v)",
						offset, offset+len(chunk)-1, err, offset+ve.Records[0].Index, ve.Records[0].Missing)
				}
				return fmt.Errorf("records %d..%d: %w", offset, offset+len(chunk)-1, err)
			}
			sum.inserted.Add(int64(res.Inserted))
			sum.updated.Add(int64(res.Updated))
			storeMax(&sum.total, int64(res.Total))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, nil
}

// storeMax keeps the largest stored count seen across concurrent chunks.
func storeMax(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("Metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}
