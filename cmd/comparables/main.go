package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/config"
	"github.com/kailas-cloud/comparables/internal/db/backend"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	logpkg "github.com/kailas-cloud/comparables/internal/logger"
	"github.com/kailas-cloud/comparables/internal/metrics"
	propertyrepo "github.com/kailas-cloud/comparables/internal/repository/property"
	chiTransport "github.com/kailas-cloud/comparables/internal/transport/chi"
	comparablesuc "github.com/kailas-cloud/comparables/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/comparables/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/comparables/internal/usecase/ingest"
	propertyuc "github.com/kailas-cloud/comparables/internal/usecase/property"
	statsuc "github.com/kailas-cloud/comparables/internal/usecase/stats"
	"github.com/kailas-cloud/comparables/internal/version"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting comparables API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	policy, err := domprop.ParseZeroPolicy(cfg.Ingest.ZeroValues)
	if err != nil {
		logger.Fatal("Invalid zero-value policy", zap.Error(err))
	}

	ctx := context.Background()
	store, err := backend.Open(ctx, backend.Options{
		Driver:    cfg.Database.Driver,
		DSN:       cfg.Database.DSN,
		Addrs:     cfg.Database.Addrs,
		Password:  cfg.Database.Password,
		KeyPrefix: cfg.Database.KeyPrefix,
		MaxConns:  cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to create schema", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register store metrics explicitly (no init())
	metrics.RegisterStoreMetrics()

	repo := propertyrepo.New(store, cfg.Database.Driver, cfg.Database.QueryTimeout())

	ingestSvc := ingestuc.New(repo, policy).WithMaxBatchSize(cfg.Ingest.MaxBatchSize)
	comparablesSvc := comparablesuc.New(repo).WithMaxResults(cfg.Search.MaxResults)
	propertySvc := propertyuc.New(repo)
	statsSvc := statsuc.New(repo)
	healthSvc := healthuc.New(repo, repo, version.Version)

	server := chiTransport.NewServer(ingestSvc, comparablesSvc, propertySvc, statsSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.HTTP.CORSOrigins))
	r.Use(chiTransport.RateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst))
	r.Use(chiTransport.BodyLimitMiddleware(cfg.HTTP.MaxBodyBytes))
	r.Use(metrics.Middleware())
	server.Mount(r)
	if cfg.HTTP.StaticDir != "" {
		r.Handle("/*", chiTransport.StaticHandler(cfg.HTTP.StaticDir))
		logger.Info("Serving static frontend", zap.String("dir", cfg.HTTP.StaticDir))
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns the JSON error envelope instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line: one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
