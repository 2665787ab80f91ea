package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/logger"
	"github.com/kailas-cloud/comparables/internal/transport/wire"
	comparablesuc "github.com/kailas-cloud/comparables/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/comparables/internal/usecase/health"
	statsuc "github.com/kailas-cloud/comparables/internal/usecase/stats"
)

const (
	msgPropertiesRequired = "Se requiere un array de propiedades"
	msgMissingFields      = "Propiedades con datos faltantes"
	msgAnchorRequired     = "Se requieren lat, lng y radio"
	msgNotFound           = "Propiedad no encontrada"
	msgBodyTooLarge       = "request body too large"
	msgInternal           = "internal error"
)

// Ingester loads property batches.
type Ingester interface {
	Load(ctx context.Context, drafts []domprop.Draft, replace bool) (batch.Result, error)
	Policy() domprop.ZeroPolicy
}

// Finder answers comparables queries.
type Finder interface {
	Find(ctx context.Context, c filter.Criteria) (comparablesuc.Outcome, error)
}

// Properties reads and deletes single records.
type Properties interface {
	Get(ctx context.Context, id string) (domprop.Property, error)
	List(ctx context.Context) ([]domprop.Property, error)
	Delete(ctx context.Context, id string) (int, error)
}

// Stats computes inventory aggregates.
type Stats interface {
	Compute(ctx context.Context) (statsuc.Summary, error)
}

// Health reports store connectivity.
type Health interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the comparables HTTP API.
type Server struct {
	ingest        Ingester
	finder        Finder
	properties    Properties
	stats         Stats
	health        Health
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest Ingester,
	finder Finder,
	properties Properties,
	stats Stats,
	health Health,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ingest:     ingest,
		finder:     finder,
		properties: properties,
		stats:      stats,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrPropertyNotFound, http.StatusNotFound, msgNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, domain.ErrRateLimited.Error()),
		sentinelHandler(domain.ErrStoreTimeout, http.StatusGatewayTimeout, domain.ErrStoreTimeout.Error()),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error()),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/properties", s.LoadProperties)
		r.Get("/properties", s.ListProperties)
		r.Get("/properties/{id}", s.GetProperty)
		r.Delete("/properties/{id}", s.DeleteProperty)
		r.Post("/filter", s.FilterComparables)
		r.Get("/stats", s.Stats)
		r.Get("/health", s.HealthCheck)
	})
	r.Get("/metrics", s.Metrics)
}

// LoadProperties handles POST /api/properties.
func (s *Server) LoadProperties(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !s.decode(w, r, &req) {
		return
	}

	var in []wire.Listing
	if len(req.Properties) == 0 || json.Unmarshal(req.Properties, &in) != nil || in == nil {
		writeError(w, http.StatusBadRequest, msgPropertiesRequired)
		return
	}

	drafts := make([]domprop.Draft, len(in))
	for i := range in {
		d, err := in[i].Draft()
		if err != nil {
			s.handleDomainError(w, r, fmt.Errorf("record %d: %w", i, err))
			return
		}
		drafts[i] = d
	}

	res, err := s.ingest.Load(r.Context(), drafts, req.Replace)
	if err != nil {
		var ibe *domprop.InvalidBatchError
		if errors.As(err, &ibe) {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   msgMissingFields,
				Invalid: invalidToWire(in, ibe.Records),
			})
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Success:  true,
		Message:  fmt.Sprintf("%d insertadas, %d actualizadas", res.Inserted(), res.Updated()),
		Inserted: res.Inserted(),
		Updated:  res.Updated(),
		Total:    res.Total(),
	})
}

// FilterComparables handles POST /api/filter.
func (s *Server) FilterComparables(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !s.decode(w, r, &req) {
		return
	}

	policy := s.ingest.Policy()
	lat, lng, radius := req.Lat.FloatPtr(), req.Lng.FloatPtr(), req.Radius.FloatPtr()
	if !policy.PresentFloat(lat) || !policy.PresentFloat(lng) || !policy.PresentFloat(radius) {
		writeError(w, http.StatusBadRequest, msgAnchorRequired)
		return
	}

	opts, err := req.options(policy)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	c, err := filter.New(geo.NewPoint(*lat, *lng), *radius, opts...)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.finder.Find(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filterResponse{
		Success:    true,
		Count:      out.Count(),
		IDs:        out.IDs,
		Properties: hitsToWire(out.Hits),
		Filters:    criteriaToWire(out.Criteria),
		Truncated:  out.Truncated,
	})
}

// ListProperties handles GET /api/properties.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.properties.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]propertyOut, len(props))
	for i := range props {
		items[i] = propertyToWire(&props[i])
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(items), Properties: items})
}

// GetProperty handles GET /api/properties/{id}.
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.properties.Get(logger.WithFields(r.Context(), zap.String("property_id", id)), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, getResponse{Success: true, Property: propertyToWire(&p)})
}

// DeleteProperty handles DELETE /api/properties/{id}.
func (s *Server) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	total, err := s.properties.Delete(logger.WithFields(r.Context(), zap.String("property_id", id)), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{
		Success: true,
		Message: fmt.Sprintf("Propiedad %s eliminada", id),
		Total:   total,
	})
}

// Stats handles GET /api/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.stats.Compute(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Success:     true,
		Total:       sum.Total,
		ByOperation: sum.ByOperation,
		ByKind:      sum.ByKind,
	})
}

// HealthCheck handles GET /api/health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	resp := healthResponse{
		Status:    string(report.Status),
		Database:  string(report.Database),
		Timestamp: report.Timestamp,
		Version:   report.Version,
	}
	httpStatus := http.StatusOK
	if report.Healthy() {
		n := report.PropertiesCount
		resp.PropertiesCount = &n
	} else {
		httpStatus = http.StatusServiceUnavailable
		resp.Error = safeDomainMessage(report.Err)
	}

	writeJSON(w, httpStatus, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads a JSON body. It writes the error response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrPropertyNotFound,
		domain.ErrRateLimited,
		domain.ErrStoreTimeout,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return msgInternal
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

// validationHandler echoes validation messages; they never carry store internals.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger
	if l := logger.FromContext(r.Context()); l.Core().Enabled(zap.ErrorLevel) {
		log = l
	}
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternal)
}
