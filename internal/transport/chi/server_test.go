package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
	comparablesuc "github.com/kailas-cloud/comparables/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/comparables/internal/usecase/health"
	statsuc "github.com/kailas-cloud/comparables/internal/usecase/stats"
)

// --- Mocks ---

type mockIngester struct {
	policy domprop.ZeroPolicy
	loadFn func(drafts []domprop.Draft, replace bool) (batch.Result, error)
}

func (m *mockIngester) Load(_ context.Context, drafts []domprop.Draft, replace bool) (batch.Result, error) {
	return m.loadFn(drafts, replace)
}

func (m *mockIngester) Policy() domprop.ZeroPolicy { return m.policy }

type mockFinder struct {
	findFn func(c filter.Criteria) (comparablesuc.Outcome, error)
}

func (m *mockFinder) Find(_ context.Context, c filter.Criteria) (comparablesuc.Outcome, error) {
	return m.findFn(c)
}

type mockProperties struct {
	getFn    func(id string) (domprop.Property, error)
	listFn   func() ([]domprop.Property, error)
	deleteFn func(id string) (int, error)
}

func (m *mockProperties) Get(_ context.Context, id string) (domprop.Property, error) { return m.getFn(id) }
func (m *mockProperties) List(_ context.Context) ([]domprop.Property, error) { return m.listFn() }
func (m *mockProperties) Delete(_ context.Context, id string) (int, error) { return m.deleteFn(id) }

type mockStats struct {
	sum statsuc.Summary
	err error
}

func (m *mockStats) Compute(_ context.Context) (statsuc.Summary, error) { return m.sum, m.err }

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

type deps struct {
	ingest *mockIngester
	finder *mockFinder
	props  *mockProperties
	stats  *mockStats
	health *mockHealth
}

func newDeps() *deps {
	return &deps{
		ingest: &mockIngester{},
		finder: &mockFinder{},
		props:  &mockProperties{},
		stats:  &mockStats{},
		health: &mockHealth{},
	}
}

func (d *deps) router() http.Handler {
	r := chi.NewRouter()
	NewServer(d.ingest, d.finder, d.props, d.stats, d.health, nil).Mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rr, out
}

func sampleProperty(t *testing.T, id string) domprop.Property {
	t.Helper()
	area := 80
	p, err := domprop.New(id, "venta", "departamento", 3, geo.NewPoint(-34.6, -58.4), domprop.Details{TotalArea: &area})
	if err != nil {
		t.Fatalf("new property: %v", err)
	}
	return p
}

// --- Ingest ---

func TestLoadProperties_Success(t *testing.T) {
	d := newDeps()
	var got []domprop.Draft
	var gotReplace bool
	d.ingest.loadFn = func(drafts []domprop.Draft, replace bool) (batch.Result, error) {
		got, gotReplace = drafts, replace
		return batch.NewResult(1, 1, 10), nil
	}

	body := `{"replace":true,"properties":[
		{"id":101,"operacion":"venta","tipo":"casa","ambientes":"3","lat":"-34.6","lng":-58.4,"m2_totales":"120","precio":"150000.50"},
		{"id":"x-2","operacion":"alquiler","tipo":"ph","ambientes":2.9,"lat":-34.61,"lng":-58.41,"antiguedad":null}
	]}`
	rr, out := do(t, d.router(), http.MethodPost, "/api/properties", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rr.Code, out)
	}
	if out["success"] != true || out["message"] != "1 insertadas, 1 actualizadas" {
		t.Errorf("unexpected body: %v", out)
	}
	if out["total"] != float64(10) || out["inserted"] != float64(1) || out["updated"] != float64(1) {
		t.Errorf("unexpected counters: %v", out)
	}
	if !gotReplace {
		t.Error("replace flag not forwarded")
	}
	if len(got) != 2 {
		t.Fatalf("drafts = %d, want 2", len(got))
	}
	if *got[0].ID != "101" || *got[0].Rooms != 3 || *got[0].Lat != -34.6 || *got[0].TotalArea != 120 {
		t.Errorf("lenient decoding failed: %+v", got[0])
	}
	if *got[0].Price != 150000.50 {
		t.Errorf("price = %v", *got[0].Price)
	}
	if *got[1].Rooms != 2 {
		t.Errorf("rooms must truncate, got %d", *got[1].Rooms)
	}
	if got[1].Age != nil {
		t.Errorf("null age must be absent, got %v", *got[1].Age)
	}
}

func TestLoadProperties_NotAnArray(t *testing.T) {
	for _, body := range []string{`{}`, `{"properties":null}`, `{"properties":{"id":"a"}}`, `{"properties":"x"}`} {
		d := newDeps()
		rr, out := do(t, d.router(), http.MethodPost, "/api/properties", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rr.Code)
		}
		if out["success"] != false || out["error"] != msgPropertiesRequired {
			t.Errorf("%s: unexpected body %v", body, out)
		}
	}
}

func TestLoadProperties_EmptyArrayReplace(t *testing.T) {
	d := newDeps()
	called := false
	d.ingest.loadFn = func(drafts []domprop.Draft, replace bool) (batch.Result, error) {
		called = true
		if len(drafts) != 0 || !replace {
			t.Errorf("drafts = %d, replace = %v", len(drafts), replace)
		}
		return batch.NewResult(0, 0, 0), nil
	}

	rr, out := do(t, d.router(), http.MethodPost, "/api/properties", `{"replace":true,"properties":[]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rr.Code, out)
	}
	if !called {
		t.Fatal("ingester not called")
	}
	if out["total"] != float64(0) || out["inserted"] != float64(0) {
		t.Errorf("unexpected body %v", out)
	}
}

func TestLoadProperties_OutOfRangeInteger(t *testing.T) {
	d := newDeps()
	d.ingest.loadFn = func([]domprop.Draft, bool) (batch.Result, error) {
		t.Error("ingester must not be called")
		return batch.Result{}, nil
	}

	body := `{"properties":[{"id":"a","operacion":"venta","tipo":"casa","ambientes":3,"lat":-34.6,"lng":-58.4,"m2_totales":1e20}]}`
	rr, out := do(t, d.router(), http.MethodPost, "/api/properties", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %v", rr.Code, out)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, "m2_totales") {
		t.Errorf("error = %v", out["error"])
	}
}

func TestLoadProperties_MalformedJSON(t *testing.T) {
	rr, out := do(t, newDeps().router(), http.MethodPost, "/api/properties", `{"properties":[`)
	if rr.Code != http.StatusBadRequest || out["success"] != false {
		t.Errorf("status = %d, body = %v", rr.Code, out)
	}
}

func TestLoadProperties_InvalidBatch(t *testing.T) {
	d := newDeps()
	d.ingest.loadFn = func(drafts []domprop.Draft, _ bool) (batch.Result, error) {
		return batch.Result{}, domprop.ValidateBatch(drafts, domprop.ZeroIsMissing)
	}

	body := `{"properties":[
		{"id":"a","operacion":"venta","tipo":"casa","ambientes":3,"lat":-34.6,"lng":-58.4},
		{"id":"b","operacion":"venta","tipo":"casa","ambientes":3,"lng":-58.4}
	]}`
	rr, out := do(t, d.router(), http.MethodPost, "/api/properties", body)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if out["error"] != msgMissingFields {
		t.Errorf("error = %v", out["error"])
	}
	invalid, ok := out["invalid"].([]any)
	if !ok || len(invalid) != 1 {
		t.Fatalf("invalid = %v", out["invalid"])
	}
	rec := invalid[0].(map[string]any)
	if rec["index"] != float64(1) || rec["id"] != "b" {
		t.Errorf("unexpected invalid record: %v", rec)
	}
	missing := rec["missing"].([]any)
	if len(missing) != 1 || missing[0] != "lat" {
		t.Errorf("missing = %v, want [lat]", missing)
	}
	record := rec["record"].(map[string]any)
	if record["lat"] != nil || record["operacion"] != "venta" {
		t.Errorf("record echo = %v", record)
	}
}

func TestLoadProperties_StoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"timeout", domain.ErrStoreTimeout, http.StatusGatewayTimeout},
		{"unavailable", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"oversized", domain.ErrInvalidInput, http.StatusBadRequest},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps()
			d.ingest.loadFn = func([]domprop.Draft, bool) (batch.Result, error) { return batch.Result{}, tt.err }

			rr, out := do(t, d.router(), http.MethodPost, "/api/properties", `{"properties":[{"id":"a"}]}`)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if out["success"] != false {
				t.Errorf("success must be false: %v", out)
			}
			if tt.status == http.StatusInternalServerError && out["error"] != msgInternal {
				t.Errorf("internal errors must not leak: %v", out["error"])
			}
		})
	}
}

// --- Filter ---

func TestFilterComparables_Success(t *testing.T) {
	d := newDeps()
	var got filter.Criteria
	d.finder.findFn = func(c filter.Criteria) (comparablesuc.Outcome, error) {
		got = c
		hits := []result.Result{
			result.New(sampleProperty(t, "A"), 0.4),
			result.New(sampleProperty(t, "B"), 91.6),
		}
		return comparablesuc.Outcome{Hits: hits, IDs: []string{"A", "B"}, Criteria: c}, nil
	}

	body := `{"lat":"-34.6","lng":-58.4,"radio":"1000","operacion":"venta","ambientes":"3","m2_min":50,"antiguedad_max":"10"}`
	rr, out := do(t, d.router(), http.MethodPost, "/api/filter", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rr.Code, out)
	}
	if got.Radius() != 1000 || got.Operation() != "venta" || *got.Rooms() != 3 {
		t.Errorf("criteria not parsed: radius=%v op=%q rooms=%v", got.Radius(), got.Operation(), got.Rooms())
	}
	if *got.TotalArea().Min() != 50 || got.TotalArea().Max() != nil || *got.MaxAge() != 10 {
		t.Errorf("range criteria not parsed")
	}
	if got.Kind() != "" {
		t.Errorf("kind must be unset, got %q", got.Kind())
	}
	if out["count"] != float64(2) {
		t.Errorf("count = %v", out["count"])
	}
	ids := out["ids"].([]any)
	if ids[0] != "A" || ids[1] != "B" {
		t.Errorf("ids = %v", ids)
	}
	props := out["properties"].([]any)
	first := props[0].(map[string]any)
	second := props[1].(map[string]any)
	if first["distance"] != float64(0) || second["distance"] != float64(92) {
		t.Errorf("distances = %v, %v", first["distance"], second["distance"])
	}
	if first["m2_totales"] != float64(80) || first["antiguedad"] != nil {
		t.Errorf("property fields = %v", first)
	}
	filters := out["filters"].(map[string]any)
	if filters["operacion"] != "venta" || filters["radio"] != float64(1000) {
		t.Errorf("filters echo = %v", filters)
	}
	if _, ok := filters["tipo"]; ok {
		t.Errorf("unset filters must be omitted: %v", filters)
	}
	if out["truncated"] != false {
		t.Errorf("truncated = %v", out["truncated"])
	}
}

func TestFilterComparables_Truncated(t *testing.T) {
	d := newDeps()
	d.finder.findFn = func(c filter.Criteria) (comparablesuc.Outcome, error) {
		hits := []result.Result{result.New(sampleProperty(t, "A"), 1)}
		return comparablesuc.Outcome{Hits: hits, IDs: []string{"A"}, Criteria: c, Truncated: true}, nil
	}

	rr, out := do(t, d.router(), http.MethodPost, "/api/filter", `{"lat":-34.6,"lng":-58.4,"radio":100}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rr.Code, out)
	}
	if out["truncated"] != true || out["count"] != float64(1) {
		t.Errorf("truncated = %v, count = %v", out["truncated"], out["count"])
	}
}

func TestFilterComparables_RequiresAnchor(t *testing.T) {
	tests := []struct {
		name   string
		policy domprop.ZeroPolicy
		body   string
		status int
	}{
		{"missing radio", domprop.ZeroIsMissing, `{"lat":-34.6,"lng":-58.4}`, http.StatusBadRequest},
		{"non-numeric lat", domprop.ZeroIsMissing, `{"lat":"abc","lng":-58.4,"radio":100}`, http.StatusBadRequest},
		{"zero lat is missing", domprop.ZeroIsMissing, `{"lat":0,"lng":-58.4,"radio":100}`, http.StatusBadRequest},
		{"zero lat is a value", domprop.ZeroIsValue, `{"lat":0,"lng":-58.4,"radio":100}`, http.StatusOK},
		{"negative radio", domprop.ZeroIsMissing, `{"lat":-34.6,"lng":-58.4,"radio":-5}`, http.StatusBadRequest},
		{"min above max", domprop.ZeroIsMissing, `{"lat":-34.6,"lng":-58.4,"radio":100,"m2_min":90,"m2_max":50}`, http.StatusBadRequest},
		{"age out of range", domprop.ZeroIsMissing, `{"lat":-34.6,"lng":-58.4,"radio":100,"antiguedad_max":"9e15"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps()
			d.ingest.policy = tt.policy
			d.finder.findFn = func(c filter.Criteria) (comparablesuc.Outcome, error) {
				return comparablesuc.Outcome{Criteria: c}, nil
			}

			rr, out := do(t, d.router(), http.MethodPost, "/api/filter", tt.body)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d (%v)", rr.Code, tt.status, out)
			}
		})
	}
}

func TestFilterComparables_ZeroFiltersIgnored(t *testing.T) {
	d := newDeps()
	var got filter.Criteria
	d.finder.findFn = func(c filter.Criteria) (comparablesuc.Outcome, error) {
		got = c
		return comparablesuc.Outcome{Criteria: c}, nil
	}

	body := `{"lat":-34.6,"lng":-58.4,"radio":100,"operacion":"","ambientes":0,"antiguedad_max":0}`
	rr, _ := do(t, d.router(), http.MethodPost, "/api/filter", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got.HasAttributeFilters() {
		t.Error("zero-valued filters must be ignored under the missing policy")
	}
}

// --- Reads / deletes ---

func TestListProperties(t *testing.T) {
	d := newDeps()
	d.props.listFn = func() ([]domprop.Property, error) {
		return []domprop.Property{sampleProperty(t, "b"), sampleProperty(t, "a")}, nil
	}

	rr, out := do(t, d.router(), http.MethodGet, "/api/properties", "")
	if rr.Code != http.StatusOK || out["count"] != float64(2) {
		t.Fatalf("status = %d, body = %v", rr.Code, out)
	}
	first := out["properties"].([]any)[0].(map[string]any)
	if first["id"] != "b" || first["operacion"] != "venta" || first["ambientes"] != float64(3) {
		t.Errorf("first = %v", first)
	}
}

func TestGetProperty(t *testing.T) {
	d := newDeps()
	d.props.getFn = func(id string) (domprop.Property, error) {
		if id != "p-1" {
			return domprop.Property{}, domain.ErrPropertyNotFound
		}
		return sampleProperty(t, id), nil
	}
	h := d.router()

	rr, out := do(t, h, http.MethodGet, "/api/properties/p-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if out["property"].(map[string]any)["id"] != "p-1" {
		t.Errorf("property = %v", out["property"])
	}

	rr, out = do(t, h, http.MethodGet, "/api/properties/missing", "")
	if rr.Code != http.StatusNotFound || out["error"] != msgNotFound {
		t.Errorf("status = %d, body = %v", rr.Code, out)
	}
}

func TestDeleteProperty(t *testing.T) {
	d := newDeps()
	d.props.deleteFn = func(id string) (int, error) {
		if id == "ghost" {
			return 0, domain.ErrPropertyNotFound
		}
		return 4, nil
	}
	h := d.router()

	rr, out := do(t, h, http.MethodDelete, "/api/properties/p-7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if out["message"] != "Propiedad p-7 eliminada" || out["total"] != float64(4) {
		t.Errorf("body = %v", out)
	}

	rr, _ = do(t, h, http.MethodDelete, "/api/properties/ghost", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// --- Stats / health ---

func TestStats(t *testing.T) {
	d := newDeps()
	d.stats.sum = statsuc.Summary{
		Total:       3,
		ByOperation: map[string]int{"venta": 2, "alquiler": 1},
		ByKind:      map[string]int{"casa": 3},
	}

	rr, out := do(t, d.router(), http.MethodGet, "/api/stats", "")
	if rr.Code != http.StatusOK || out["total"] != float64(3) {
		t.Fatalf("status = %d, body = %v", rr.Code, out)
	}
	byOp := out["by_operacion"].(map[string]any)
	if byOp["venta"] != float64(2) {
		t.Errorf("by_operacion = %v", byOp)
	}
	if out["by_tipo"].(map[string]any)["casa"] != float64(3) {
		t.Errorf("by_tipo = %v", out["by_tipo"])
	}
}

func TestStats_Error(t *testing.T) {
	d := newDeps()
	d.stats.err = domain.ErrStoreTimeout

	rr, _ := do(t, d.router(), http.MethodGet, "/api/stats", "")
	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("healthy", func(t *testing.T) {
		d := newDeps()
		d.health.report = healthuc.Report{
			Status: healthuc.Healthy, Database: healthuc.Connected,
			Timestamp: ts, PropertiesCount: 12, Version: "v1",
		}
		rr, out := do(t, d.router(), http.MethodGet, "/api/health", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if out["status"] != "ok" || out["database"] != "connected" || out["properties_count"] != float64(12) {
			t.Errorf("body = %v", out)
		}
		if out["timestamp"] != "2024-05-01T12:00:00Z" || out["version"] != "v1" {
			t.Errorf("body = %v", out)
		}
	})

	t.Run("store down", func(t *testing.T) {
		d := newDeps()
		d.health.report = healthuc.Report{
			Status: healthuc.Unhealthy, Database: healthuc.Disconnected,
			Timestamp: ts, Err: domain.ErrStoreUnavailable,
		}
		rr, out := do(t, d.router(), http.MethodGet, "/api/health", "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", rr.Code)
		}
		if out["status"] != "error" || out["database"] != "disconnected" {
			t.Errorf("body = %v", out)
		}
		if _, ok := out["properties_count"]; ok {
			t.Errorf("count must be omitted on failure: %v", out)
		}
		if out["error"] != domain.ErrStoreUnavailable.Error() {
			t.Errorf("error = %v", out["error"])
		}
	})
}
