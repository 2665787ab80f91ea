package chi

import (
	"encoding/json"
	"fmt"
	"time"

	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
	"github.com/kailas-cloud/comparables/internal/transport/wire"
)

// --- Ingest ---

type ingestRequest struct {
	Properties json.RawMessage `json:"properties"`
	Replace    bool            `json:"replace"`
}

type ingestResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Total    int    `json:"total"`
}

type invalidRecord struct {
	Index   int          `json:"index"`
	ID      *string      `json:"id"`
	Missing []string     `json:"missing"`
	Record  wire.Listing `json:"record"`
}

type errorResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Invalid []invalidRecord `json:"invalid,omitempty"`
}

func invalidToWire(in []wire.Listing, recs []domprop.InvalidRecord) []invalidRecord {
	out := make([]invalidRecord, len(recs))
	for i, r := range recs {
		missing := make([]string, len(r.Missing))
		for j, f := range r.Missing {
			missing[j] = wire.FieldNames[f]
		}
		out[i] = invalidRecord{
			Index:   r.Index,
			ID:      r.Draft.ID,
			Missing: missing,
			Record:  in[r.Index],
		}
	}
	return out
}

// --- Property output ---

type propertyOut struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operacion"`
	Kind        string    `json:"tipo"`
	Rooms       int       `json:"ambientes"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	TotalArea   *int      `json:"m2_totales"`
	CoveredArea *int      `json:"m2_cubiertos"`
	Age         *int      `json:"antiguedad"`
	Price       *float64  `json:"precio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Revision    int       `json:"revision"`
}

func propertyToWire(p *domprop.Property) propertyOut {
	loc := p.Location()
	return propertyOut{
		ID:          p.ID(),
		Operation:   p.Operation(),
		Kind:        p.Kind(),
		Rooms:       p.Rooms(),
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		TotalArea:   p.TotalArea(),
		CoveredArea: p.CoveredArea(),
		Age:         p.Age(),
		Price:       p.Price(),
		CreatedAt:   p.CreatedAt().UTC(),
		UpdatedAt:   p.UpdatedAt().UTC(),
		Revision:    p.Revision(),
	}
}

type listResponse struct {
	Success    bool          `json:"success"`
	Count      int           `json:"count"`
	Properties []propertyOut `json:"properties"`
}

type getResponse struct {
	Success  bool        `json:"success"`
	Property propertyOut `json:"property"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Total   int    `json:"total"`
}

// --- Filter ---

type filterRequest struct {
	Operation wire.Text   `json:"operacion"`
	Kind      wire.Text   `json:"tipo"`
	Rooms     wire.Number `json:"ambientes"`
	Lat       wire.Number `json:"lat"`
	Lng       wire.Number `json:"lng"`
	Radius    wire.Number `json:"radio"`
	MinArea   wire.Number `json:"m2_min"`
	MaxArea   wire.Number `json:"m2_max"`
	MaxAge    wire.Number `json:"antiguedad_max"`
	Limit     wire.Number `json:"limit"`
}

// options converts the present optional filters under the zero policy.
func (f *filterRequest) options(policy domprop.ZeroPolicy) ([]filter.Option, error) {
	var opts []filter.Option
	if v := f.Operation.Ptr(); policy.PresentString(v) {
		opts = append(opts, filter.WithOperation(*v))
	}
	if v := f.Kind.Ptr(); policy.PresentString(v) {
		opts = append(opts, filter.WithKind(*v))
	}

	ints := []struct {
		name string
		src  wire.Number
		opt  func(int) filter.Option
	}{
		{"ambientes", f.Rooms, filter.WithRooms},
		{"m2_min", f.MinArea, filter.WithMinTotalArea},
		{"m2_max", f.MaxArea, filter.WithMaxTotalArea},
		{"antiguedad_max", f.MaxAge, filter.WithMaxAge},
	}
	for _, in := range ints {
		v, err := in.src.IntPtr()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.name, err)
		}
		if policy.PresentInt(v) {
			opts = append(opts, in.opt(*v))
		}
	}

	limit, err := f.Limit.IntPtr()
	if err != nil {
		return nil, fmt.Errorf("limit: %w", err)
	}
	if limit != nil && *limit > 0 {
		opts = append(opts, filter.WithLimit(*limit))
	}
	return opts, nil
}

type hitOut struct {
	propertyOut
	Distance int64 `json:"distance"`
}

type filtersOut struct {
	Operation *string `json:"operacion,omitempty"`
	Kind      *string `json:"tipo,omitempty"`
	Rooms     *int    `json:"ambientes,omitempty"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Radius    float64 `json:"radio"`
	MinArea   *int    `json:"m2_min,omitempty"`
	MaxArea   *int    `json:"m2_max,omitempty"`
	MaxAge    *int    `json:"antiguedad_max,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

func criteriaToWire(c filter.Criteria) filtersOut {
	out := filtersOut{
		Rooms:   c.Rooms(),
		Lat:     c.Anchor().Lat,
		Lng:     c.Anchor().Lng,
		Radius:  c.Radius(),
		MinArea: c.TotalArea().Min(),
		MaxArea: c.TotalArea().Max(),
		MaxAge:  c.MaxAge(),
		Limit:   c.Limit(),
	}
	if op := c.Operation(); op != "" {
		out.Operation = &op
	}
	if k := c.Kind(); k != "" {
		out.Kind = &k
	}
	return out
}

type filterResponse struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	IDs        []string   `json:"ids"`
	Properties []hitOut   `json:"properties"`
	Filters    filtersOut `json:"filters"`
	Truncated  bool       `json:"truncated"`
}

func hitsToWire(hits []result.Result) []hitOut {
	out := make([]hitOut, len(hits))
	for i := range hits {
		p := hits[i].Property()
		out[i] = hitOut{propertyOut: propertyToWire(&p), Distance: hits[i].RoundedDistance()}
	}
	return out
}

// --- Stats / health ---

type statsResponse struct {
	Success     bool           `json:"success"`
	Total       int            `json:"total"`
	ByOperation map[string]int `json:"by_operacion"`
	ByKind      map[string]int `json:"by_tipo"`
}

type healthResponse struct {
	Status          string    `json:"status"`
	Database        string    `json:"database"`
	Timestamp       time.Time `json:"timestamp"`
	PropertiesCount *int      `json:"properties_count,omitempty"`
	Version         string    `json:"version"`
	Error           string    `json:"error,omitempty"`
}
