package comparables

import (
	"time"

	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

// ZeroPolicy decides whether a zero value means "missing".
type ZeroPolicy = domprop.ZeroPolicy

// Zero-value policies.
const (
	// ZeroIsMissing treats 0 and "" like absent fields.
	ZeroIsMissing = domprop.ZeroIsMissing
	// ZeroIsValue keeps zeros as real values; only nil fields are missing.
	ZeroIsValue = domprop.ZeroIsValue
)

// Record is an inbound listing. Nil fields are absent.
type Record struct {
	ID          *string
	Operation   *string
	Kind        *string
	Rooms       *int
	Lat         *float64
	Lng         *float64
	TotalArea   *int
	CoveredArea *int
	Age         *int
	Price       *float64
}

// Property is a stored listing.
type Property struct {
	ID          string
	Operation   string
	Kind        string
	Rooms       int
	Lat         float64
	Lng         float64
	TotalArea   *int
	CoveredArea *int
	Age         *int // nil = unknown
	Price       *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Revision    int
}

// LoadResult summarizes a batch load.
type LoadResult struct {
	Inserted int
	Updated  int
	Total    int // stored records after the load
}

// Comparable is a search hit.
type Comparable struct {
	Property Property
	Distance float64 // meters
}

// Stats summarizes the stored inventory.
type Stats struct {
	Total       int
	ByOperation map[string]int
	ByKind      map[string]int
}

// HealthStatus reports store connectivity.
type HealthStatus struct {
	Status          string // "ok" or "error"
	Database        string // "connected" or "disconnected"
	PropertiesCount int
	Timestamp       time.Time
	Err             error
}

// Ptr returns a pointer to v. Handy for building Records.
func Ptr[T any](v T) *T { return &v }

// ParseZeroPolicy parses "missing" (or empty) and "value".
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	return domprop.ParseZeroPolicy(s)
}
