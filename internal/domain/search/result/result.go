package result

import (
	"cmp"
	"math"
	"strings"

	"github.com/kailas-cloud/comparables/internal/domain/property"
)

// Result is a single comparable hit: the stored record and its distance to the anchor.
type Result struct {
	property property.Property
	distance float64
}

// New creates a search result. Distance is in meters.
func New(p property.Property, distance float64) Result {
	return Result{property: p, distance: distance}
}

// ID returns the property identifier.
func (r *Result) ID() string { return r.property.ID() }

// Property returns the matched record.
func (r *Result) Property() property.Property { return r.property }

// Distance returns the exact distance in meters.
func (r *Result) Distance() float64 { return r.distance }

// RoundedDistance returns the distance rounded to whole meters.
func (r *Result) RoundedDistance() int64 { return int64(math.Round(r.distance)) }

// Compare orders results by distance, then by id.
func Compare(a, b Result) int {
	if c := cmp.Compare(a.distance, b.distance); c != 0 {
		return c
	}
	return strings.Compare(a.property.ID(), b.property.ID())
}
