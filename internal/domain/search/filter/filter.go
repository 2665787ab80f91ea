package filter

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
)

// Criteria is a validated comparable-property query: a required anchor and
// radius plus optional attribute predicates. Unset predicates do not filter.
type Criteria struct {
	anchor    geo.Point
	radius    float64
	operation string
	kind      string
	rooms     *int
	totalArea Range
	maxAge    *int
	limit     int
}

// Option sets an optional predicate on Criteria.
type Option func(*Criteria)

// WithOperation keeps only records with this exact operation. Empty is ignored.
func WithOperation(op string) Option {
	return func(c *Criteria) { c.operation = op }
}

// WithKind keeps only records with this exact kind. Empty is ignored.
func WithKind(kind string) Option {
	return func(c *Criteria) { c.kind = kind }
}

// WithRooms keeps only records with exactly n rooms.
func WithRooms(n int) Option {
	return func(c *Criteria) { c.rooms = &n }
}

// WithMinTotalArea keeps records whose total area is known and >= n.
func WithMinTotalArea(n int) Option {
	return func(c *Criteria) { c.totalArea.min = &n }
}

// WithMaxTotalArea keeps records whose total area is known and <= n.
func WithMaxTotalArea(n int) Option {
	return func(c *Criteria) { c.totalArea.max = &n }
}

// WithMaxAge keeps records with age <= n or unknown age.
func WithMaxAge(n int) Option {
	return func(c *Criteria) { c.maxAge = &n }
}

// WithLimit caps the number of results. Zero means no limit.
func WithLimit(n int) Option {
	return func(c *Criteria) { c.limit = n }
}

// New validates and creates Criteria. Radius is in meters.
func New(anchor geo.Point, radius float64, opts ...Option) (Criteria, error) {
	if !isFinite(anchor.Lat) || !isFinite(anchor.Lng) {
		return Criteria{}, fmt.Errorf("anchor coordinates must be finite: %w", domain.ErrInvalidInput)
	}
	if !isFinite(radius) || radius <= 0 {
		return Criteria{}, fmt.Errorf("radius must be a positive number of meters, got %v: %w", radius, domain.ErrInvalidInput)
	}

	c := Criteria{anchor: anchor, radius: radius}
	for _, o := range opts {
		o(&c)
	}

	if c.totalArea.min != nil && c.totalArea.max != nil && *c.totalArea.min > *c.totalArea.max {
		return Criteria{}, fmt.Errorf(
			"minimum total area %d exceeds maximum %d: %w",
			*c.totalArea.min, *c.totalArea.max, domain.ErrInvalidInput,
		)
	}
	if c.limit < 0 {
		return Criteria{}, fmt.Errorf("limit must not be negative: %w", domain.ErrInvalidInput)
	}
	return c, nil
}

// Anchor returns the query center.
func (c Criteria) Anchor() geo.Point { return c.anchor }

// Radius returns the query radius in meters.
func (c Criteria) Radius() float64 { return c.radius }

// Operation returns the operation predicate, empty if unset.
func (c Criteria) Operation() string { return c.operation }

// Kind returns the kind predicate, empty if unset.
func (c Criteria) Kind() string { return c.kind }

// Rooms returns the rooms predicate, nil if unset.
func (c Criteria) Rooms() *int { return c.rooms }

// TotalArea returns the inclusive total area bounds.
func (c Criteria) TotalArea() Range { return c.totalArea }

// MaxAge returns the inclusive-null age bound, nil if unset.
func (c Criteria) MaxAge() *int { return c.maxAge }

// Limit returns the result cap, 0 for none.
func (c Criteria) Limit() int { return c.limit }

// WithLimit returns a copy with a different result cap.
func (c Criteria) WithLimit(n int) Criteria {
	c.limit = n
	return c
}

// HasAttributeFilters reports whether any non-spatial predicate is set.
func (c Criteria) HasAttributeFilters() bool {
	return c.operation != "" || c.kind != "" || c.rooms != nil ||
		!c.totalArea.IsEmpty() || c.maxAge != nil
}

// Range is an inclusive integer interval; nil bounds are open.
type Range struct {
	min *int
	max *int
}

// Min returns the lower inclusive bound.
func (r Range) Min() *int { return r.min }

// Max returns the upper inclusive bound.
func (r Range) Max() *int { return r.max }

// IsEmpty reports whether neither bound is set.
func (r Range) IsEmpty() bool { return r.min == nil && r.max == nil }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
