package comparables

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/comparables/internal/domain/geo"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
)

// FindResult holds comparables nearest first.
type FindResult struct {
	Comparables []Comparable
	IDs         []string
	// Truncated reports that WithMaxResults dropped matching comparables.
	Truncated bool
}

// SearchBuilder builds a comparables query with a fluent API.
type SearchBuilder struct {
	client *Client

	anchorSet bool
	lat, lng  float64
	radius    float64

	opts []filter.Option
	err  error
}

// Near sets the anchor point.
func (b *SearchBuilder) Near(lat, lng float64) *SearchBuilder {
	b.lat, b.lng, b.anchorSet = lat, lng, true
	return b
}

// Meters sets the search radius in meters.
func (b *SearchBuilder) Meters(m float64) *SearchBuilder {
	b.radius = m
	return b
}

// Km sets the search radius in kilometers.
func (b *SearchBuilder) Km(km float64) *SearchBuilder {
	b.radius = km * 1000
	return b
}

// Operation keeps only listings with this operation.
func (b *SearchBuilder) Operation(op string) *SearchBuilder {
	b.opts = append(b.opts, filter.WithOperation(op))
	return b
}

// Kind keeps only listings of this kind.
func (b *SearchBuilder) Kind(kind string) *SearchBuilder {
	b.opts = append(b.opts, filter.WithKind(kind))
	return b
}

// Rooms keeps only listings with exactly n rooms.
func (b *SearchBuilder) Rooms(n int) *SearchBuilder {
	b.opts = append(b.opts, filter.WithRooms(n))
	return b
}

// MinArea sets the lower total area bound in square meters.
func (b *SearchBuilder) MinArea(m2 int) *SearchBuilder {
	b.opts = append(b.opts, filter.WithMinTotalArea(m2))
	return b
}

// MaxArea sets the upper total area bound in square meters.
func (b *SearchBuilder) MaxArea(m2 int) *SearchBuilder {
	b.opts = append(b.opts, filter.WithMaxTotalArea(m2))
	return b
}

// MaxAge keeps listings at most n years old. Unknown ages are kept.
func (b *SearchBuilder) MaxAge(years int) *SearchBuilder {
	b.opts = append(b.opts, filter.WithMaxAge(years))
	return b
}

// Limit caps the number of results.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	if n <= 0 {
		b.err = fmt.Errorf("limit must be positive: %w", ErrInvalidInput)
		return b
	}
	b.opts = append(b.opts, filter.WithLimit(n))
	return b
}

// Do executes the query.
func (b *SearchBuilder) Do(ctx context.Context) (FindResult, error) {
	done := b.client.obs.start("search")
	res, err := b.do(ctx)
	done(err)
	return res, err
}

func (b *SearchBuilder) do(ctx context.Context) (FindResult, error) {
	if b.err != nil {
		return FindResult{}, b.err
	}
	if !b.anchorSet {
		return FindResult{}, fmt.Errorf("anchor is required, call Near: %w", ErrInvalidInput)
	}

	c, err := filter.New(geo.NewPoint(b.lat, b.lng), b.radius, b.opts...)
	if err != nil {
		return FindResult{}, err
	}

	out, err := b.client.finder.Find(b.client.withLogger(ctx), c)
	if err != nil {
		return FindResult{}, err
	}

	hits := make([]Comparable, len(out.Hits))
	for i := range out.Hits {
		p := out.Hits[i].Property()
		hits[i] = Comparable{Property: propertyFromDomain(&p), Distance: out.Hits[i].Distance()}
	}
	return FindResult{Comparables: hits, IDs: out.IDs, Truncated: out.Truncated}, nil
}
