package property

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
)

// Details holds the optional listing attributes. Nil means unknown.
type Details struct {
	TotalArea   *int
	CoveredArea *int
	Age         *int
	Price       *float64
}

// Property is a listing record (immutable value object).
type Property struct {
	id        string
	operation string
	kind      string
	rooms     int
	location  geo.Point
	details   Details
	createdAt time.Time
	updatedAt time.Time
	revision  int
}

// New validates and creates a Property.
// Coordinates are taken as given, without range checks.
func New(id, operation, kind string, rooms int, location geo.Point, details Details) (Property, error) {
	if id == "" {
		return Property{}, fmt.Errorf("property id is required: %w", domain.ErrInvalidInput)
	}
	if operation == "" {
		return Property{}, fmt.Errorf("property %s: operation is required: %w", id, domain.ErrInvalidInput)
	}
	if kind == "" {
		return Property{}, fmt.Errorf("property %s: kind is required: %w", id, domain.ErrInvalidInput)
	}
	if rooms < 0 {
		return Property{}, fmt.Errorf("property %s: rooms must not be negative: %w", id, domain.ErrInvalidInput)
	}

	return Property{
		id:        id,
		operation: operation,
		kind:      kind,
		rooms:     rooms,
		location:  location,
		details:   cloneDetails(details),
		revision:  1,
	}, nil
}

// Reconstruct creates a Property without validation (storage hydration).
func Reconstruct(
	id, operation, kind string, rooms int, location geo.Point, details Details,
	createdAt, updatedAt time.Time, revision int,
) Property {
	return Property{
		id: id, operation: operation, kind: kind, rooms: rooms,
		location: location, details: details,
		createdAt: createdAt, updatedAt: updatedAt, revision: revision,
	}
}

// ID returns the caller-assigned key.
func (p Property) ID() string { return p.id }

// Operation returns the listing operation (sale, rent, ...).
func (p Property) Operation() string { return p.operation }

// Kind returns the property type (apartment, house, ...).
func (p Property) Kind() string { return p.kind }

// Rooms returns the room count.
func (p Property) Rooms() int { return p.rooms }

// Location returns the coordinate.
func (p Property) Location() geo.Point { return p.location }

// Details returns a copy of the optional attributes.
func (p Property) Details() Details { return cloneDetails(p.details) }

// TotalArea returns the total area in square meters, nil if unknown.
func (p Property) TotalArea() *int { return cloneInt(p.details.TotalArea) }

// CoveredArea returns the covered area in square meters, nil if unknown.
func (p Property) CoveredArea() *int { return cloneInt(p.details.CoveredArea) }

// Age returns the building age in years, nil if unknown.
func (p Property) Age() *int { return cloneInt(p.details.Age) }

// Price returns the listing price, nil if unknown.
func (p Property) Price() *float64 {
	if p.details.Price == nil {
		return nil
	}
	v := *p.details.Price
	return &v
}

// CreatedAt returns the first insert time. Zero until stored.
func (p Property) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last write time. Zero until stored.
func (p Property) UpdatedAt() time.Time { return p.updatedAt }

// Revision returns the write counter: 1 after insert, incremented on every overwrite.
func (p Property) Revision() int { return p.revision }

func cloneDetails(d Details) Details {
	out := Details{
		TotalArea:   cloneInt(d.TotalArea),
		CoveredArea: cloneInt(d.CoveredArea),
		Age:         cloneInt(d.Age),
	}
	if d.Price != nil {
		v := *d.Price
		out.Price = &v
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
