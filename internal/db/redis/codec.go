package redis

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/comparables/internal/domain/geo"
	"github.com/kailas-cloud/comparables/internal/domain/property"
)

// Hash field names. Optional attributes are absent when unknown.
const (
	fieldID          = "id"
	fieldOperation   = "operation"
	fieldKind        = "kind"
	fieldRooms       = "rooms"
	fieldLat         = "lat"
	fieldLng         = "lng"
	fieldLocation    = "location"
	fieldTotalArea   = "total_area"
	fieldCoveredArea = "covered_area"
	fieldAge         = "age"
	fieldHasAge      = "has_age"
	fieldPrice       = "price"
	fieldRevision    = "revision"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
	fieldDistance    = "distance"
)

// optionalFields are cleared before every write so a full-row upsert drops stale values.
var optionalFields = []string{fieldTotalArea, fieldCoveredArea, fieldAge, fieldPrice}

// loadFields are the hash fields FT.AGGREGATE returns per hit.
var loadFields = []string{
	fieldID, fieldOperation, fieldKind, fieldRooms, fieldLat, fieldLng, fieldLocation,
	fieldTotalArea, fieldCoveredArea, fieldAge, fieldPrice,
	fieldRevision, fieldCreatedAt, fieldUpdatedAt,
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// encodeFields flattens the writable attributes into HSET field/value pairs.
// Revision and timestamps are maintained by the load script.
func encodeFields(p *property.Property) []string {
	loc := p.Location()
	out := []string{
		fieldID, p.ID(),
		fieldOperation, p.Operation(),
		fieldKind, p.Kind(),
		fieldRooms, strconv.Itoa(p.Rooms()),
		fieldLat, formatFloat(loc.Lat),
		fieldLng, formatFloat(loc.Lng),
		fieldLocation, formatFloat(loc.Lng) + "," + formatFloat(loc.Lat),
	}
	if v := p.TotalArea(); v != nil {
		out = append(out, fieldTotalArea, strconv.Itoa(*v))
	}
	if v := p.CoveredArea(); v != nil {
		out = append(out, fieldCoveredArea, strconv.Itoa(*v))
	}
	if v := p.Age(); v != nil {
		out = append(out, fieldAge, strconv.Itoa(*v), fieldHasAge, "1")
	} else {
		out = append(out, fieldHasAge, "0")
	}
	if v := p.Price(); v != nil {
		out = append(out, fieldPrice, formatFloat(*v))
	}
	return out
}

// decodeFields rebuilds a Property from hash fields.
func decodeFields(m map[string]string) (property.Property, error) {
	id := m[fieldID]
	if id == "" {
		return property.Property{}, fmt.Errorf("record without id")
	}

	rooms, err := strconv.Atoi(m[fieldRooms])
	if err != nil {
		return property.Property{}, fmt.Errorf("record %s: rooms: %w", id, err)
	}
	lat, err := strconv.ParseFloat(m[fieldLat], 64)
	if err != nil {
		return property.Property{}, fmt.Errorf("record %s: lat: %w", id, err)
	}
	lng, err := strconv.ParseFloat(m[fieldLng], 64)
	if err != nil {
		return property.Property{}, fmt.Errorf("record %s: lng: %w", id, err)
	}

	var details property.Details
	if details.TotalArea, err = optionalInt(m, fieldTotalArea); err != nil {
		return property.Property{}, fmt.Errorf("record %s: %w", id, err)
	}
	if details.CoveredArea, err = optionalInt(m, fieldCoveredArea); err != nil {
		return property.Property{}, fmt.Errorf("record %s: %w", id, err)
	}
	if details.Age, err = optionalInt(m, fieldAge); err != nil {
		return property.Property{}, fmt.Errorf("record %s: %w", id, err)
	}
	if raw, ok := m[fieldPrice]; ok && raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return property.Property{}, fmt.Errorf("record %s: price: %w", id, err)
		}
		details.Price = &v
	}

	revision, _ := strconv.Atoi(m[fieldRevision])
	createdAt, _ := strconv.ParseInt(m[fieldCreatedAt], 10, 64)
	updatedAt, _ := strconv.ParseInt(m[fieldUpdatedAt], 10, 64)

	return property.Reconstruct(
		id, m[fieldOperation], m[fieldKind], rooms, geo.NewPoint(lat, lng), details,
		time.Unix(0, createdAt).UTC(), time.Unix(0, updatedAt).UTC(), revision,
	), nil
}

func optionalInt(m map[string]string, field string) (*int, error) {
	raw, ok := m[field]
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &v, nil
}
