package property

import (
	"fmt"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
)

// Record field names used in validation reports.
const (
	FieldID          = "id"
	FieldOperation   = "operation"
	FieldKind        = "kind"
	FieldRooms       = "rooms"
	FieldLat         = "lat"
	FieldLng         = "lng"
	FieldTotalArea   = "total_area"
	FieldCoveredArea = "covered_area"
	FieldAge         = "age"
	FieldPrice       = "price"
)

// ZeroPolicy decides whether a zero value counts as a value or as "missing".
type ZeroPolicy int

const (
	// ZeroIsMissing treats zero required values as missing and stores
	// zero optional values as unknown.
	ZeroIsMissing ZeroPolicy = iota
	// ZeroIsValue treats only absent fields as missing.
	ZeroIsValue
)

// ParseZeroPolicy parses "missing" or "value". Empty means ZeroIsMissing.
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	switch s {
	case "", "missing":
		return ZeroIsMissing, nil
	case "value":
		return ZeroIsValue, nil
	default:
		return ZeroIsMissing, fmt.Errorf("unknown zero value policy %q", s)
	}
}

func (p ZeroPolicy) String() string {
	if p == ZeroIsValue {
		return "value"
	}
	return "missing"
}

// PresentInt reports whether v carries a value under the policy.
func (p ZeroPolicy) PresentInt(v *int) bool {
	return v != nil && (p == ZeroIsValue || *v != 0)
}

// PresentFloat reports whether v carries a value under the policy.
func (p ZeroPolicy) PresentFloat(v *float64) bool {
	return v != nil && (p == ZeroIsValue || *v != 0)
}

// PresentString reports whether v carries a value. Empty strings never do.
func (p ZeroPolicy) PresentString(v *string) bool {
	return v != nil && *v != ""
}

// Draft is an inbound record as submitted by a caller. Nil fields were absent.
type Draft struct {
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

// Missing returns the required fields the draft lacks under the policy.
func (d *Draft) Missing(policy ZeroPolicy) []string {
	var missing []string
	if !policy.PresentString(d.ID) {
		missing = append(missing, FieldID)
	}
	if !policy.PresentString(d.Operation) {
		missing = append(missing, FieldOperation)
	}
	if !policy.PresentString(d.Kind) {
		missing = append(missing, FieldKind)
	}
	if !policy.PresentInt(d.Rooms) {
		missing = append(missing, FieldRooms)
	}
	if !policy.PresentFloat(d.Lat) {
		missing = append(missing, FieldLat)
	}
	if !policy.PresentFloat(d.Lng) {
		missing = append(missing, FieldLng)
	}
	return missing
}

// Property converts a validated draft. Optional values the policy treats as
// absent are stored as unknown.
func (d *Draft) Property(policy ZeroPolicy) (Property, error) {
	if missing := d.Missing(policy); len(missing) > 0 {
		return Property{}, fmt.Errorf("missing fields %v: %w", missing, domain.ErrInvalidInput)
	}
	details := Details{
		TotalArea:   optionalInt(policy, d.TotalArea),
		CoveredArea: optionalInt(policy, d.CoveredArea),
		Age:         optionalInt(policy, d.Age),
	}
	if policy.PresentFloat(d.Price) {
		v := *d.Price
		details.Price = &v
	}
	return New(*d.ID, *d.Operation, *d.Kind, *d.Rooms, geo.NewPoint(*d.Lat, *d.Lng), details)
}

func optionalInt(policy ZeroPolicy, v *int) *int {
	if !policy.PresentInt(v) {
		return nil
	}
	out := *v
	return &out
}

// InvalidRecord describes one rejected draft in a batch.
type InvalidRecord struct {
	Index   int
	Draft   Draft
	Missing []string
}

// InvalidBatchError rejects a whole batch and lists every offending record.
type InvalidBatchError struct {
	Records []InvalidRecord
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("%s: %d records with missing fields", domain.ErrInvalidInput.Error(), len(e.Records))
}

func (e *InvalidBatchError) Unwrap() error { return domain.ErrInvalidInput }

// ValidateBatch checks every draft. It returns *InvalidBatchError if any is invalid.
func ValidateBatch(drafts []Draft, policy ZeroPolicy) error {
	var invalid []InvalidRecord
	for i := range drafts {
		if missing := drafts[i].Missing(policy); len(missing) > 0 {
			invalid = append(invalid, InvalidRecord{Index: i, Draft: drafts[i], Missing: missing})
		}
	}
	if len(invalid) > 0 {
		return &InvalidBatchError{Records: invalid}
	}
	return nil
}
