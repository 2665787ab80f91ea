package comparables

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/comparables/internal/domain"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput     = domain.ErrInvalidInput
	ErrNotFound         = domain.ErrPropertyNotFound
	ErrStoreTimeout     = domain.ErrStoreTimeout
	ErrStoreUnavailable = domain.ErrStoreUnavailable
)

// InvalidRecord names a rejected record and the required fields it lacks.
type InvalidRecord struct {
	Index   int
	ID      string
	Missing []string
}

// ValidationError rejects a whole batch. Nothing was written.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Records []InvalidRecord
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("comparables: %d records with missing fields", len(e.Records))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// publicError converts internal batch errors into *ValidationError.
func publicError(err error) error {
	var ibe *domprop.InvalidBatchError
	if !errors.As(err, &ibe) {
		return err
	}
	recs := make([]InvalidRecord, len(ibe.Records))
	for i, r := range ibe.Records {
		recs[i] = InvalidRecord{Index: r.Index, Missing: r.Missing}
		if r.Draft.ID != nil {
			recs[i].ID = *r.Draft.ID
		}
	}
	return &ValidationError{Records: recs}
}
