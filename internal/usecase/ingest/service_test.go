package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

// --- Mocks ---

type mockLoader struct {
	res       batch.Result
	err       error
	callCount int
	got       []domprop.Property
	replace   bool
}

func (m *mockLoader) Load(_ context.Context, props []domprop.Property, replace bool) (batch.Result, error) {
	m.callCount++
	m.got = props
	m.replace = replace
	return m.res, m.err
}

func strPtr(s string) *string    { return &s }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func validDraft(id string) domprop.Draft {
	return domprop.Draft{
		ID:        strPtr(id),
		Operation: strPtr("venta"),
		Kind:      strPtr("departamento"),
		Rooms:     intPtr(3),
		Lat:       floatPtr(-34.6),
		Lng:       floatPtr(-58.4),
	}
}

// --- Tests ---

func TestLoad_Success(t *testing.T) {
	repo := &mockLoader{res: batch.NewResult(2, 0, 2)}
	svc := New(repo, domprop.ZeroIsMissing)

	res, err := svc.Load(context.Background(), []domprop.Draft{validDraft("a"), validDraft("b")}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted() != 2 || res.Total() != 2 {
		t.Errorf("got inserted=%d total=%d", res.Inserted(), res.Total())
	}
	if len(repo.got) != 2 || repo.got[0].ID() != "a" || repo.got[1].ID() != "b" {
		t.Errorf("records not passed in input order: %v", repo.got)
	}
	if !repo.replace {
		t.Error("replace flag not forwarded")
	}
}

func TestLoad_EmptyBatch(t *testing.T) {
	for _, replace := range []bool{false, true} {
		repo := &mockLoader{res: batch.NewResult(0, 0, 0)}
		svc := New(repo, domprop.ZeroIsMissing)

		res, err := svc.Load(context.Background(), []domprop.Draft{}, replace)
		if err != nil {
			t.Fatalf("replace=%v: unexpected error: %v", replace, err)
		}
		if repo.callCount != 1 || repo.replace != replace {
			t.Errorf("replace=%v: store calls=%d replace=%v", replace, repo.callCount, repo.replace)
		}
		if res.Total() != 0 {
			t.Errorf("replace=%v: total = %d", replace, res.Total())
		}
	}
}

func TestLoad_BatchTooLarge(t *testing.T) {
	repo := &mockLoader{}
	svc := New(repo, domprop.ZeroIsMissing).WithMaxBatchSize(1)

	_, err := svc.Load(context.Background(), []domprop.Draft{validDraft("a"), validDraft("b")}, false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.callCount != 0 {
		t.Error("store must not be called")
	}
}

func TestLoad_InvalidRecordRejectsWholeBatch(t *testing.T) {
	repo := &mockLoader{}
	svc := New(repo, domprop.ZeroIsMissing)

	bad := validDraft("b")
	bad.Lat = nil

	_, err := svc.Load(context.Background(), []domprop.Draft{validDraft("a"), bad}, false)
	var invalid *domprop.InvalidBatchError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidBatchError, got %v", err)
	}
	if len(invalid.Records) != 1 || invalid.Records[0].Index != 1 {
		t.Errorf("unexpected invalid records: %+v", invalid.Records)
	}
	if invalid.Records[0].Missing[0] != domprop.FieldLat {
		t.Errorf("missing = %v, want lat", invalid.Records[0].Missing)
	}
	if repo.callCount != 0 {
		t.Error("store must not be called for an invalid batch")
	}
}

func TestLoad_ZeroPolicy(t *testing.T) {
	zeroRooms := validDraft("a")
	zeroRooms.Rooms = intPtr(0)
	zeroRooms.Age = intPtr(0)

	t.Run("missing", func(t *testing.T) {
		repo := &mockLoader{}
		_, err := New(repo, domprop.ZeroIsMissing).Load(context.Background(), []domprop.Draft{zeroRooms}, false)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("value", func(t *testing.T) {
		repo := &mockLoader{res: batch.NewResult(1, 0, 1)}
		_, err := New(repo, domprop.ZeroIsValue).Load(context.Background(), []domprop.Draft{zeroRooms}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.got[0].Rooms() != 0 || repo.got[0].Age() == nil || *repo.got[0].Age() != 0 {
			t.Errorf("zero values not kept: rooms=%d age=%v", repo.got[0].Rooms(), repo.got[0].Age())
		}
	})
}

func TestLoad_NegativeRooms(t *testing.T) {
	d := validDraft("a")
	d.Rooms = intPtr(-1)

	repo := &mockLoader{}
	_, err := New(repo, domprop.ZeroIsMissing).Load(context.Background(), []domprop.Draft{d}, false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.callCount != 0 {
		t.Error("store must not be called")
	}
}

func TestLoad_StoreError(t *testing.T) {
	repo := &mockLoader{err: domain.ErrStoreTimeout}
	svc := New(repo, domprop.ZeroIsMissing)

	_, err := svc.Load(context.Background(), []domprop.Draft{validDraft("a")}, false)
	if !errors.Is(err, domain.ErrStoreTimeout) {
		t.Fatalf("expected ErrStoreTimeout, got %v", err)
	}
}
