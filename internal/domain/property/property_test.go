package property

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestNew_Valid(t *testing.T) {
	p, err := New("A", "sale", "apartment", 3, geo.NewPoint(-34.6, -58.4), Details{
		TotalArea: intPtr(80),
		Price:     floatPtr(120000.5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() != "A" || p.Operation() != "sale" || p.Kind() != "apartment" || p.Rooms() != 3 {
		t.Errorf("unexpected fields: %+v", p)
	}
	if p.Location() != geo.NewPoint(-34.6, -58.4) {
		t.Errorf("Location() = %+v", p.Location())
	}
	if *p.TotalArea() != 80 {
		t.Errorf("TotalArea() = %d", *p.TotalArea())
	}
	if p.CoveredArea() != nil || p.Age() != nil {
		t.Error("unset optionals must be nil")
	}
	if *p.Price() != 120000.5 {
		t.Errorf("Price() = %f", *p.Price())
	}
	if p.Revision() != 1 {
		t.Errorf("Revision() = %d, want 1", p.Revision())
	}
}

func TestNew_RequiredFields(t *testing.T) {
	tests := []struct {
		name         string
		id, op, kind string
		rooms        int
	}{
		{"no id", "", "sale", "house", 1},
		{"no operation", "A", "", "house", 1},
		{"no kind", "A", "sale", "", 1},
		{"negative rooms", "A", "sale", "house", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.op, tt.kind, tt.rooms, geo.Point{}, Details{})
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestNew_CopiesDetails(t *testing.T) {
	area := 50
	p, _ := New("A", "sale", "house", 2, geo.Point{}, Details{TotalArea: &area})
	area = 999
	if *p.TotalArea() != 50 {
		t.Error("details mutation leaked into property")
	}

	got := p.TotalArea()
	*got = 7
	if *p.TotalArea() != 50 {
		t.Error("accessor must return a copy")
	}
}

func TestReconstruct(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(time.Hour)
	p := Reconstruct("B", "rent", "house", 0, geo.NewPoint(1, 2), Details{Age: intPtr(10)}, created, updated, 4)

	if p.Rooms() != 0 {
		t.Errorf("Rooms() = %d", p.Rooms())
	}
	if !p.CreatedAt().Equal(created) || !p.UpdatedAt().Equal(updated) {
		t.Error("timestamps not preserved")
	}
	if p.Revision() != 4 {
		t.Errorf("Revision() = %d", p.Revision())
	}
	if *p.Age() != 10 {
		t.Errorf("Age() = %d", *p.Age())
	}
}
