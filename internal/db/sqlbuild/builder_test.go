package sqlbuild

import (
	"testing"

	"github.com/kailas-cloud/comparables/internal/domain/geo"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
)

func mustCriteria(t *testing.T, opts ...filter.Option) filter.Criteria {
	t.Helper()
	c, err := filter.New(geo.NewPoint(-34.6, -58.4), 1000, opts...)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	return c
}

func TestPlaceholders(t *testing.T) {
	if got := Question(3); got != "?3" {
		t.Errorf("Question(3) = %q", got)
	}
	if got := Dollar(12); got != "$12" {
		t.Errorf("Dollar(12) = %q", got)
	}
}

func TestBuilder_Empty(t *testing.T) {
	b := New(Question).AttributePredicates(mustCriteria(t), DefaultColumns())
	if got := b.WhereClause(); got != "" {
		t.Errorf("WhereClause() = %q, want empty", got)
	}
	if len(b.Args()) != 0 {
		t.Errorf("args = %v, want none", b.Args())
	}
}

func TestBuilder_AllPredicates(t *testing.T) {
	c := mustCriteria(t,
		filter.WithOperation("venta"),
		filter.WithKind("departamento"),
		filter.WithRooms(3),
		filter.WithMinTotalArea(50),
		filter.WithMaxTotalArea(90),
		filter.WithMaxAge(20),
	)

	b := New(Dollar)
	b.Where("ST_DWithin(geog, " + b.Arg("point") + ", " + b.Arg(1000.0) + ")")
	b.AttributePredicates(c, WithTable("p"))

	want := " WHERE ST_DWithin(geog, $1, $2)" +
		" AND p.operation = $3 AND p.kind = $4 AND p.rooms = $5" +
		" AND p.total_area >= $6 AND p.total_area <= $7" +
		" AND (p.age IS NULL OR p.age <= $8)"
	if got := b.WhereClause(); got != want {
		t.Errorf("WhereClause()\n got %q\nwant %q", got, want)
	}

	args := b.Args()
	if len(args) != 8 {
		t.Fatalf("args count = %d, want 8", len(args))
	}
	if args[2] != "venta" || args[4] != 3 || args[7] != 20 {
		t.Errorf("args = %v", args)
	}
}

func TestBuilder_ZeroRoomsIsAPredicate(t *testing.T) {
	b := New(Question).AttributePredicates(mustCriteria(t, filter.WithRooms(0)), DefaultColumns())
	if got := b.WhereClause(); got != " WHERE rooms = ?1" {
		t.Errorf("WhereClause() = %q", got)
	}
}

func TestBuilder_OnlyMaxArea(t *testing.T) {
	b := New(Question).AttributePredicates(mustCriteria(t, filter.WithMaxTotalArea(70)), DefaultColumns())
	if got := b.WhereClause(); got != " WHERE total_area <= ?1" {
		t.Errorf("WhereClause() = %q", got)
	}
	if len(b.Conditions()) != 1 {
		t.Errorf("conditions = %v", b.Conditions())
	}
}
