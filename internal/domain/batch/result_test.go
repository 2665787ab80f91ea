package batch

import "testing"

func TestOutcomeFromRevision(t *testing.T) {
	if OutcomeFromRevision(1) != Inserted {
		t.Error("revision 1 must be an insert")
	}
	if OutcomeFromRevision(2) != Updated {
		t.Error("revision 2 must be an update")
	}
}

func TestTally(t *testing.T) {
	r := Tally([]Outcome{Inserted, Updated, Inserted, Updated, Updated}, 42)
	if r.Inserted() != 2 || r.Updated() != 3 || r.Total() != 42 {
		t.Errorf("got inserted=%d updated=%d total=%d", r.Inserted(), r.Updated(), r.Total())
	}
}

func TestTally_Empty(t *testing.T) {
	r := Tally(nil, 7)
	if r.Inserted() != 0 || r.Updated() != 0 || r.Total() != 7 {
		t.Errorf("got %+v", r)
	}
}

func TestNewResult(t *testing.T) {
	r := NewResult(1, 2, 3)
	if r.Inserted() != 1 || r.Updated() != 2 || r.Total() != 3 {
		t.Errorf("got %+v", r)
	}
}
