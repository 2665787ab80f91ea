package batch

// Outcome is how a single record was applied by an upsert.
type Outcome string

// Upsert outcomes.
const (
	Inserted Outcome = "inserted"
	Updated  Outcome = "updated"
)

// OutcomeFromRevision classifies a write by the revision it produced.
func OutcomeFromRevision(revision int) Outcome {
	if revision <= 1 {
		return Inserted
	}
	return Updated
}

// Result is the outcome of loading one batch.
type Result struct {
	inserted int
	updated  int
	total    int
}

// NewResult creates a batch result.
func NewResult(inserted, updated, total int) Result {
	return Result{inserted: inserted, updated: updated, total: total}
}

// Tally counts per-record outcomes. total is the store size after the load.
func Tally(outcomes []Outcome, total int) Result {
	r := Result{total: total}
	for _, o := range outcomes {
		switch o {
		case Inserted:
			r.inserted++
		case Updated:
			r.updated++
		}
	}
	return r
}

// Inserted returns the number of records that did not exist before.
func (r Result) Inserted() int { return r.inserted }

// Updated returns the number of records that overwrote an existing one.
func (r Result) Updated() int { return r.updated }

// Total returns the number of stored records after the load.
func (r Result) Total() int { return r.total }
