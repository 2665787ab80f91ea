// Package sqlbuild assembles parameterized WHERE clauses shared by the SQL backends.
package sqlbuild

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
)

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// Question renders SQLite numbered parameters (?1, ?2, ...).
func Question(n int) string { return "?" + strconv.Itoa(n) }

// Dollar renders PostgreSQL parameters ($1, $2, ...).
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Columns maps filter attributes to qualified column names.
type Columns struct {
	Operation string
	Kind      string
	Rooms     string
	TotalArea string
	Age       string
}

// DefaultColumns returns unqualified column names.
func DefaultColumns() Columns {
	return WithTable("")
}

// WithTable qualifies the default column names with a table alias.
func WithTable(alias string) Columns {
	q := func(c string) string {
		if alias == "" {
			return c
		}
		return alias + "." + c
	}
	return Columns{
		Operation: q("operation"),
		Kind:      q("kind"),
		Rooms:     q("rooms"),
		TotalArea: q("total_area"),
		Age:       q("age"),
	}
}

// Builder collects conditions and their bind arguments in order.
type Builder struct {
	ph    Placeholder
	conds []string
	args  []any
}

// New creates an empty builder.
func New(ph Placeholder) *Builder {
	return &Builder{ph: ph}
}

// Arg binds v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	return b.ph(len(b.args))
}

// Where adds a condition joined with AND.
func (b *Builder) Where(cond string) *Builder {
	b.conds = append(b.conds, cond)
	return b
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any { return b.args }

// Conditions returns the collected conditions.
func (b *Builder) Conditions() []string { return b.conds }

// WhereClause renders " WHERE a AND b", or "" without conditions.
func (b *Builder) WhereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// AttributePredicates adds the non-spatial predicates of c.
// Area bounds never match an unknown area; an unknown age always passes the age bound.
func (b *Builder) AttributePredicates(c filter.Criteria, cols Columns) *Builder {
	if op := c.Operation(); op != "" {
		b.Where(cols.Operation + " = " + b.Arg(op))
	}
	if kind := c.Kind(); kind != "" {
		b.Where(cols.Kind + " = " + b.Arg(kind))
	}
	if rooms := c.Rooms(); rooms != nil {
		b.Where(cols.Rooms + " = " + b.Arg(*rooms))
	}
	area := c.TotalArea()
	if lo := area.Min(); lo != nil {
		b.Where(cols.TotalArea + " >= " + b.Arg(*lo))
	}
	if hi := area.Max(); hi != nil {
		b.Where(cols.TotalArea + " <= " + b.Arg(*hi))
	}
	if age := c.MaxAge(); age != nil {
		b.Where("(" + cols.Age + " IS NULL OR " + cols.Age + " <= " + b.Arg(*age) + ")")
	}
	return b
}
