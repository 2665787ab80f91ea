package postgis

import (
	"context"
	"strings"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/db/sqlbuild"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
)

// SearchRadius filters with ST_DWithin on the GIST index and orders by
// spheroid distance, then id.
func (s *Store) SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error) {
	query, args := buildSearchQuery(c)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(db.OpSearch, err)
	}
	defer rows.Close()

	var out []result.Result
	for rows.Next() {
		var distance float64
		p, err := scanProperty(rows, &distance)
		if err != nil {
			return nil, wrap(db.OpSearch, err)
		}
		out = append(out, result.New(p, distance))
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(db.OpSearch, err)
	}
	return out, nil
}

func buildSearchQuery(c filter.Criteria) (string, []any) {
	anchor := c.Anchor()
	b := sqlbuild.New(sqlbuild.Dollar)
	lat := b.Arg(anchor.Lat)
	lng := b.Arg(anchor.Lng)
	point := "ST_SetSRID(ST_MakePoint(" + lng + ", " + lat + "), 4326)::geography"

	b.Where("ST_DWithin(p.location, " + point + ", " + b.Arg(c.Radius()) + ")")
	b.AttributePredicates(c, sqlbuild.WithTable("p"))

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(propertyColumns)
	sb.WriteString(", ST_Distance(p.location, " + point + ") AS distance")
	sb.WriteString(" FROM properties p")
	sb.WriteString(b.WhereClause())
	sb.WriteString(" ORDER BY distance, p.id")
	if limit := c.Limit(); limit > 0 {
		sb.WriteString(" LIMIT " + b.Arg(limit))
	}
	return sb.String(), b.Args()
}
