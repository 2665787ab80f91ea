package sqlite

import (
	"context"
	"strings"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/db/sqlbuild"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
)

// SearchRadius narrows candidates through the R*Tree, then applies the exact
// haversine distance and attribute predicates in SQL.
func (s *Store) SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error) {
	query, args := buildSearchQuery(c)

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	b := sqlbuild.New(sqlbuild.Question)
	lat := b.Arg(anchor.Lat)
	lng := b.Arg(anchor.Lng)
	radius := b.Arg(c.Radius())
	distance := "geo_distance(p.lat, p.lng, " + lat + ", " + lng + ")"

	boxes := geo.BoundingBoxes(anchor, c.Radius())
	overlaps := make([]string, 0, len(boxes))
	for _, box := range boxes {
		overlaps = append(overlaps, "(r.max_lat >= "+b.Arg(box.MinLat)+
			" AND r.min_lat <= "+b.Arg(box.MaxLat)+
			" AND r.max_lng >= "+b.Arg(box.MinLng)+
			" AND r.min_lng <= "+b.Arg(box.MaxLng)+")")
	}
	b.Where("(" + strings.Join(overlaps, " OR ") + ")")
	b.Where(distance + " <= " + radius)
	b.AttributePredicates(c, sqlbuild.WithTable("p"))

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(propertyColumns)
	sb.WriteString(", " + distance + " AS distance")
	sb.WriteString(" FROM property_rtree r JOIN properties p ON p.rid = r.rid")
	sb.WriteString(b.WhereClause())
	sb.WriteString(" ORDER BY distance, p.id")
	if limit := c.Limit(); limit > 0 {
		sb.WriteString(" LIMIT " + b.Arg(limit))
	}
	return sb.String(), b.Args()
}
