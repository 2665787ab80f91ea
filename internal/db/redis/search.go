package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/search/filter"
	"github.com/kailas-cloud/comparables/internal/domain/search/result"
)

// SearchRadius runs FT.AGGREGATE with a GEO pre-filter, computes geodistance
// per hit and sorts by distance, then id. Without a limit it pages through
// every match.
func (s *Store) SearchRadius(ctx context.Context, c filter.Criteria) ([]result.Result, error) {
	if limit := c.Limit(); limit > 0 {
		return s.aggregate(ctx, c, 0, limit)
	}

	var out []result.Result
	for offset := 0; ; offset += s.pageSize {
		page, err := s.aggregate(ctx, c, offset, s.pageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < s.pageSize {
			return out, nil
		}
	}
}

func (s *Store) aggregate(ctx context.Context, c filter.Criteria, offset, num int) ([]result.Result, error) {
	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(s.buildAggregateArgs(c, offset, num)...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	rows := aggregateRows(raw)
	out := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		p, err := decodeFields(row)
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: err}
		}
		distance, err := strconv.ParseFloat(row[fieldDistance], 64)
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("record %s: distance: %w", p.ID(), err)}
		}
		out = append(out, result.New(p, distance))
	}
	return out, nil
}

func (s *Store) buildAggregateArgs(c filter.Criteria, offset, num int) []string {
	anchor := c.Anchor()
	lng, lat := formatFloat(anchor.Lng), formatFloat(anchor.Lat)
	radius := formatFloat(c.Radius())

	args := []string{s.indexName(), buildQuery(c)}

	args = append(args, "LOAD", strconv.Itoa(len(loadFields)))
	for _, f := range loadFields {
		args = append(args, "@"+f)
	}

	args = append(args,
		"APPLY", fmt.Sprintf("geodistance(@%s, %s, %s)", fieldLocation, lng, lat), "AS", fieldDistance,
		"FILTER", fmt.Sprintf("@%s <= %s", fieldDistance, radius),
		"SORTBY", "4", "@"+fieldDistance, "ASC", "@"+fieldID, "ASC",
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(num),
		"DIALECT", "2",
	)
	return args
}

// buildQuery renders the GEO radius plus attribute predicates as an FT query string.
func buildQuery(c filter.Criteria) string {
	anchor := c.Anchor()
	parts := []string{fmt.Sprintf("@%s:[%s %s %s m]",
		fieldLocation, formatFloat(anchor.Lng), formatFloat(anchor.Lat), formatFloat(c.Radius()))}

	if op := c.Operation(); op != "" {
		parts = append(parts, buildTagFilter(fieldOperation, op))
	}
	if kind := c.Kind(); kind != "" {
		parts = append(parts, buildTagFilter(fieldKind, kind))
	}
	if rooms := c.Rooms(); rooms != nil {
		parts = append(parts, buildNumericFilter(fieldRooms, rooms, rooms))
	}
	if area := c.TotalArea(); !area.IsEmpty() {
		parts = append(parts, buildNumericFilter(fieldTotalArea, area.Min(), area.Max()))
	}
	if age := c.MaxAge(); age != nil {
		parts = append(parts, fmt.Sprintf("(%s | @%s:{0})", buildNumericFilter(fieldAge, nil, age), fieldHasAge))
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(key string, lo, hi *int) string {
	minBound := "-inf"
	maxBound := "+inf"
	if lo != nil {
		minBound = strconv.Itoa(*lo)
	}
	if hi != nil {
		maxBound = strconv.Itoa(*hi)
	}
	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

var tagEscaper = strings.NewReplacer(
	"\\", "\\\\",
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"[", "\\[",
	"]", "\\]",
	"/", "\\/",
	" ", "\\ ",
)
