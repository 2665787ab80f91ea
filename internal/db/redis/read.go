package redis

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/property"
)

// Get fetches a record by id.
func (s *Store) Get(ctx context.Context, id string) (property.Property, error) {
	cmd := s.b().Hgetall().Key(s.recordKey(id)).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return property.Property{}, &db.Error{Op: db.OpGet, Err: err}
	}
	if len(m) == 0 {
		return property.Property{}, &db.Error{Op: db.OpGet, Err: db.ErrKeyNotFound}
	}
	p, err := decodeFields(m)
	if err != nil {
		return property.Property{}, &db.Error{Op: db.OpGet, Err: err}
	}
	return p, nil
}

// List returns every record, newest first.
func (s *Store) List(ctx context.Context) ([]property.Property, error) {
	ids, err := s.do(ctx, s.b().Smembers().Key(s.idsKey()).Build()).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpList, Err: err}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	hashes, err := s.hgetAllMulti(ctx, ids)
	if err != nil {
		return nil, &db.Error{Op: db.OpList, Err: err}
	}

	out := make([]property.Property, 0, len(hashes))
	for _, m := range hashes {
		if len(m) == 0 {
			continue
		}
		p, err := decodeFields(m)
		if err != nil {
			return nil, &db.Error{Op: db.OpList, Err: err}
		}
		out = append(out, p)
	}

	slices.SortFunc(out, func(a, b property.Property) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(b.ID(), a.ID())
	})
	return out, nil
}

// hgetAllMulti fetches several records in a single DoMulti round-trip.
func (s *Store) hgetAllMulti(ctx context.Context, ids []string) ([]map[string]string, error) {
	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		cmds[i] = s.b().Hgetall().Key(s.recordKey(id)).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", ids[i], err)
		}
		out[i] = m
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.do(ctx, s.b().Scard().Key(s.idsKey()).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return int(n), nil
}

// CountBy groups indexed records by field via FT.AGGREGATE.
func (s *Store) CountBy(ctx context.Context, field db.GroupField) (map[string]int, error) {
	col, err := db.GroupColumn(field)
	if err != nil {
		return nil, &db.Error{Op: db.OpCountBy, Err: err}
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(
		s.indexName(), "*",
		"GROUPBY", "1", "@"+col,
		"REDUCE", "COUNT", "0", "AS", "count",
		"DIALECT", "2",
	).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpCountBy, Err: err}
	}

	out := make(map[string]int)
	for _, row := range aggregateRows(raw) {
		n, err := strconv.Atoi(row["count"])
		if err != nil {
			return nil, &db.Error{Op: db.OpCountBy, Err: fmt.Errorf("parse count: %w", err)}
		}
		out[row[col]] = n
	}
	return out, nil
}

// aggregateRows converts a RESP2 FT.AGGREGATE reply [total, row1, row2, ...] into field maps.
func aggregateRows(raw []rueidis.RedisMessage) []map[string]string {
	if len(raw) < 2 {
		return nil
	}
	rows := make([]map[string]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		fields, err := r.ToArray()
		if err != nil {
			continue
		}
		rows = append(rows, parseFieldPairs(fields))
	}
	return rows
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
