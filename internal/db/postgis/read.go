package postgis

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
	"github.com/kailas-cloud/comparables/internal/domain/property"
)

const propertyColumns = `p.id, p.operation, p.kind, p.rooms, p.lat, p.lng,
	p.total_area, p.covered_area, p.age, p.price::float8,
	p.revision, p.created_at, p.updated_at`

func scanProperty(row pgx.Row, extra ...any) (property.Property, error) {
	var (
		id, operation, kind  string
		rooms, revision      int
		lat, lng             float64
		details              property.Details
		createdAt, updatedAt time.Time
	)
	dest := append([]any{
		&id, &operation, &kind, &rooms, &lat, &lng,
		&details.TotalArea, &details.CoveredArea, &details.Age, &details.Price,
		&revision, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return property.Property{}, err
	}
	return property.Reconstruct(
		id, operation, kind, rooms, geo.NewPoint(lat, lng), details,
		createdAt.UTC(), updatedAt.UTC(), revision,
	), nil
}

// Get fetches a record by id.
func (s *Store) Get(ctx context.Context, id string) (property.Property, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id = $1`, id)
	p, err := scanProperty(row)
	if isNoRows(err) {
		return property.Property{}, wrap(db.OpGet, db.ErrKeyNotFound)
	}
	if err != nil {
		return property.Property{}, wrap(db.OpGet, err)
	}
	return p, nil
}

// List returns every record, newest first.
func (s *Store) List(ctx context.Context) ([]property.Property, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties p ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, wrap(db.OpList, err)
	}
	defer rows.Close()

	var out []property.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, wrap(db.OpList, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(db.OpList, err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
		return 0, wrap(db.OpCount, err)
	}
	return n, nil
}

// CountBy returns record counts grouped by field.
func (s *Store) CountBy(ctx context.Context, field db.GroupField) (map[string]int, error) {
	col, err := db.GroupColumn(field)
	if err != nil {
		return nil, wrap(db.OpCountBy, err)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM properties GROUP BY %s`, col, col))
	if err != nil {
		return nil, wrap(db.OpCountBy, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, wrap(db.OpCountBy, err)
		}
		out[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(db.OpCountBy, err)
	}
	return out, nil
}
