package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
	"github.com/kailas-cloud/comparables/internal/domain/property"
)

const propertyColumns = `p.id, p.operation, p.kind, p.rooms, p.lat, p.lng,
	p.total_area, p.covered_area, p.age, p.price,
	p.revision, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanProperty reads propertyColumns followed by any extra destinations.
func scanProperty(row rowScanner, extra ...any) (property.Property, error) {
	var (
		id, operation, kind  string
		rooms, revision      int
		lat, lng             float64
		totalArea, covered   sql.NullInt64
		age                  sql.NullInt64
		price                sql.NullFloat64
		createdAt, updatedAt int64
	)
	dest := append([]any{
		&id, &operation, &kind, &rooms, &lat, &lng,
		&totalArea, &covered, &age, &price,
		&revision, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return property.Property{}, err
	}

	details := property.Details{
		TotalArea:   nullIntPtr(totalArea),
		CoveredArea: nullIntPtr(covered),
		Age:         nullIntPtr(age),
	}
	if price.Valid {
		v := price.Float64
		details.Price = &v
	}

	return property.Reconstruct(
		id, operation, kind, rooms, geo.NewPoint(lat, lng), details,
		time.Unix(0, createdAt).UTC(), time.Unix(0, updatedAt).UTC(), revision,
	), nil
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// Get fetches a record by id.
func (s *Store) Get(ctx context.Context, id string) (property.Property, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id = ?1`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return property.Property{}, wrap(db.OpGet, db.ErrKeyNotFound)
	}
	if err != nil {
		return property.Property{}, wrap(db.OpGet, err)
	}
	return p, nil
}

// List returns every record, newest first.
func (s *Store) List(ctx context.Context) ([]property.Property, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM properties p ORDER BY p.created_at DESC, p.rid DESC`)
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
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
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

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM properties GROUP BY %s`, col, col))
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
