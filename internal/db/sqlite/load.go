package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	"github.com/kailas-cloud/comparables/internal/domain/property"
)

const upsertSQL = `INSERT INTO properties (
	id, operation, kind, rooms, lat, lng,
	total_area, covered_area, age, price,
	revision, created_at, updated_at
) VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, 1, ?11, ?11)
ON CONFLICT(id) DO UPDATE SET
	operation    = excluded.operation,
	kind         = excluded.kind,
	rooms        = excluded.rooms,
	lat          = excluded.lat,
	lng          = excluded.lng,
	total_area   = excluded.total_area,
	covered_area = excluded.covered_area,
	age          = excluded.age,
	price        = excluded.price,
	revision     = properties.revision + 1,
	updated_at   = excluded.updated_at
RETURNING rid, revision`

const rtreeUpsertSQL = `INSERT OR REPLACE INTO property_rtree (rid, min_lat, max_lat, min_lng, max_lng)
VALUES (?1, ?2, ?2, ?3, ?3)`

// Load upserts props in one transaction. Missing optional attributes overwrite stored ones with NULL.
func (s *Store) Load(ctx context.Context, props []property.Property, replace bool) (batch.Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM properties`); err != nil {
			return batch.Result{}, wrap(db.OpLoad, fmt.Errorf("clear properties: %w", err))
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM property_rtree`); err != nil {
			return batch.Result{}, wrap(db.OpLoad, fmt.Errorf("clear spatial index: %w", err))
		}
	}

	upsert, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	defer upsert.Close()

	rtree, err := tx.PrepareContext(ctx, rtreeUpsertSQL)
	if err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	defer rtree.Close()

	now := s.now().UnixNano()
	outcomes := make([]batch.Outcome, 0, len(props))
	for i := range props {
		p := &props[i]
		loc := p.Location()

		var rid int64
		var revision int
		err := upsert.QueryRowContext(ctx,
			p.ID(), p.Operation(), p.Kind(), p.Rooms(), loc.Lat, loc.Lng,
			nullInt(p.TotalArea()), nullInt(p.CoveredArea()), nullInt(p.Age()), nullFloat(p.Price()),
			now,
		).Scan(&rid, &revision)
		if err != nil {
			return batch.Result{}, wrap(db.OpLoad, fmt.Errorf("upsert %s: %w", p.ID(), err))
		}

		if _, err := rtree.ExecContext(ctx, rid, loc.Lat, loc.Lng); err != nil {
			return batch.Result{}, wrap(db.OpLoad, fmt.Errorf("index %s: %w", p.ID(), err))
		}
		outcomes = append(outcomes, batch.OutcomeFromRevision(revision))
	}

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&total); err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	if err := tx.Commit(); err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	return batch.Tally(outcomes, total), nil
}

// Delete removes a record and its spatial entry, returning the remaining count.
func (s *Store) Delete(ctx context.Context, id string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	defer func() { _ = tx.Rollback() }()

	var rid int64
	err = tx.QueryRowContext(ctx, `DELETE FROM properties WHERE id = ?1 RETURNING rid`, id).Scan(&rid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, wrap(db.OpDelete, db.ErrKeyNotFound)
	}
	if err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM property_rtree WHERE rid = ?1`, rid); err != nil {
		return 0, wrap(db.OpDelete, err)
	}

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&total); err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	return total, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
