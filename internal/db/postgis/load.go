package postgis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	"github.com/kailas-cloud/comparables/internal/domain/property"
)

const upsertSQL = `INSERT INTO properties (
	id, operation, kind, rooms, lat, lng,
	total_area, covered_area, age, price,
	location, revision, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	ST_SetSRID(ST_MakePoint($6, $5), 4326)::geography, 1, $11, $11
)
ON CONFLICT (id) DO UPDATE SET
	operation    = EXCLUDED.operation,
	kind         = EXCLUDED.kind,
	rooms        = EXCLUDED.rooms,
	lat          = EXCLUDED.lat,
	lng          = EXCLUDED.lng,
	total_area   = EXCLUDED.total_area,
	covered_area = EXCLUDED.covered_area,
	age          = EXCLUDED.age,
	price        = EXCLUDED.price,
	location     = EXCLUDED.location,
	revision     = properties.revision + 1,
	updated_at   = EXCLUDED.updated_at
RETURNING revision`

// Load upserts props in one transaction, pipelined through a single batch.
func (s *Store) Load(ctx context.Context, props []property.Property, replace bool) (batch.Result, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if replace {
		if _, err := tx.Exec(ctx, `DELETE FROM properties`); err != nil {
			return batch.Result{}, wrap(db.OpLoad, fmt.Errorf("clear properties: %w", err))
		}
	}

	now := s.now().UTC()
	b := &pgx.Batch{}
	for i := range props {
		p := &props[i]
		loc := p.Location()
		b.Queue(upsertSQL,
			p.ID(), p.Operation(), p.Kind(), p.Rooms(), loc.Lat, loc.Lng,
			p.TotalArea(), p.CoveredArea(), p.Age(), p.Price(), now,
		)
	}

	outcomes := make([]batch.Outcome, 0, len(props))
	br := tx.SendBatch(ctx, b)
	for i := range props {
		var revision int
		if err := br.QueryRow().Scan(&revision); err != nil {
			_ = br.Close()
			return batch.Result{}, wrap(db.OpLoad, fmt.Errorf("upsert %s: %w", props[i].ID(), err))
		}
		outcomes = append(outcomes, batch.OutcomeFromRevision(revision))
	}
	if err := br.Close(); err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&total); err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return batch.Result{}, wrap(db.OpLoad, err)
	}
	return batch.Tally(outcomes, total), nil
}

// Delete removes a record and returns the remaining count.
func (s *Store) Delete(ctx context.Context, id string) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, wrap(db.OpDelete, db.ErrKeyNotFound)
	}

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&total); err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, wrap(db.OpDelete, err)
	}
	return total, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
