package sqlite

import (
	"context"

	"github.com/kailas-cloud/comparables/internal/db"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		rid          INTEGER PRIMARY KEY,
		id           TEXT    NOT NULL UNIQUE,
		operation    TEXT    NOT NULL,
		kind         TEXT    NOT NULL,
		rooms        INTEGER NOT NULL,
		lat          REAL    NOT NULL,
		lng          REAL    NOT NULL,
		total_area   INTEGER,
		covered_area INTEGER,
		age          INTEGER,
		price        REAL,
		revision     INTEGER NOT NULL DEFAULT 1,
		created_at   INTEGER NOT NULL,
		updated_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_operation ON properties(operation)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_kind ON properties(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS property_rtree USING rtree(
		rid,
		min_lat, max_lat,
		min_lng, max_lng
	)`,
}

// EnsureSchema creates the properties table and its spatial index. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(db.OpSchema, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return wrap(db.OpSchema, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrap(db.OpSchema, err)
	}
	return nil
}
