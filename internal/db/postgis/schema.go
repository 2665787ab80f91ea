package postgis

import (
	"context"

	"github.com/kailas-cloud/comparables/internal/db"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS properties (
		id           TEXT PRIMARY KEY,
		operation    TEXT NOT NULL,
		kind         TEXT NOT NULL,
		rooms        INTEGER NOT NULL,
		lat          DOUBLE PRECISION NOT NULL,
		lng          DOUBLE PRECISION NOT NULL,
		total_area   INTEGER,
		covered_area INTEGER,
		age          INTEGER,
		price        NUMERIC(14, 2),
		location     GEOGRAPHY(POINT, 4326) NOT NULL,
		revision     INTEGER NOT NULL DEFAULT 1,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_location ON properties USING GIST(location)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_operation ON properties(operation)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_kind ON properties(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at)`,
}

// EnsureSchema installs PostGIS and creates the properties table. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return wrap(db.OpSchema, err)
		}
	}
	return nil
}
