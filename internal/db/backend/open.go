// Package backend opens the db.Store selected by driver name.
package backend

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/db/postgis"
	dbRedis "github.com/kailas-cloud/comparables/internal/db/redis"
	"github.com/kailas-cloud/comparables/internal/db/sqlite"
)

// Driver names.
const (
	SQLite  = "sqlite"
	PostGIS = "postgis"
	Redis   = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver    string
	DSN       string   // sqlite file path or postgres URL
	Addrs     []string // redis only
	Password  string
	KeyPrefix string
	MaxConns  int
}

// Open creates the store. The connection may still be warming up; call WaitForReady.
func Open(ctx context.Context, o Options) (db.Store, error) {
	switch o.Driver {
	case SQLite:
		s, err := sqlite.NewStore(sqlite.Config{Path: o.DSN, MaxOpenConns: o.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, nil
	case PostGIS:
		s, err := postgis.NewStore(ctx, postgis.Config{DSN: o.DSN, MaxConns: int32(o.MaxConns)}) //nolint:gosec // bounded by config
		if err != nil {
			return nil, fmt.Errorf("postgis: %w", err)
		}
		return s, nil
	case Redis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     o.Addrs,
			Password:  o.Password,
			KeyPrefix: o.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", db.ErrUnknownBackend, o.Driver)
	}
}
