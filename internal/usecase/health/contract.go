package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Counter reads the stored record count.
type Counter interface {
	Count(ctx context.Context) (int, error)
}
