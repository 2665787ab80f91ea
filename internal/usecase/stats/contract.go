package stats

import "context"

// Counter reports stored record counts.
type Counter interface {
	Count(ctx context.Context) (int, error)
	CountByOperation(ctx context.Context) (map[string]int, error)
	CountByKind(ctx context.Context) (map[string]int, error)
}
