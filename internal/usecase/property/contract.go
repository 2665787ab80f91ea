package property

import (
	"context"

	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

// Repository reads and removes stored properties.
type Repository interface {
	Get(ctx context.Context, id string) (domprop.Property, error)
	List(ctx context.Context) ([]domprop.Property, error)
	Delete(ctx context.Context, id string) (int, error)
}
