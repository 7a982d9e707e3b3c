package repository

import (
	"context"
	"errors"

	"github.com/utafrali/storefront/internal/domain"
)

// ErrQuotaExceeded is returned when a snapshot store has no room left.
var ErrQuotaExceeded = errors.New("snapshot storage quota exceeded")

// SnapshotRepository stores JSON snapshots of session state by key.
type SnapshotRepository interface {
	// Load decodes the snapshot stored at key into dst. It reports false,
	// with a nil error, when nothing is stored.
	Load(ctx context.Context, key string, dst any) (bool, error)

	// Save overwrites the snapshot at key.
	Save(ctx context.Context, key string, v any) error

	// Delete removes the snapshot at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// CatalogRepository is a source of products.
type CatalogRepository interface {
	// List returns every product in catalog order.
	List(ctx context.Context) ([]domain.Product, error)
}
