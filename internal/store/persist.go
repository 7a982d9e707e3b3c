package store

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Storage namespaces for persisted snapshots.
const (
	CartNamespace     = "cart-storage"
	WishlistNamespace = "wishlist-storage"
)

// StorageKey scopes a namespace to one session, e.g. "cart-storage:abc".
func StorageKey(namespace, sessionID string) string {
	return namespace + ":" + sessionID
}

// Persister receives a snapshot after every mutation. Failures are logged by
// the store and never undo the in-memory change.
type Persister interface {
	Save(ctx context.Context, key string, v any) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, key string, v any) error

// Save implements Persister.
func (f PersisterFunc) Save(ctx context.Context, key string, v any) error {
	return f(ctx, key, v)
}

type nopPersister struct{}

func (nopPersister) Save(context.Context, string, any) error { return nil }

// CartSnapshot is the persisted subset of CartState. The drawer flag is
// deliberately absent.
type CartSnapshot struct {
	Items     []domain.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

// WishlistSnapshot is the persisted subset of WishlistState.
type WishlistSnapshot struct {
	Items     []domain.Product `json:"items"`
	ItemCount int              `json:"itemCount"`
}

// CartSnapshotOf selects the persisted fields of s.
func CartSnapshotOf(s domain.CartState) CartSnapshot {
	c := s.Clone()
	return CartSnapshot{Items: c.Items, Total: c.Total, ItemCount: c.ItemCount}
}

// WishlistSnapshotOf selects the persisted fields of s.
func WishlistSnapshotOf(s domain.WishlistState) WishlistSnapshot {
	c := s.Clone()
	return WishlistSnapshot{Items: c.Items, ItemCount: c.ItemCount}
}
