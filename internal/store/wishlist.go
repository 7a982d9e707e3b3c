package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// WishlistStore owns one session's wishlist: at most one entry per product.
type WishlistStore struct {
	mu        sync.Mutex
	key       string
	state     domain.WishlistState
	persister Persister
	logger    *slog.Logger
}

// NewWishlistStore returns an empty wishlist persisting under key.
func NewWishlistStore(key string, persister Persister, logger *slog.Logger) *WishlistStore {
	if persister == nil {
		persister = nopPersister{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WishlistStore{
		key:       key,
		state:     domain.WishlistState{Items: []domain.Product{}},
		persister: persister,
		logger:    logger,
	}
}

// AddItem inserts p unless an entry with the same ID exists, in which case
// it reports a duplicate and changes nothing.
func (s *WishlistStore) AddItem(ctx context.Context, p domain.Product) domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IndexOf(p.ID) >= 0 {
		return domain.Change{Kind: domain.ChangeDuplicate, ProductID: p.ID, ProductName: p.Name}
	}
	s.state.Items = append(s.state.Items, p.Clone())
	s.commit(ctx)
	return domain.Change{Kind: domain.ChangeAdded, ProductID: p.ID, ProductName: p.Name}
}

// RemoveItem deletes productID if present. The snapshot is written either
// way.
func (s *WishlistStore) RemoveItem(ctx context.Context, productID string) domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	change := domain.Change{Kind: domain.ChangeNoop, ProductID: productID}
	if idx := s.state.IndexOf(productID); idx >= 0 {
		change.Kind = domain.ChangeRemoved
		change.ProductName = s.state.Items[idx].Name
		s.state.Items = append(s.state.Items[:idx:idx], s.state.Items[idx+1:]...)
	}
	s.commit(ctx)
	return change
}

// Clear empties the wishlist.
func (s *WishlistStore) Clear(ctx context.Context) domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = []domain.Product{}
	s.commit(ctx)
	return domain.Change{Kind: domain.ChangeCleared}
}

// Toggle flips the drawer flag and returns the new value.
func (s *WishlistStore) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsOpen = !s.state.IsOpen
	return s.state.IsOpen
}

// Contains reports whether productID is in the wishlist.
func (s *WishlistStore) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IndexOf(productID) >= 0
}

// State returns a deep copy of the wishlist.
func (s *WishlistStore) State() domain.WishlistState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Restore loads a persisted snapshot. Duplicate product IDs in the snapshot
// are dropped and the count is recomputed.
func (s *WishlistStore) Restore(snap WishlistSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.WishlistState{Items: make([]domain.Product, 0, len(snap.Items))}
	for _, p := range snap.Items {
		if s.state.IndexOf(p.ID) < 0 {
			s.state.Items = append(s.state.Items, p.Clone())
		}
	}
	s.state.Recount()
}

// Reset returns the store to its empty state without persisting.
func (s *WishlistStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.WishlistState{Items: []domain.Product{}}
}

func (s *WishlistStore) commit(ctx context.Context) {
	s.state.Recount()
	if err := s.persister.Save(ctx, s.key, WishlistSnapshotOf(s.state)); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist wishlist snapshot",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
	}
}
