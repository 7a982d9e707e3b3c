// Package store holds the per-session cart and wishlist state containers.
// Mutators run to completion, recompute aggregates and then persist a
// snapshot. They report what happened as a domain.Change and never fail.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// ItemOptions selects a product variant.
type ItemOptions struct {
	Color string
	Size  string
}

// CartStore owns one session's cart.
type CartStore struct {
	mu        sync.Mutex
	key       string
	state     domain.CartState
	persister Persister
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewCartStore returns an empty cart that persists snapshots under key.
// A nil persister disables persistence.
func NewCartStore(key string, persister Persister, logger *slog.Logger, opts ...Option) *CartStore {
	if persister == nil {
		persister = nopPersister{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := buildOptions(opts)
	return &CartStore{
		key:       key,
		state:     domain.CartState{Items: []domain.CartItem{}},
		persister: persister,
		logger:    logger,
		now:       o.now,
		newID:     o.newID,
	}
}

// AddItem merges qty units of p into the line with the same product, color
// and size, or appends a new line. A non-positive qty counts as 1. Stock is
// not checked.
func (s *CartStore) AddItem(ctx context.Context, p domain.Product, qty int, opts ItemOptions) domain.Change {
	if qty <= 0 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.ItemKey{ProductID: p.ID, Color: opts.Color, Size: opts.Size}
	change := domain.Change{ProductID: p.ID, ProductName: p.Name}

	if idx := s.state.FindItemIndex(key); idx >= 0 {
		s.state.Items[idx].Quantity += qty
		change.Kind = domain.ChangeUpdated
		change.ItemID = s.state.Items[idx].ID
		change.Quantity = s.state.Items[idx].Quantity
	} else {
		item := domain.CartItem{
			ID:            s.newID(),
			Product:       p.Clone(),
			Quantity:      qty,
			SelectedColor: opts.Color,
			SelectedSize:  opts.Size,
			AddedAt:       s.now(),
		}
		s.state.Items = append(s.state.Items, item)
		change.Kind = domain.ChangeAdded
		change.ItemID = item.ID
		change.Quantity = qty
	}

	s.commit(ctx)
	return change
}

// RemoveItem deletes the line with itemID. Unknown IDs are a no-op.
func (s *CartStore) RemoveItem(ctx context.Context, itemID string) domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, itemID)
}

func (s *CartStore) removeLocked(ctx context.Context, itemID string) domain.Change {
	idx := s.state.IndexOf(itemID)
	if idx < 0 {
		return domain.Change{Kind: domain.ChangeNoop, ItemID: itemID}
	}
	item := s.state.Items[idx]
	s.state.Items = append(s.state.Items[:idx:idx], s.state.Items[idx+1:]...)
	s.commit(ctx)
	return domain.Change{
		Kind:        domain.ChangeRemoved,
		ItemID:      itemID,
		ProductID:   item.Product.ID,
		ProductName: item.Product.Name,
	}
}

// UpdateQuantity sets the quantity of itemID in place. A non-positive qty
// removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, qty int) domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		return s.removeLocked(ctx, itemID)
	}
	idx := s.state.IndexOf(itemID)
	if idx < 0 {
		return domain.Change{Kind: domain.ChangeNoop, ItemID: itemID}
	}
	s.state.Items[idx].Quantity = qty
	s.commit(ctx)

	p := s.state.Items[idx].Product
	return domain.Change{
		Kind:         domain.ChangeUpdated,
		ItemID:       itemID,
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     qty,
		QuantityOnly: true,
	}
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = []domain.CartItem{}
	s.commit(ctx)
	return domain.Change{Kind: domain.ChangeCleared}
}

// Toggle flips the drawer flag and returns the new value. Nothing is
// persisted.
func (s *CartStore) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsOpen = !s.state.IsOpen
	return s.state.IsOpen
}

// ItemQuantity sums quantities across every variant of productID.
func (s *CartStore) ItemQuantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.QuantityOf(productID)
}

// Recalculate recomputes the total and item count from the lines.
func (s *CartStore) Recalculate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Recalculate()
}

// State returns a deep copy of the cart.
func (s *CartStore) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Restore replaces the lines with a persisted snapshot. Stored aggregates
// are ignored and recomputed; the drawer starts closed.
func (s *CartStore) Restore(snap CartSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := domain.CartState{Items: snap.Items}.Clone()
	s.state = restored
	s.state.Recalculate()
}

// Reset returns the store to its empty state without persisting.
func (s *CartStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.CartState{Items: []domain.CartItem{}}
}

// commit recomputes aggregates and writes a snapshot. Callers hold mu.
func (s *CartStore) commit(ctx context.Context) {
	s.state.Recalculate()
	if err := s.persister.Save(ctx, s.key, CartSnapshotOf(s.state)); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist cart snapshot",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
	}
}
