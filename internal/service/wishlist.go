package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/pkg/validator"
)

// AddWishlistItemInput identifies the product to save.
type AddWishlistItemInput struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
}

// WishlistView is the wishlist as shown to the shopper.
type WishlistView struct {
	domain.WishlistState
	Notice *notify.Notice `json:"-"`
}

// WishlistService implements the business logic for wishlist operations.
type WishlistService struct {
	sessions  Sessions
	products  ProductSource
	publisher event.Publisher
	logger    *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(sessions Sessions, products ProductSource, publisher event.Publisher, logger *slog.Logger) *WishlistService {
	if publisher == nil {
		publisher = event.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WishlistService{
		sessions:  sessions,
		products:  products,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns the session's wishlist.
func (s *WishlistService) Get(ctx context.Context, sessionID string) WishlistView {
	return WishlistView{WishlistState: s.sessions.Get(ctx, sessionID).Wishlist.State()}
}

// AddItem saves a catalog product. Saving a product twice is reported with
// an error-level notice and leaves the wishlist unchanged.
func (s *WishlistService) AddItem(ctx context.Context, sessionID string, input AddWishlistItemInput) (WishlistView, error) {
	if err := validator.Validate(input); err != nil {
		return WishlistView{}, err
	}

	product, err := s.products.Product(ctx, input.ProductID)
	if err != nil {
		return WishlistView{}, err
	}

	wishlist := s.sessions.Get(ctx, sessionID).Wishlist
	change := wishlist.AddItem(ctx, product)
	return s.after(ctx, sessionID, change, wishlist.State()), nil
}

// RemoveItem removes a product. Unknown products are ignored.
func (s *WishlistService) RemoveItem(ctx context.Context, sessionID, productID string) WishlistView {
	wishlist := s.sessions.Get(ctx, sessionID).Wishlist
	change := wishlist.RemoveItem(ctx, productID)
	return s.after(ctx, sessionID, change, wishlist.State())
}

// Clear empties the wishlist.
func (s *WishlistService) Clear(ctx context.Context, sessionID string) WishlistView {
	wishlist := s.sessions.Get(ctx, sessionID).Wishlist
	change := wishlist.Clear(ctx)
	return s.after(ctx, sessionID, change, wishlist.State())
}

// Toggle flips the wishlist drawer.
func (s *WishlistService) Toggle(ctx context.Context, sessionID string) WishlistView {
	wishlist := s.sessions.Get(ctx, sessionID).Wishlist
	wishlist.Toggle()
	return WishlistView{WishlistState: wishlist.State()}
}

// Contains reports whether the product is saved.
func (s *WishlistService) Contains(ctx context.Context, sessionID, productID string) bool {
	return s.sessions.Get(ctx, sessionID).Wishlist.Contains(productID)
}

func (s *WishlistService) after(ctx context.Context, sessionID string, change domain.Change, state domain.WishlistState) WishlistView {
	recordMutation("wishlist", change)
	view := WishlistView{WishlistState: state, Notice: notify.Wishlist(change)}
	if !change.Mutated() {
		return view
	}

	if err := s.publisher.WishlistChanged(ctx, sessionID, change, state); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist changed",
		slog.String("session_id", sessionID),
		slog.String("change", string(change.Kind)),
		slog.String("product_id", change.ProductID),
		slog.Int("item_count", state.ItemCount),
	)
	return view
}
