package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/format"
	"github.com/utafrali/storefront/pkg/validator"
)

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=999"`
	Color     string `json:"color,omitempty" validate:"max=40"`
	Size      string `json:"size,omitempty" validate:"max=40"`
}

// UpdateQuantityInput holds the new quantity of a cart line. Zero or less
// removes the line.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}

// CartView is the cart as shown to the shopper.
type CartView struct {
	domain.CartState
	TotalDisplay string         `json:"totalDisplay"`
	Notice       *notify.Notice `json:"-"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	sessions  Sessions
	products  ProductSource
	publisher event.Publisher
	currency  string
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(sessions Sessions, products ProductSource, publisher event.Publisher, currency string, logger *slog.Logger) *CartService {
	if publisher == nil {
		publisher = event.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{
		sessions:  sessions,
		products:  products,
		publisher: publisher,
		currency:  currency,
		logger:    logger,
	}
}

// Get returns the session's cart.
func (s *CartService) Get(ctx context.Context, sessionID string) CartView {
	return s.view(s.sessions.Get(ctx, sessionID).Cart.State(), nil)
}

// AddItem looks the product up in the catalog and adds it to the cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (CartView, error) {
	if err := validator.Validate(input); err != nil {
		return CartView{}, err
	}

	product, err := s.products.Product(ctx, input.ProductID)
	if err != nil {
		return CartView{}, err
	}

	cart := s.sessions.Get(ctx, sessionID).Cart
	change := cart.AddItem(ctx, product, input.Quantity, store.ItemOptions{Color: input.Color, Size: input.Size})
	return s.after(ctx, sessionID, change, cart.State()), nil
}

// UpdateQuantity sets the quantity of a cart line. Unknown lines are ignored.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, input UpdateQuantityInput) (CartView, error) {
	if err := validator.Validate(input); err != nil {
		return CartView{}, err
	}

	cart := s.sessions.Get(ctx, sessionID).Cart
	change := cart.UpdateQuantity(ctx, itemID, input.Quantity)
	return s.after(ctx, sessionID, change, cart.State()), nil
}

// RemoveItem deletes a cart line. Unknown lines are ignored.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) CartView {
	cart := s.sessions.Get(ctx, sessionID).Cart
	change := cart.RemoveItem(ctx, itemID)
	return s.after(ctx, sessionID, change, cart.State())
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) CartView {
	cart := s.sessions.Get(ctx, sessionID).Cart
	change := cart.Clear(ctx)
	return s.after(ctx, sessionID, change, cart.State())
}

// Toggle flips the cart drawer.
func (s *CartService) Toggle(ctx context.Context, sessionID string) CartView {
	cart := s.sessions.Get(ctx, sessionID).Cart
	cart.Toggle()
	return s.view(cart.State(), nil)
}

// ItemQuantity returns how many units of a product are in the cart across
// all variants.
func (s *CartService) ItemQuantity(ctx context.Context, sessionID, productID string) int {
	return s.sessions.Get(ctx, sessionID).Cart.ItemQuantity(productID)
}

func (s *CartService) after(ctx context.Context, sessionID string, change domain.Change, state domain.CartState) CartView {
	recordMutation("cart", change)
	if !change.Mutated() {
		return s.view(state, nil)
	}

	if err := s.publisher.CartChanged(ctx, sessionID, change, state); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart changed",
		slog.String("session_id", sessionID),
		slog.String("change", string(change.Kind)),
		slog.String("product_id", change.ProductID),
		slog.Int("quantity", change.Quantity),
		slog.Int("item_count", state.ItemCount),
	)
	return s.view(state, notify.Cart(change))
}

func (s *CartService) view(state domain.CartState, notice *notify.Notice) CartView {
	return CartView{
		CartState:    state,
		TotalDisplay: format.Currency(state.Total, s.currency),
		Notice:       notice,
	}
}
