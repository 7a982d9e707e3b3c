package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/session"
)

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) CartChanged(ctx context.Context, sessionID string, change domain.Change, cart domain.CartState) error {
	args := m.Called(ctx, sessionID, change, cart)
	return args.Error(0)
}

func (m *mockPublisher) WishlistChanged(ctx context.Context, sessionID string, change domain.Change, wishlist domain.WishlistState) error {
	args := m.Called(ctx, sessionID, change, wishlist)
	return args.Error(0)
}

func (m *mockPublisher) CheckoutSessionCreated(ctx context.Context, data event.CheckoutSessionCreatedData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *mockPublisher) PaymentCompleted(ctx context.Context, data event.PaymentData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *mockPublisher) PaymentFailed(ctx context.Context, data event.PaymentData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	products, err := catalog.MockProducts()
	require.NoError(t, err)
	return catalog.New(memory.NewCatalogRepository(products), newTestLogger())
}

func newTestRegistry() (*session.Registry, *memory.SnapshotRepository) {
	repo := memory.NewSnapshotRepository(0)
	return session.NewRegistry(repo, newTestLogger()), repo
}
