// Package service implements the storefront use cases on top of the
// per-session stores, the catalog and the payment provider.
package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
)

// Sessions resolves a session ID to its state.
type Sessions interface {
	Get(ctx context.Context, id string) *session.Session
}

// ProductSource is the part of the catalog the services read.
type ProductSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
}

var (
	storeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_mutations_total",
		Help: "Cart and wishlist mutations by outcome",
	}, []string{"store", "change"})

	checkoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_sessions_total",
		Help: "Checkout session creations by provider and outcome",
	}, []string{"provider", "outcome"})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_webhook_events_total",
		Help: "Verified payment webhook events by type",
	}, []string{"type"})
)

func recordMutation(store string, change domain.Change) {
	storeMutations.WithLabelValues(store, string(change.Kind)).Inc()
}
