package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// catalogCacheSeconds is the Cache-Control max-age for catalog reads.
const catalogCacheSeconds = 60

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Catalog     *catalog.Catalog
	Cart        *service.CartService
	Wishlist    *service.WishlistService
	Browse      *service.BrowseService
	Checkout    *service.CheckoutService
	Health      *health.Handler
	RateLimiter *middleware.RateLimiter
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	products := NewProductHandler(cfg.Catalog, cfg.Browse, logger)
	browse := NewBrowseHandler(cfg.Browse, logger)
	cart := NewCartHandler(cfg.Cart, logger)
	wishlist := NewWishlistHandler(cfg.Wishlist, logger)
	checkout := NewCheckoutHandler(cfg.Checkout, logger)

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Handler
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Catalog reads are shared by every shopper.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogCacheSeconds))

			r.Get("/products", products.List)
			r.Get("/products/featured", products.Featured)
			r.Get("/products/facets", products.Facets)
			r.Get("/products/{id}", products.Get)
			r.Get("/categories", products.Categories)
			r.Get("/categories/{category}/products", products.ByCategory)
		})

		r.Get("/checkout/shipping-options", checkout.ShippingOptions)
		r.With(limit).Post("/webhooks/stripe", checkout.Webhook)

		// Everything below is per-session state.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Use(middleware.NoStore)

			r.Route("/browse", func(r chi.Router) {
				r.Get("/", browse.View)
				r.Patch("/filters", browse.UpdateFilters)
				r.Delete("/filters", browse.ClearFilters)
				r.Put("/query", browse.SetQuery)
				r.Put("/page", browse.SetPage)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.Get)
				r.Delete("/", cart.Clear)
				r.Post("/toggle", cart.Toggle)
				r.Post("/items", cart.AddItem)
				r.Put("/items/{itemId}", cart.UpdateQuantity)
				r.Delete("/items/{itemId}", cart.RemoveItem)
				r.Get("/products/{productId}/quantity", cart.ItemQuantity)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlist.Get)
				r.Delete("/", wishlist.Clear)
				r.Post("/toggle", wishlist.Toggle)
				r.Post("/items", wishlist.AddItem)
				r.Delete("/items/{productId}", wishlist.RemoveItem)
				r.Get("/items/{productId}", wishlist.Contains)
			})

			r.Get("/checkout/summary", checkout.Summary)
			r.With(limit).Post("/checkout/session", checkout.CreateSession)
		})
	})

	return r
}
