package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/provider"
	"github.com/utafrali/storefront/internal/provider/mock"
	"github.com/utafrali/storefront/internal/provider/stripe"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	registry       *session.Registry
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	// closers release backing connections in reverse order of creation.
	closers []func() error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	// Initialize OpenTelemetry tracing.
	a.tracerShutdown, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler()

	snapshots, err := a.snapshotRepository(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	catalogRepo, err := a.catalogRepository(ctx, healthHandler)
	if err != nil {
		return nil, err
	}
	products := catalog.New(catalogRepo, logger,
		catalog.WithTTL(cfg.CatalogTTL()),
		catalog.WithLatency(cfg.CatalogLatency()),
	)

	a.registry = session.NewRegistry(snapshots, logger, session.WithIdleTimeout(cfg.SessionIdle()))

	publisher := a.publisher(healthHandler)

	paymentProvider, verifier, err := a.paymentProvider()
	if err != nil {
		return nil, err
	}

	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         "payment-" + paymentProvider.Name(),
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Uint64("max_requests", uint64(cbCfg.MaxRequests)),
		slog.Int("timeout_seconds", cfg.CBTimeout),
		slog.Uint64("min_requests", uint64(cbCfg.MinRequests)),
	)

	// Build the dependency graph.
	cartService := service.NewCartService(a.registry, products, publisher, cfg.Currency, logger)
	wishlistService := service.NewWishlistService(a.registry, products, publisher, logger)
	browseService := service.NewBrowseService(a.registry, products, cfg.PageSize, logger)
	checkoutService := service.NewCheckoutService(a.registry, paymentProvider, verifier, publisher,
		service.CheckoutConfig{
			BaseURL:  cfg.BaseURL,
			Currency: cfg.Currency,
			TaxRate:  cfg.CheckoutTaxRate,
			Breaker:  cbCfg,
		}, logger)

	a.limiter = middleware.NewRateLimiter(cfg.CheckoutRateLimitRPS, cfg.CheckoutRateLimitBurst, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Catalog:     products,
		Cart:        cartService,
		Wishlist:    wishlistService,
		Browse:      browseService,
		Checkout:    checkoutService,
		Health:      healthHandler,
		RateLimiter: a.limiter,
		CORS:        corsCfg,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,
		Logger:      logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// snapshotRepository selects where carts and wishlists are persisted.
func (a *App) snapshotRepository(ctx context.Context, h *health.Handler) (repository.SnapshotRepository, error) {
	if a.cfg.SnapshotBackend != config.BackendRedis {
		a.logger.Info("using in-memory session snapshots")
		return memory.NewSnapshotRepository(a.cfg.SnapshotMaxBytes), nil
	}

	client, err := database.NewRedisClient(ctx, a.cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)

	h.RegisterCritical("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return redisrepo.NewSnapshotRepository(client, a.cfg.SnapshotTTL()), nil
}

// catalogRepository selects the product source behind the catalog cache.
func (a *App) catalogRepository(ctx context.Context, h *health.Handler) (repository.CatalogRepository, error) {
	if a.cfg.CatalogSource != config.BackendPostgres {
		products, err := catalog.MockProducts()
		if err != nil {
			return nil, err
		}
		a.logger.Info("using built-in mock catalog", slog.Int("products", len(products)))
		return memory.NewCatalogRepository(products), nil
	}

	pgCfg := a.cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.Int("port", a.cfg.PostgresPort),
		slog.String("database", a.cfg.PostgresDB),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	a.logger.Info("database migrations completed")

	// Configure slow query logging.
	if a.cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	}

	h.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	return postgres.NewCatalogRepository(pool), nil
}

// publisher returns the Kafka event producer, or a no-op when Kafka is off.
func (a *App) publisher(h *health.Handler) event.Publisher {
	if !a.cfg.KafkaEnabled {
		a.logger.Info("kafka disabled, domain events are dropped")
		return event.Nop{}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.closers = append(a.closers, producer.Close)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	h.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	return event.NewProducer(producer, a.logger)
}

// paymentProvider builds the configured provider and its webhook verifier.
// The verifier is nil when webhooks cannot be authenticated.
func (a *App) paymentProvider() (provider.Provider, provider.WebhookVerifier, error) {
	if a.cfg.PaymentProvider == config.ProviderStripe {
		p, err := stripe.NewProvider(stripe.Config{
			SecretKey:         a.cfg.StripeSecretKey,
			APIURL:            a.cfg.StripeAPIURL,
			HTTPClient:        httpclient.New(httpclient.DefaultConfig()),
			MaxNetworkRetries: 2,
		}, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init stripe provider: %w", err)
		}

		var verifier provider.WebhookVerifier
		if a.cfg.StripeWebhookSecret != "" {
			verifier = stripe.NewVerifier(a.cfg.StripeWebhookSecret)
		} else {
			a.logger.Warn("STRIPE_WEBHOOK_SECRET not set, webhooks will be rejected")
		}
		a.logger.Info("payment provider initialized", slog.String("provider", p.Name()))
		return p, verifier, nil
	}

	var verifier provider.WebhookVerifier
	if a.cfg.IsDevelopment() {
		verifier = mock.Verifier{}
	}
	a.logger.Info("payment provider initialized", slog.String("provider", config.ProviderMock))
	return mock.NewProvider(), verifier, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	a.registry.Start()

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()
	go a.limiter.Run(limiterCtx)

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Session registry eviction loop
// 3. Tracer (flush pending spans from drained requests)
// 4. Kafka producer, PostgreSQL pool and Redis client
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Stop evicting sessions; snapshots are already persisted per mutation.
	a.registry.Close()

	if err := a.close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
