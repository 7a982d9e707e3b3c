// Package catalog serves products from a repository through a TTL cache,
// optionally adding latency to mimic a remote catalog API.
package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/format"
	"github.com/utafrali/storefront/pkg/slug"
	"github.com/utafrali/storefront/pkg/tracing"
)

// DefaultTTL is how long a loaded product list is served before reloading.
const DefaultTTL = 5 * time.Minute

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL overrides DefaultTTL. A non-positive ttl disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithLatency delays every read by d on a cold cache and d/2 on a warm one.
func WithLatency(d time.Duration) Option {
	return func(c *Catalog) { c.latency = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// Catalog is the storefront's read-only product source.
type Catalog struct {
	repo    repository.CatalogRepository
	logger  *slog.Logger
	ttl     time.Duration
	latency time.Duration
	now     func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]int
	loadedAt time.Time
}

// New creates a Catalog over repo.
func New(repo repository.CatalogRepository, logger *slog.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		repo:   repo,
		logger: logger,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products returns every product in catalog order.
func (c *Catalog) Products(ctx context.Context) ([]domain.Product, error) {
	products, _, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return cloneAll(products), nil
}

// Product returns one product by id.
func (c *Catalog) Product(ctx context.Context, id string) (domain.Product, error) {
	products, byID, err := c.snapshot(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	i, ok := byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return products[i].Clone(), nil
}

// Featured returns products flagged as featured.
func (c *Catalog) Featured(ctx context.Context) ([]domain.Product, error) {
	return c.where(ctx, func(p domain.Product) bool { return p.IsFeatured })
}

// ByCategory returns products whose category equals category exactly.
func (c *Catalog) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return c.where(ctx, func(p domain.Product) bool { return p.Category == category })
}

// Categories lists distinct categories in first-seen order with product
// counts.
func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	products, _, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	categories := []domain.Category{}
	for _, p := range products {
		if i, ok := index[p.Category]; ok {
			categories[i].ProductCount++
			continue
		}
		index[p.Category] = len(categories)
		categories = append(categories, domain.Category{
			Slug:         slug.Generate(p.Category),
			Name:         format.CapitalizeFirst(p.Category),
			ProductCount: 1,
		})
	}
	return categories, nil
}

// Invalidate drops the cached product list.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = nil
	c.byID = nil
	c.loadedAt = time.Time{}
}

func (c *Catalog) where(ctx context.Context, keep func(domain.Product) bool) ([]domain.Product, error) {
	products, _, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// snapshot returns the cached list, reloading it when stale. The returned
// slice and map are shared and must not be modified.
func (c *Catalog) snapshot(ctx context.Context) ([]domain.Product, map[string]int, error) {
	c.mu.RLock()
	products, byID, fresh := c.products, c.byID, c.fresh()
	c.mu.RUnlock()

	if fresh {
		if err := c.simulateLatency(ctx, c.latency/2); err != nil {
			return nil, nil, err
		}
		return products, byID, nil
	}

	if err := c.simulateLatency(ctx, c.latency); err != nil {
		return nil, nil, err
	}

	type loaded struct {
		products []domain.Product
		byID     map[string]int
	}
	// The shared load outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := c.group.DoChan("products", func() (any, error) {
		products, byID, err := c.load(context.WithoutCancel(ctx))
		return loaded{products, byID}, err
	})
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, nil, res.Err
		}
		l := res.Val.(loaded)
		return l.products, l.byID, nil
	}
}

func (c *Catalog) load(ctx context.Context) ([]domain.Product, map[string]int, error) {
	ctx, span := tracing.Start(ctx, "catalog.load")
	defer span.End()

	products, err := c.repo.List(ctx)
	if err != nil {
		tracing.Fail(span, err)
		return nil, nil, apperrors.Wrap(err, "load catalog")
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "catalog loaded", slog.Int("products", len(products)))
	return products, byID, nil
}

// fresh must be called with mu held.
func (c *Catalog) fresh() bool {
	if c.products == nil || c.ttl <= 0 {
		return false
	}
	return c.now().Sub(c.loadedAt) < c.ttl
}

func (c *Catalog) simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func cloneAll(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
