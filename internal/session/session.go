// Package session owns the per-session cart, wishlist and browse state.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/store"
)

// DefaultIdleTimeout is how long an untouched session stays in memory.
const DefaultIdleTimeout = time.Hour

// Session is one shopper's state. Cart and Wishlist are safe for concurrent
// use; browse state is reached through WithBrowse.
type Session struct {
	ID       string
	Cart     *store.CartStore
	Wishlist *store.WishlistStore

	mu     sync.Mutex
	browse domain.BrowseState
}

// WithBrowse runs fn with exclusive access to the browse state and returns a
// copy of the result.
func (s *Session) WithBrowse(fn func(*domain.BrowseState)) domain.BrowseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		fn(&s.browse)
	}
	return s.browse.Clone()
}

// Browse returns a copy of the browse state.
func (s *Session) Browse() domain.BrowseState {
	return s.WithBrowse(nil)
}

// Option configures a Registry.
type Option func(*Registry)

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) { r.idle = d }
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithStoreOptions passes options to every cart store the registry creates.
func WithStoreOptions(opts ...store.Option) Option {
	return func(r *Registry) { r.storeOpts = opts }
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry creates sessions on first use, hydrating them from persisted
// snapshots, and evicts them once idle. Evicted sessions keep their
// snapshots, so a returning shopper gets the same cart back.
type Registry struct {
	repo      repository.SnapshotRepository
	logger    *slog.Logger
	idle      time.Duration
	now       func() time.Time
	storeOpts []store.Option

	mu       sync.Mutex
	sessions map[string]*entry

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates a Registry persisting to repo.
func NewRegistry(repo repository.SnapshotRepository, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		repo:     repo,
		logger:   logger,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session for id, creating and hydrating it if needed.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	if s := r.touch(id); s != nil {
		return s
	}

	s := r.hydrate(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		// Lost a race with another request for the same session.
		e.lastSeen = r.now()
		return e.session
	}
	r.sessions[id] = &entry{session: s, lastSeen: r.now()}
	sessionsActive.Inc()
	return s
}

// Len returns the number of sessions in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops sessions untouched for longer than the idle timeout and
// returns how many were dropped.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.idle {
			delete(r.sessions, id)
			evicted++
		}
	}
	sessionsActive.Sub(float64(evicted))
	return evicted
}

// Start launches the idle eviction loop. Close stops it.
func (r *Registry) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		r.run(ctx)
	}()
}

// Close stops the eviction loop started by Start and waits for it to exit.
func (r *Registry) Close() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
}

func (r *Registry) run(ctx context.Context) {
	interval := min(r.idle, time.Minute)
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				r.logger.Debug("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) touch(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil
	}
	e.lastSeen = r.now()
	return e.session
}

func (r *Registry) hydrate(ctx context.Context, id string) *Session {
	l := r.logger.With(slog.String("session_id", id))
	s := &Session{
		ID: id,
		Cart: store.NewCartStore(store.StorageKey(store.CartNamespace, id),
			countingPersister{repo: r.repo, store: "cart"}, l, r.storeOpts...),
		Wishlist: store.NewWishlistStore(store.StorageKey(store.WishlistNamespace, id),
			countingPersister{repo: r.repo, store: "wishlist"}, l),
		browse: domain.NewBrowseState(),
	}

	var cart store.CartSnapshot
	if ok, err := r.repo.Load(ctx, store.StorageKey(store.CartNamespace, id), &cart); err != nil {
		l.WarnContext(ctx, "failed to hydrate cart snapshot", slog.String("error", err.Error()))
	} else if ok {
		s.Cart.Restore(cart)
	}

	var wishlist store.WishlistSnapshot
	if ok, err := r.repo.Load(ctx, store.StorageKey(store.WishlistNamespace, id), &wishlist); err != nil {
		l.WarnContext(ctx, "failed to hydrate wishlist snapshot", slog.String("error", err.Error()))
	} else if ok {
		s.Wishlist.Restore(wishlist)
	}
	return s
}

// countingPersister forwards snapshots to the repository and counts
// failures per store.
type countingPersister struct {
	repo  repository.SnapshotRepository
	store string
}

func (p countingPersister) Save(ctx context.Context, key string, v any) error {
	err := p.repo.Save(ctx, key, v)
	if err != nil {
		snapshotWriteFailures.WithLabelValues(p.store).Inc()
	}
	return err
}
