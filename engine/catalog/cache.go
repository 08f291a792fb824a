package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/WessleyAI/installbom/pkg/fn"
	"github.com/WessleyAI/installbom/pkg/resilience"
)

// CacheOpts configures a Cached source.
type CacheOpts struct {
	// TTL is how long a loaded catalog is served before reloading.
	TTL time.Duration
	// Breaker guards the loader. Nil uses resilience.DefaultBreakerOpts.
	Breaker *resilience.Breaker
	// OnReload is called after every reload attempt.
	OnReload func(err error)
	Logger   *slog.Logger
}

// Cached serves a loaded catalog, reloading it after TTL. When a reload
// fails the last good catalog keeps being served.
type Cached struct {
	loader   Loader
	opts     CacheOpts
	mu       sync.Mutex
	current  *Catalog
	loadedAt time.Time
	now      func() time.Time
}

// NewCached wraps a loader with TTL caching.
func NewCached(loader Loader, opts CacheOpts) *Cached {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewBreaker(resilience.DefaultBreakerOpts)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Cached{loader: loader, opts: opts, now: time.Now}
}

// Current returns the cached catalog, reloading it when stale. It returns
// an error only when no catalog has ever loaded; the returned catalog is
// then Empty and still usable.
func (c *Cached) Current(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.now().Sub(c.loadedAt) < c.opts.TTL {
		return c.current, nil
	}

	loaded, err := resilience.CallResult(c.opts.Breaker, ctx, c.load).Unwrap()
	if c.opts.OnReload != nil {
		c.opts.OnReload(err)
	}
	if err != nil {
		if c.current != nil {
			c.opts.Logger.Error("catalog reload failed, serving last good", "error", err,
				"age", c.now().Sub(c.loadedAt))
			return c.current, nil
		}
		return Empty(), fmt.Errorf("catalog: reload: %w", err)
	}

	c.current = loaded
	c.loadedAt = c.now()
	cables, profiles := loaded.Stats()
	c.opts.Logger.Info("catalog loaded", "cables", cables, "profiles", profiles)
	return c.current, nil
}

func (c *Cached) load(ctx context.Context) fn.Result[*Catalog] {
	cat, err := c.loader.Load(ctx)
	if err != nil {
		return fn.Err[*Catalog](err)
	}
	return fn.Ok(cat)
}

// Invalidate forces the next Current call to reload.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// Static is a Loader-free source always returning the same catalog.
type Static struct{ Catalog *Catalog }

// Current implements the same contract as Cached.Current.
func (s Static) Current(context.Context) (*Catalog, error) {
	if s.Catalog == nil {
		return Empty(), nil
	}
	return s.Catalog, nil
}
