package provider

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/piemenu/pkg/cache"
	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/observability"
)

// DefaultChildrenTTL is how long cached children stay valid.
const DefaultChildrenTTL = 5 * time.Minute

// CachedProvider memoizes LoadChildren results in a [cache.Cache] keyed by
// (provider ID, generation, content ID). The generation lives in the cache
// itself, so every instance sharing a cache directory or Redis server sees
// the same entries, and a Refresh from any of them orphans all of them.
type CachedProvider struct {
	Provider
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration

	mu  sync.Mutex
	gen string
}

// Cached wraps p. A non-positive ttl uses DefaultChildrenTTL; a nil cache
// disables caching.
func Cached(p Provider, c cache.Cache, ttl time.Duration) *CachedProvider {
	if c == nil {
		c = cache.NewNullCache()
	}
	if ttl <= 0 {
		ttl = DefaultChildrenTTL
	}
	return &CachedProvider{
		Provider: p,
		cache:    c,
		keyer:    cache.NewDefaultKeyer(),
		ttl:      ttl,
	}
}

// LoadChildren serves n's children from the cache or the wrapped provider.
// Nodes without a content ID are never cached.
func (c *CachedProvider) LoadChildren(ctx context.Context, n node.Node) ([]node.Node, error) {
	hooks := observability.Cache()
	cid := n.ContentID()
	if cid == "" {
		return c.Provider.LoadChildren(ctx, n)
	}

	key := c.keyer.ChildrenKey(c.ID(), c.generation(ctx), cid)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var children []node.Node
		if json.Unmarshal(data, &children) == nil {
			hooks.OnCacheHit(ctx, "children")
			return children, nil
		}
	}
	hooks.OnCacheMiss(ctx, "children")

	children, err := c.Provider.LoadChildren(ctx, n)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(children); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, "children", len(data))
		}
	}
	return children, nil
}

// Refresh starts a new cache generation and refreshes the wrapped provider.
// Entries of older generations are never read again and expire by TTL.
func (c *CachedProvider) Refresh(ctx context.Context) error {
	gen := uuid.NewString()
	c.mu.Lock()
	c.gen = gen
	c.mu.Unlock()

	key := c.keyer.GenerationKey(c.ID())
	if err := c.cache.Set(ctx, key, []byte(gen), 0); err != nil {
		// A stored generation we failed to replace would still win over
		// ours on the next read.
		if derr := c.cache.Delete(ctx, key); derr != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "bump cache generation for %q", c.ID())
		}
	}
	return c.Provider.Refresh(ctx)
}

// generation returns the provider's current cache generation, adopting the
// stored one when present and publishing the local one otherwise.
func (c *CachedProvider) generation(ctx context.Context) string {
	key := c.keyer.GenerationKey(c.ID())
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok && len(data) > 0 {
		c.mu.Lock()
		c.gen = string(data)
		c.mu.Unlock()
		return string(data)
	}

	c.mu.Lock()
	if c.gen == "" {
		c.gen = uuid.NewString()
	}
	gen := c.gen
	c.mu.Unlock()
	_ = c.cache.Set(ctx, key, []byte(gen), 0)
	return gen
}
