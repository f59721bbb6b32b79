// Package cache provides byte caches and cache key derivation.
//
// Providers may be arbitrarily slow to produce dynamic children (a folder
// on a network share, a process table). The cache lets a provider wrapper
// keep recent LoadChildren results keyed by (provider, content) until the
// provider is told to refresh.
//
// Three backends are available:
//   - NullCache: never stores anything (caching disabled)
//   - FileCache: JSON entries under a directory, for a single machine
//   - RedisCache: shared across menu instances
//
// Keys are produced by a Keyer so that all backends agree on them.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ChildrenKey identifies the children of one content item of a provider
	// at one cache generation.
	ChildrenKey(providerID, generation, contentID string) string

	// GenerationKey holds a provider's current cache generation. Bumping
	// the generation orphans every children key written before it.
	GenerationKey(providerID string) string

	// LayoutKey identifies the structural shape of a ring stack.
	LayoutKey(opts LayoutKeyOpts) string
}

// LayoutKeyOpts is the structural shape that invalidates a memoized layout.
type LayoutKeyOpts struct {
	Counts      []int  `json:"counts"`
	ActiveLevel int    `json:"active"`
	Selected    []int  `json:"selected"`
	Collapsed   []bool `json:"collapsed"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without prefix.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ChildrenKey returns "children:<provider>:<hash(generation, content)>".
func (DefaultKeyer) ChildrenKey(providerID, generation, contentID string) string {
	return hashKey("children:"+providerID, generation, contentID)
}

// GenerationKey returns "generation:<provider>".
func (DefaultKeyer) GenerationKey(providerID string) string {
	return "generation:" + providerID
}

// LayoutKey returns "layout:<hash(opts)>".
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout", opts)
}
