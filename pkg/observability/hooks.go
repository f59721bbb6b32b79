// Package observability provides hooks for metrics, tracing, and logging.
//
// The menu engine, providers and caches report what they do through hook
// interfaces instead of depending on a metrics backend. The defaults are
// no-ops; an application registers its own implementations at startup.
// [Counters] tallies everything in memory and backs `piemenu serve`'s
// /stats route.
//
// # Usage
//
// Register hooks at application startup:
//
//	stats := observability.NewCounters()
//	stats.Install()
//	defer observability.Reset()
//
// Libraries call hooks to emit events:
//
//	observability.Menu().OnTransition("expand", level, true)
//	observability.Provider().OnLoadChildren(ctx, providerID, len(children), d, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Menu Hooks
// =============================================================================

// MenuHooks receives events from the ring stack and layout engine. These run
// on the menu's owner goroutine and must return quickly.
type MenuHooks interface {
	// OnTransition records a navigation operation and whether it changed state.
	OnTransition(op string, level int, applied bool)

	// OnStaleResult records an async result discarded after a structural change.
	OnStaleResult(op string, level int)

	// OnLayout records a layout request served from the memo or recomputed.
	OnLayout(rings int, cached bool, duration time.Duration)
}

// =============================================================================
// Provider Hooks
// =============================================================================

// ProviderHooks receives events from content providers and live updates.
type ProviderHooks interface {
	// OnLoadChildren records a dynamic child load.
	OnLoadChildren(ctx context.Context, providerID string, count int, duration time.Duration, err error)

	// OnUpdate records the outcome of a live update event. level is -1 when
	// no ring matched.
	OnUpdate(ctx context.Context, providerID, contentID string, level int, applied bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMenuHooks is a no-op implementation of MenuHooks.
type NoopMenuHooks struct{}

func (NoopMenuHooks) OnTransition(string, int, bool)    {}
func (NoopMenuHooks) OnStaleResult(string, int)         {}
func (NoopMenuHooks) OnLayout(int, bool, time.Duration) {}

// NoopProviderHooks is a no-op implementation of ProviderHooks.
type NoopProviderHooks struct{}

func (NoopProviderHooks) OnLoadChildren(context.Context, string, int, time.Duration, error) {}
func (NoopProviderHooks) OnUpdate(context.Context, string, string, int, bool)              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	menuHooks     MenuHooks     = NoopMenuHooks{}
	providerHooks ProviderHooks = NoopProviderHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetMenuHooks registers custom menu hooks. Nil is ignored.
func SetMenuHooks(h MenuHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		menuHooks = h
	}
}

// SetProviderHooks registers custom provider hooks. Nil is ignored.
func SetProviderHooks(h ProviderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		providerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Menu returns the registered menu hooks.
func Menu() MenuHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return menuHooks
}

// Provider returns the registered provider hooks.
func Provider() ProviderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return providerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	menuHooks = NoopMenuHooks{}
	providerHooks = NoopProviderHooks{}
	cacheHooks = NoopCacheHooks{}
}
