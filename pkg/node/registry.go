package node

import (
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/piemenu/pkg/errors"
)

// ActionFunc performs an action on behalf of the node that triggered it.
type ActionFunc func(ctx context.Context, n Node) error

// ActionRegistry maps stable action handles to their implementations, so
// nodes can reference actions without carrying closures.
//
// ActionRegistry is safe for concurrent use; providers register while the
// menu owner resolves.
type ActionRegistry struct {
	mu      sync.RWMutex
	actions map[ActionRef]ActionFunc
}

// NewActionRegistry creates an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[ActionRef]ActionFunc)}
}

// Register binds ref to fn, replacing any previous binding.
func (r *ActionRegistry) Register(ref ActionRef, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[ref] = fn
}

// Lookup returns the function bound to ref.
func (r *ActionRegistry) Lookup(ref ActionRef) (ActionFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[ref]
	return fn, ok
}

// Run executes the action bound to ref against n.
func (r *ActionRegistry) Run(ctx context.Context, ref ActionRef, n Node) error {
	fn, ok := r.Lookup(ref)
	if !ok {
		return errors.New(errors.ErrCodeActionNotFound, "no action registered for %q", ref)
	}
	return fn(ctx, n)
}

// Refs returns all registered handles in sorted order.
func (r *ActionRegistry) Refs() []ActionRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]ActionRef, 0, len(r.actions))
	for ref := range r.actions {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}
