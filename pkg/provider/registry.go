package provider

import (
	"sync"

	"github.com/matzehuels/piemenu/pkg/errors"
)

// Registry holds providers in registration order. Ring 0 lists provider
// roots in this order.
type Registry struct {
	mu    sync.RWMutex
	order []Provider
	byID  map[string]Provider
}

// NewRegistry returns a registry holding ps. It fails on invalid or
// duplicate IDs.
func NewRegistry(ps ...Provider) (*Registry, error) {
	r := &Registry{byID: make(map[string]Provider)}
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends p.
func (r *Registry) Register(p Provider) error {
	id := p.ID()
	if err := errors.ValidateProviderID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; ok {
		return errors.New(errors.ErrCodeDuplicateID, "provider %q already registered", id)
	}
	r.order = append(r.order, p)
	r.byID[id] = p
	return nil
}

// Get returns the provider with the given ID.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// All returns the providers in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.order))
	copy(out, r.order)
	return out
}

// IDs returns the provider IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	for i, p := range r.order {
		out[i] = p.ID()
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
