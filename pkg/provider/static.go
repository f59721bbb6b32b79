package provider

import (
	"context"
	"sync"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
)

// Static serves a fixed node tree. Dynamic children are looked up by the
// parent's content ID. It backs demo menus and tests.
type Static struct {
	id, name, icon string

	mu       sync.RWMutex
	roots    []node.Node
	children map[string][]node.Node
	refresh  int
}

// NewStatic returns a provider serving roots.
func NewStatic(id, name, icon string, roots ...node.Node) *Static {
	return &Static{id: id, name: name, icon: icon, roots: roots, children: make(map[string][]node.Node)}
}

func (s *Static) ID() string   { return s.id }
func (s *Static) Name() string { return s.name }
func (s *Static) Icon() string { return s.icon }

// ProvideFunctions returns the current roots.
func (s *Static) ProvideFunctions(context.Context) []node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]node.Node, len(s.roots))
	copy(out, s.roots)
	return out
}

// LoadChildren returns the children registered for n's content ID.
func (s *Static) LoadChildren(_ context.Context, n node.Node) ([]node.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	children, ok := s.children[n.ContentID()]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no children for %q", n.ContentID())
	}
	out := make([]node.Node, len(children))
	copy(out, children)
	return out, nil
}

// Refresh counts calls; the tree only changes through SetRoots and SetChildren.
func (s *Static) Refresh(context.Context) error {
	s.mu.Lock()
	s.refresh++
	s.mu.Unlock()
	return nil
}

// Refreshes returns how many times Refresh was called.
func (s *Static) Refreshes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// SetRoots replaces the root nodes.
func (s *Static) SetRoots(roots ...node.Node) {
	s.mu.Lock()
	s.roots = roots
	s.mu.Unlock()
}

// SetChildren registers the dynamic children of contentID.
func (s *Static) SetChildren(contentID string, children ...node.Node) {
	s.mu.Lock()
	s.children[contentID] = children
	s.mu.Unlock()
}
