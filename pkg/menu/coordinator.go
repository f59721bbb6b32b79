package menu

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/events"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/observability"
	"github.com/matzehuels/piemenu/pkg/provider"
)

// Coordinator applies provider update events to a Stack. Only the
// shallowest matching ring is refreshed; rings above it are closed first so
// no ring is left pointing at a stale parent index.
type Coordinator struct {
	stack  *Stack
	logger *log.Logger
}

// NewCoordinator returns a coordinator updating stack.
func NewCoordinator(stack *Stack, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Coordinator{stack: stack, logger: logger}
}

// Run subscribes to bus and hands every event to the stack's scheduler
// until ctx is done or the subscription closes.
func (c *Coordinator) Run(ctx context.Context, bus events.Bus) error {
	ch, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			c.stack.sched.Schedule(func() { c.Handle(ctx, ev) })
		}
	}
}

// Match returns the level of the ring that shows content of ev. A ring
// matches when it came from ev's provider and, if ev names content, carries
// the same content ID. Child rings are scanned from the shallowest up;
// ring 0, which mixes every provider's roots, matches only when no child
// ring does and it holds one of the provider's nodes.
func (c *Coordinator) Match(ev provider.UpdateEvent) (int, bool) {
	rings := c.stack.rings
	for level := 1; level < len(rings); level++ {
		if ringMatches(level, rings[level], ev) {
			return level, true
		}
	}
	if len(rings) > 0 && ringMatches(0, rings[0], ev) {
		return 0, true
	}
	return 0, false
}

func ringMatches(level int, r RingState, ev provider.UpdateEvent) bool {
	fromProvider := r.ProviderID == ev.ProviderID || (level == 0 && r.containsProvider(ev.ProviderID))
	if !fromProvider {
		return false
	}
	return ev.ContentID == "" || r.ContentID == ev.ContentID
}

// Handle applies ev to the stack. It must run on the stack's owner context
// and reports whether a ring matched.
func (c *Coordinator) Handle(ctx context.Context, ev provider.UpdateEvent) bool {
	s := c.stack
	hooks := observability.Provider()

	level, ok := c.Match(ev)
	if !ok {
		hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, -1, false)
		return false
	}
	p, ok := s.providers.Get(ev.ProviderID)
	if !ok {
		c.logger.Debug("update for unregistered provider", "provider", ev.ProviderID)
		hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, level, false)
		return true
	}

	c.logger.Debug("applying update", "provider", ev.ProviderID, "content", ev.ContentID, "level", level)
	s.truncate(level + 1)
	s.rings[level].Collapsed = false
	s.generation++
	if err := p.Refresh(ctx); err != nil {
		c.logger.Warn("provider refresh failed", "provider", p.ID(), "err", err)
	}

	if level == 0 {
		c.replaceRoots(ctx, p)
		hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, 0, true)
		return true
	}
	c.refreshRing(ctx, p, level, ev)
	return true
}

// replaceRoots swaps p's nodes in ring 0 for fresh ones, keeping every other
// provider's nodes in their original order. Fresh nodes take the position
// of p's first old node.
func (c *Coordinator) replaceRoots(ctx context.Context, p provider.Provider) {
	s := c.stack
	fresh := providerRoots(ctx, p)

	old := s.rings[0].Nodes
	nodes := make([]node.Node, 0, len(old)+len(fresh))
	inserted := false
	for _, n := range old {
		if n.ProviderID != p.ID() {
			nodes = append(nodes, n)
			continue
		}
		if !inserted {
			nodes = append(nodes, fresh...)
			inserted = true
		}
	}

	r := &s.rings[0]
	r.Nodes = node.Cap(nodes, s.engine.MaxItems())
	r.Hovered, r.Selected = None, None
	r.Collapsed = false
	s.active = 0
	s.memo.Invalidate()
}

// refreshRing rebuilds the ring at level from a freshly fetched parent.
func (c *Coordinator) refreshRing(ctx context.Context, p provider.Provider, level int, ev provider.UpdateEvent) {
	s := c.stack
	hooks := observability.Provider()
	parentRing := s.rings[level-1]
	parent, ok := parentRing.SelectedNode()
	if !ok {
		c.closeRing(level)
		hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, level, false)
		return
	}

	fresh, ok := refetch(ctx, p, parent)
	if !ok && parent.NeedsDynamicLoading {
		// Folders opened below a provider root are not part of its root
		// tree; their descriptor is still valid, only the children are stale.
		fresh, ok = parent, true
		fresh.Children = nil
	}
	if !ok {
		c.logger.Debug("updated parent no longer exists, closing ring", "level", level, "node", parent.ID)
		c.closeRing(level)
		hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, level, false)
		return
	}

	// Overwrite the copy held by the parent ring so later expansions see
	// the fresh node too.
	s.rings[level-1].Nodes = withNode(parentRing.Nodes, parentRing.Selected, fresh)
	s.memo.Invalidate()

	if !fresh.NeedsDynamicLoading || len(fresh.Children) > 0 {
		c.applyChildren(level, fresh, fresh.DisplayedChildren())
		hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, level, true)
		return
	}

	gen := s.generation
	providerID, contentID := s.rings[level].ProviderID, s.rings[level].ContentID
	go func() {
		start := time.Now()
		children, err := p.LoadChildren(ctx, fresh)
		hooks.OnLoadChildren(ctx, p.ID(), len(children), time.Since(start), err)
		s.sched.Schedule(func() {
			if err != nil {
				c.logger.Warn("reloading updated ring failed", "provider", p.ID(), "node", fresh.ID, "err", err)
				hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, level, false)
				return
			}
			r, ok := s.Ring(level)
			if gen != s.generation || !ok || r.ProviderID != providerID || r.ContentID != contentID {
				c.logger.Debug("discarding ring reload", "level", level,
					"err", errors.New(errors.ErrCodeStale, "stack changed while reloading %q", fresh.ID))
				observability.Menu().OnStaleResult("update", level)
				hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, level, false)
				return
			}
			loaded := fresh
			loaded.Children = children
			parentRing := s.rings[level-1]
			if parentRing.Selected >= 0 && parentRing.Selected < len(parentRing.Nodes) {
				s.rings[level-1].Nodes = withNode(parentRing.Nodes, parentRing.Selected, loaded)
			}
			c.applyChildren(level, loaded, loaded.DisplayedChildren())
			hooks.OnUpdate(ctx, ev.ProviderID, ev.ContentID, level, true)
		})
	}()
}

func (c *Coordinator) applyChildren(level int, parent node.Node, children []node.Node) {
	s := c.stack
	if len(children) == 0 {
		c.closeRing(level)
		return
	}
	r := &s.rings[level]
	r.Nodes = node.Cap(children, s.engine.MaxItems())
	r.Hovered, r.Selected = None, None
	r.ContentID = parent.ContentID()
	if s.active > level {
		s.active = level
	}
	s.generation++
	s.memo.Invalidate()
}

// closeRing drops the ring at level and everything above it.
func (c *Coordinator) closeRing(level int) {
	s := c.stack
	s.truncate(level)
	s.rings[level-1].Selected = None
	s.rings[level-1].Collapsed = false
	s.generation++
}

// refetch finds the current version of parent among p's roots. Nodes are
// matched by content ID when they carry one, by ID otherwise.
func refetch(ctx context.Context, p provider.Provider, parent node.Node) (node.Node, bool) {
	roots := providerRoots(ctx, p)
	cid := parent.ContentID()
	return node.Find(roots, func(n node.Node) bool {
		if cid != "" {
			return n.ContentID() == cid
		}
		return n.ID == parent.ID
	})
}
