package menu

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/layout"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/observability"
	"github.com/matzehuels/piemenu/pkg/provider"
)

// Scheduler runs continuations on the menu's owner context.
type Scheduler interface {
	Schedule(fn func())
}

// Options configures a Stack. Providers and Scheduler are required.
type Options struct {
	Providers *provider.Registry
	Layout    layout.Config
	Scheduler Scheduler
	Logger    *log.Logger
}

type crumb struct {
	level int // level of the ring the node opened
	node  node.Node
}

// Stack is the ring stack of one menu. It is not safe for concurrent use:
// every method must run on the owner context behind its Scheduler.
type Stack struct {
	providers *provider.Registry
	engine    *layout.Engine
	memo      *layout.Memo
	sched     Scheduler
	logger    *log.Logger

	rings  []RingState
	active int
	crumbs []crumb

	// generation changes on every structural mutation. Continuations
	// resumed after a provider call compare it against the value they
	// captured before suspending.
	generation uint64

	// navigating is the sequence number of the in-flight navigation, or 0.
	navigating uint64
	navSeq     uint64
}

// New creates an empty stack. Call Load to populate ring 0.
func New(opts Options) (*Stack, error) {
	if opts.Providers == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "menu: provider registry is required")
	}
	if opts.Scheduler == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "menu: scheduler is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	engine, err := layout.NewEngine(opts.Layout, logger)
	if err != nil {
		return nil, err
	}
	return &Stack{
		providers: opts.Providers,
		engine:    engine,
		memo:      layout.NewMemo(engine),
		sched:     opts.Scheduler,
		logger:    logger,
	}, nil
}

// Engine returns the layout engine.
func (s *Stack) Engine() *layout.Engine { return s.engine }

// Providers returns the provider registry.
func (s *Stack) Providers() *provider.Registry { return s.providers }

// ActiveLevel returns the level of the ring receiving input.
func (s *Stack) ActiveLevel() int { return s.active }

// Len returns the number of rings.
func (s *Stack) Len() int { return len(s.rings) }

// Generation returns the structural generation counter.
func (s *Stack) Generation() uint64 { return s.generation }

// Navigating reports whether a folder navigation is waiting on a provider.
func (s *Stack) Navigating() bool { return s.navigating != 0 }

// Ring returns the ring at level.
func (s *Stack) Ring(level int) (RingState, bool) {
	if level < 0 || level >= len(s.rings) {
		return RingState{}, false
	}
	return s.rings[level], true
}

// Rings returns a snapshot of the stack. Node slices are shared and must
// not be modified.
func (s *Stack) Rings() []RingState {
	out := make([]RingState, len(s.rings))
	copy(out, s.rings)
	return out
}

// Breadcrumb returns the folder nodes navigated into, outermost last.
func (s *Stack) Breadcrumb() []node.Node {
	out := make([]node.Node, len(s.crumbs))
	for i, c := range s.crumbs {
		out[i] = c.node
	}
	return out
}

// Load refreshes every provider and rebuilds ring 0 from their roots in
// registration order. Any previous state is discarded.
func (s *Stack) Load(ctx context.Context) {
	var roots []node.Node
	for _, p := range s.providers.All() {
		if err := p.Refresh(ctx); err != nil {
			s.logger.Warn("provider refresh failed", "provider", p.ID(), "err", err)
		}
		roots = append(roots, providerRoots(ctx, p)...)
	}

	s.reset()
	s.rings = []RingState{newRing(node.Cap(roots, s.engine.MaxItems()), "", "", false)}
	s.memo.Invalidate()
	s.logger.Debug("menu loaded", "providers", s.providers.Len(), "items", len(s.rings[0].Nodes))
	observability.Menu().OnTransition("load", 0, true)
}

// providerRoots returns p's roots stamped with its ID.
func providerRoots(ctx context.Context, p provider.Provider) []node.Node {
	roots := p.ProvideFunctions(ctx)
	for i := range roots {
		if roots[i].ProviderID == "" {
			roots[i].ProviderID = p.ID()
		}
	}
	return roots
}

// ExpandCategory opens the children of the node at (level, index) as a new
// ring above level, replacing any deeper rings. It is a no-op for nodes
// that cannot branch or have nothing to display.
func (s *Stack) ExpandCategory(level, index int, openedByClick bool) bool {
	const op = "expand"
	n, err := s.nodeAt(level, index)
	if err != nil {
		return s.reject(op, level, err)
	}
	if !n.IsBranch() {
		return s.reject(op, level, errors.New(errors.ErrCodeNotBranch, "node %q is not a branch", n.ID))
	}
	children := n.DisplayedChildren()
	if len(children) == 0 {
		// Dynamic nodes without loaded children go through NavigateIntoFolder.
		return s.reject(op, level, errors.New(errors.ErrCodeEmptyBranch, "node %q has no displayed children", n.ID))
	}

	s.truncate(level + 1)
	s.rings[level].Selected = index
	s.rings[level].Collapsed = false
	s.rings = append(s.rings, newRing(node.Cap(children, s.engine.MaxItems()), n.ProviderID, n.ContentID(), openedByClick))
	s.active = level + 1
	s.generation++

	s.logger.Debug("expanded category", "level", level, "index", index, "node", n.ID, "children", len(children))
	observability.Menu().OnTransition(op, level, true)
	return true
}

// NavigateIntoFolder opens the node at (level, index) and collapses the ring
// being left into a breadcrumb. Dynamic nodes load their children on a
// separate goroutine; the result is applied on the scheduler if the stack
// has not changed in the meantime. Only one navigation runs at a time and
// calls made while one is pending are dropped.
//
// It reports whether the navigation was started.
func (s *Stack) NavigateIntoFolder(ctx context.Context, level, index int) bool {
	const op = "navigate"
	if s.navigating != 0 {
		return s.reject(op, level, errors.New(errors.ErrCodeBusy, "navigation already in flight"))
	}
	n, err := s.nodeAt(level, index)
	if err != nil {
		return s.reject(op, level, err)
	}
	if !n.IsBranch() {
		return s.reject(op, level, errors.New(errors.ErrCodeNotBranch, "node %q is not a branch", n.ID))
	}

	if !n.NeedsDynamicLoading || len(n.Children) > 0 {
		return s.enterFolder(level, index, n, n.DisplayedChildren())
	}

	p, ok := s.providers.Get(n.ProviderID)
	if !ok {
		return s.reject(op, level, errors.New(errors.ErrCodeProviderNotFound, "provider %q not registered", n.ProviderID))
	}

	s.navSeq++
	seq, gen := s.navSeq, s.generation
	s.navigating = seq
	s.logger.Debug("loading folder", "level", level, "index", index, "node", n.ID)

	go func() {
		start := time.Now()
		children, err := p.LoadChildren(ctx, n)
		observability.Provider().OnLoadChildren(ctx, p.ID(), len(children), time.Since(start), err)
		s.sched.Schedule(func() {
			if s.navigating == seq {
				s.navigating = 0
			}
			if err != nil {
				s.reject(op, level, errors.Wrap(errors.ErrCodeProvider, err, "load children of %q", n.ID))
				return
			}
			if !s.stillAt(gen, level, index, n) {
				s.logger.Debug("discarding folder load", "level", level, "index", index,
					"err", errors.New(errors.ErrCodeStale, "stack changed while loading %q", n.ID))
				observability.Menu().OnStaleResult(op, level)
				return
			}
			loaded := n
			loaded.Children = children
			// Later visits reuse the loaded children instead of reloading.
			s.rings[level].Nodes = withNode(s.rings[level].Nodes, index, loaded)
			s.enterFolder(level, index, loaded, loaded.DisplayedChildren())
		})
	}()
	return true
}

func (s *Stack) enterFolder(level, index int, n node.Node, children []node.Node) bool {
	const op = "navigate"
	if len(children) == 0 {
		return s.reject(op, level, errors.New(errors.ErrCodeEmptyBranch, "folder %q has no displayed children", n.ID))
	}

	s.truncate(level + 1)
	s.rings[level].Selected = index
	s.rings[level].Collapsed = true
	s.rings = append(s.rings, newRing(node.Cap(children, s.engine.MaxItems()), n.ProviderID, n.ContentID(), true))
	s.crumbs = append(s.crumbs, crumb{level: level + 1, node: n})
	s.active = level + 1
	s.generation++

	s.logger.Debug("entered folder", "level", level+1, "node", n.ID, "children", len(children))
	observability.Menu().OnTransition(op, level, true)
	return true
}

// stillAt reports whether the stack is unchanged since gen was captured and
// (level, index) still holds n.
func (s *Stack) stillAt(gen uint64, level, index int, n node.Node) bool {
	if gen != s.generation {
		return false
	}
	cur, err := s.nodeAt(level, index)
	return err == nil && cur.ID == n.ID && cur.ProviderID == n.ProviderID
}

// CollapseToRing closes every ring above level and restores level to full
// size, making it active.
func (s *Stack) CollapseToRing(level int) bool {
	const op = "collapse"
	if level < 0 || level >= len(s.rings) {
		return s.reject(op, level, errors.New(errors.ErrCodeInvalidLevel, "level %d out of range [0, %d)", level, len(s.rings)))
	}
	s.truncate(level + 1)
	s.rings[level].Collapsed = false
	s.rings[level].Selected = None
	s.active = level
	s.generation++

	s.logger.Debug("collapsed to ring", "level", level)
	observability.Menu().OnTransition(op, level, true)
	return true
}

// Back collapses to the ring below the active one.
func (s *Stack) Back() bool {
	if s.active == 0 {
		return false
	}
	return s.CollapseToRing(s.active - 1)
}

// Reset empties the stack. Front ends call it on every dismissal so no
// state leaks into the next display.
func (s *Stack) Reset() {
	s.reset()
	s.memo.Invalidate()
	observability.Menu().OnTransition("reset", 0, true)
}

func (s *Stack) reset() {
	s.rings = nil
	s.crumbs = nil
	s.active = 0
	s.navigating = 0
	s.generation++
}

// LoadAndExpandToCategory reloads the menu and opens the first branch root
// of providerID.
func (s *Stack) LoadAndExpandToCategory(ctx context.Context, providerID string) bool {
	s.Load(ctx)
	for i, n := range s.rings[0].Nodes {
		if n.ProviderID == providerID && n.IsBranch() {
			return s.ExpandCategory(0, i, true)
		}
	}
	return s.reject("expand", 0, errors.New(errors.ErrCodeProviderNotFound, "no category for provider %q", providerID))
}

// SetHovered marks index as hovered in the ring at level and clears the
// hover of every other ring. None clears it everywhere.
func (s *Stack) SetHovered(level, index int) bool {
	if level < 0 || level >= len(s.rings) {
		return false
	}
	if index != None && (index < 0 || index >= len(s.rings[level].Nodes)) {
		return false
	}
	for i := range s.rings {
		s.rings[i].Hovered = None
	}
	s.rings[level].Hovered = index
	return true
}

// Configurations returns the layout of every ring. The result is shared
// and must be treated as read-only.
func (s *Stack) Configurations() []layout.RingConfig {
	inputs := make([]layout.RingInput, len(s.rings))
	for i, r := range s.rings {
		inputs[i] = layout.RingInput{Nodes: r.Nodes, Selected: r.Selected, Collapsed: r.Collapsed}
	}
	return s.memo.Get(inputs, s.active)
}

// ItemAt returns the item under pos for a menu centered at center.
func (s *Stack) ItemAt(pos, center hittest.Point) (hittest.Hit, bool) {
	return hittest.ItemAt(s.Configurations(), s.active, pos, center)
}

func (s *Stack) nodeAt(level, index int) (node.Node, error) {
	if level < 0 || level >= len(s.rings) {
		return node.Node{}, errors.New(errors.ErrCodeInvalidLevel, "level %d out of range [0, %d)", level, len(s.rings))
	}
	nodes := s.rings[level].Nodes
	if index < 0 || index >= len(nodes) {
		return node.Node{}, errors.New(errors.ErrCodeInvalidIndex, "index %d out of range [0, %d) at level %d", index, len(nodes), level)
	}
	return nodes[index], nil
}

// truncate keeps the first n rings and drops breadcrumbs of removed rings.
func (s *Stack) truncate(n int) {
	if n >= len(s.rings) {
		return
	}
	s.rings = s.rings[:n:n]
	kept := s.crumbs[:0]
	for _, c := range s.crumbs {
		if c.level < n {
			kept = append(kept, c)
		}
	}
	s.crumbs = kept
	if s.active >= n {
		s.active = n - 1
	}
}

// reject traces an absorbed transition and reports false.
func (s *Stack) reject(op string, level int, err error) bool {
	s.logger.Debug("transition ignored", "op", op, "level", level, "err", err)
	observability.Menu().OnTransition(op, level, false)
	return false
}
