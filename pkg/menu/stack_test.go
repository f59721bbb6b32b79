package menu

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/observability"
	"github.com/matzehuels/piemenu/pkg/provider"
)

// queue is a Scheduler whose continuations run only when the test says so.
type queue struct{ fns chan func() }

func newQueue() *queue { return &queue{fns: make(chan func(), 16)} }

func (q *queue) Schedule(fn func()) { q.fns <- fn }

// step runs the next scheduled continuation.
func (q *queue) step(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q.fns:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no continuation scheduled")
	}
}

// gated serves a Static tree but blocks LoadChildren until released.
type gated struct {
	*provider.Static
	release chan struct{}

	mu    sync.Mutex
	loads int
	err   error
}

func newGated(s *provider.Static) *gated {
	return &gated{Static: s, release: make(chan struct{}, 8)}
}

func (g *gated) LoadChildren(ctx context.Context, n node.Node) ([]node.Node, error) {
	g.mu.Lock()
	g.loads++
	err := g.err
	g.mu.Unlock()
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return g.Static.LoadChildren(ctx, n)
}

func (g *gated) Loads() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loads
}

func actions(providerID string, n int) []node.Node {
	out := make([]node.Node, n)
	for i := range out {
		id := fmt.Sprintf("%s-%d", providerID, i)
		out[i] = node.Action(providerID, id, id, "", node.ActionRef(providerID+".run"))
	}
	return out
}

type fixture struct {
	stack *Stack
	queue *queue
	apps  *provider.Static
	files *gated
	empty *provider.Static
}

// newFixture builds ring 0 as [Apps, home, Empty]:
//   - Apps is a category of three actions,
//   - home is a dynamic folder served through a gated provider,
//   - Empty is a category whose only child is hidden.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	apps := provider.NewStatic("apps", "Apps", "grid", node.Category("apps", "apps", "Apps", "grid", actions("apps", 3)...))

	files := newGated(provider.NewStatic("files", "Files", "folder", node.Folder("files", "/home", "home", "files.open")))
	files.SetChildren("/home",
		node.File("files", "/home/a.txt", "a.txt", "files.open"),
		node.File("files", "/home/b.txt", "b.txt", "files.open"),
		node.Folder("files", "/home/docs", "docs", "files.open"),
	)
	files.SetChildren("/home/docs", node.File("files", "/home/docs/c.txt", "c.txt", "files.open"))

	hidden := node.Action("empty", "dot", ".dot", "", "empty.run")
	hidden.Hidden = true
	empty := provider.NewStatic("empty", "Empty", "", node.Category("empty", "empty", "Empty", "", hidden))

	reg, err := provider.NewRegistry(apps, files, empty)
	if err != nil {
		t.Fatal(err)
	}
	q := newQueue()
	s, err := New(Options{Providers: reg, Scheduler: q})
	if err != nil {
		t.Fatal(err)
	}
	s.Load(context.Background())
	return &fixture{stack: s, queue: q, apps: apps, files: files, empty: empty}
}

func TestNewRequiresDependencies(t *testing.T) {
	reg, _ := provider.NewRegistry()
	if _, err := New(Options{Scheduler: newQueue()}); err == nil {
		t.Error("New without providers should fail")
	}
	if _, err := New(Options{Providers: reg}); err == nil {
		t.Error("New without scheduler should fail")
	}
}

func TestLoad(t *testing.T) {
	f := newFixture(t)
	r, ok := f.stack.Ring(0)
	if !ok {
		t.Fatal("ring 0 missing")
	}
	var got []string
	for _, n := range r.Nodes {
		got = append(got, n.ProviderID+"/"+n.ID)
	}
	want := []string{"apps/apps", "files/files:/home", "empty/empty"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ring 0 mismatch (-want +got):\n%s", diff)
	}
	if f.apps.Refreshes() != 1 {
		t.Errorf("Load should refresh providers, got %d", f.apps.Refreshes())
	}
	if f.stack.ActiveLevel() != 0 || r.Selected != None || r.Hovered != None {
		t.Errorf("fresh ring 0 = %+v active %d", r, f.stack.ActiveLevel())
	}
}

func TestExpandCategory(t *testing.T) {
	f := newFixture(t)
	s := f.stack

	if !s.ExpandCategory(0, 0, true) {
		t.Fatal("ExpandCategory failed")
	}
	if s.Len() != 2 || s.ActiveLevel() != 1 {
		t.Fatalf("Len=%d active=%d", s.Len(), s.ActiveLevel())
	}
	r, _ := s.Ring(1)
	if r.ProviderID != "apps" || len(r.Nodes) != 3 || !r.OpenedByClick {
		t.Errorf("ring 1 = %+v", r)
	}
	if root, _ := s.Ring(0); root.Selected != 0 {
		t.Errorf("ring 0 selected = %d", root.Selected)
	}

	// Leaves cannot expand.
	if s.ExpandCategory(1, 0, true) {
		t.Error("expanding an action should be a no-op")
	}
}

func TestExpandRejectsWithoutMutation(t *testing.T) {
	tests := []struct {
		name         string
		level, index int
	}{
		{"empty branch", 0, 2},
		{"dynamic without children", 0, 1},
		{"level out of range", 3, 0},
		{"negative level", -1, 0},
		{"index out of range", 0, 9},
		{"negative index", 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := f.stack
			s.ExpandCategory(0, 0, true)
			before, gen := s.Rings(), s.Generation()

			if s.ExpandCategory(tt.level, tt.index, true) {
				t.Fatal("ExpandCategory should be a no-op")
			}
			if diff := cmp.Diff(before, s.Rings()); diff != "" {
				t.Errorf("stack mutated (-before +after):\n%s", diff)
			}
			if s.Generation() != gen || s.ActiveLevel() != 1 {
				t.Errorf("generation %d -> %d, active %d", gen, s.Generation(), s.ActiveLevel())
			}
		})
	}
}

func TestCollapseAndReExpandReproducesSlice(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	s.ExpandCategory(0, 0, true)
	before := s.Configurations()[1].Slice

	if !s.CollapseToRing(0) {
		t.Fatal("CollapseToRing failed")
	}
	if s.Len() != 1 || s.ActiveLevel() != 0 {
		t.Fatalf("after collapse Len=%d active=%d", s.Len(), s.ActiveLevel())
	}
	s.ExpandCategory(0, 0, true)

	if diff := cmp.Diff(before, s.Configurations()[1].Slice); diff != "" {
		t.Errorf("slice mismatch (-before +after):\n%s", diff)
	}
	if s.CollapseToRing(5) {
		t.Error("collapsing to a missing level should fail")
	}
}

func TestNavigateIntoFolder(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	ctx := context.Background()

	if !s.NavigateIntoFolder(ctx, 0, 1) {
		t.Fatal("first navigation should start")
	}
	if !s.Navigating() {
		t.Error("Navigating should be set while loading")
	}
	if s.NavigateIntoFolder(ctx, 0, 1) {
		t.Error("second navigation should be dropped")
	}

	f.files.release <- struct{}{}
	f.queue.step(t)

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want exactly one appended ring", s.Len())
	}
	if f.files.Loads() != 1 {
		t.Errorf("loads = %d, want 1", f.files.Loads())
	}
	if s.Navigating() {
		t.Error("Navigating should clear after the load")
	}
	root, _ := s.Ring(0)
	if !root.Collapsed || root.Selected != 1 {
		t.Errorf("ring 0 should be collapsed with selection: %+v", root)
	}
	ring, _ := s.Ring(1)
	if ring.ProviderID != "files" || ring.ContentID != "/home" || len(ring.Nodes) != 3 {
		t.Errorf("ring 1 = %+v", ring)
	}
	if crumbs := s.Breadcrumb(); len(crumbs) != 1 || crumbs[0].ContentID() != "/home" {
		t.Errorf("breadcrumb = %v", crumbs)
	}
}

func TestNavigateReusesLoadedChildren(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	ctx := context.Background()

	s.NavigateIntoFolder(ctx, 0, 1)
	f.files.release <- struct{}{}
	f.queue.step(t)

	s.CollapseToRing(0)
	if root, _ := s.Ring(0); root.Collapsed {
		t.Error("CollapseToRing should restore full size")
	}
	if len(s.Breadcrumb()) != 0 {
		t.Errorf("breadcrumb should be trimmed: %v", s.Breadcrumb())
	}

	if !s.NavigateIntoFolder(ctx, 0, 1) {
		t.Fatal("re-entry failed")
	}
	if s.Len() != 2 || f.files.Loads() != 1 {
		t.Errorf("re-entry should be synchronous: Len=%d loads=%d", s.Len(), f.files.Loads())
	}
}

type staleCounter struct {
	observability.NoopMenuHooks
	mu    sync.Mutex
	stale []string
}

func (c *staleCounter) OnStaleResult(op string, _ int) {
	c.mu.Lock()
	c.stale = append(c.stale, op)
	c.mu.Unlock()
}

func TestNavigateDiscardsStaleResult(t *testing.T) {
	hooks := &staleCounter{}
	observability.SetMenuHooks(hooks)
	t.Cleanup(observability.Reset)

	f := newFixture(t)
	s := f.stack
	ctx := context.Background()

	s.NavigateIntoFolder(ctx, 0, 1)
	// The menu is dismissed and reopened while the folder loads.
	s.Reset()
	s.Load(ctx)
	s.ExpandCategory(0, 0, true)
	before := s.Rings()

	f.files.release <- struct{}{}
	f.queue.step(t)

	if diff := cmp.Diff(before, s.Rings()); diff != "" {
		t.Errorf("stale load mutated the stack (-before +after):\n%s", diff)
	}
	if len(hooks.stale) != 1 || hooks.stale[0] != "navigate" {
		t.Errorf("stale results = %v", hooks.stale)
	}
}

func TestNavigateLoadError(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	f.files.err = fmt.Errorf("permission denied")

	s.NavigateIntoFolder(context.Background(), 0, 1)
	f.files.release <- struct{}{}
	f.queue.step(t)

	if s.Len() != 1 || s.Navigating() {
		t.Errorf("failed load should leave the stack alone: Len=%d navigating=%v", s.Len(), s.Navigating())
	}
}

func TestNavigateIntoStaticCategory(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	if !s.NavigateIntoFolder(context.Background(), 0, 0) {
		t.Fatal("navigating into a static category should succeed")
	}
	if s.Len() != 2 || s.Navigating() {
		t.Errorf("Len=%d navigating=%v", s.Len(), s.Navigating())
	}
	if root, _ := s.Ring(0); !root.Collapsed {
		t.Error("ring being left should collapse")
	}
}

func TestResetAndBack(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	s.ExpandCategory(0, 0, true)

	if !s.Back() || s.Len() != 1 || s.ActiveLevel() != 0 {
		t.Errorf("Back: Len=%d active=%d", s.Len(), s.ActiveLevel())
	}
	if s.Back() {
		t.Error("Back at ring 0 should fail")
	}

	s.ExpandCategory(0, 0, true)
	s.Reset()
	if s.Len() != 0 || s.ActiveLevel() != 0 || len(s.Breadcrumb()) != 0 {
		t.Errorf("Reset left state: Len=%d active=%d", s.Len(), s.ActiveLevel())
	}
	if len(s.Configurations()) != 0 {
		t.Error("Configurations after Reset should be empty")
	}
}

func TestLoadAndExpandToCategory(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	ctx := context.Background()

	if !s.LoadAndExpandToCategory(ctx, "apps") {
		t.Fatal("LoadAndExpandToCategory(apps) failed")
	}
	if r, _ := s.Ring(1); r.ProviderID != "apps" {
		t.Errorf("ring 1 provider = %q", r.ProviderID)
	}
	if s.LoadAndExpandToCategory(ctx, "missing") {
		t.Error("unknown provider should not expand")
	}
	if s.Len() != 1 {
		t.Errorf("menu should still be loaded, Len=%d", s.Len())
	}
}

func TestSetHovered(t *testing.T) {
	f := newFixture(t)
	s := f.stack

	if !s.SetHovered(0, 2) {
		t.Fatal("SetHovered failed")
	}
	if r, _ := s.Ring(0); r.Hovered != 2 {
		t.Errorf("Hovered = %d", r.Hovered)
	}
	if !s.SetHovered(0, None) {
		t.Error("clearing hover failed")
	}
	if s.SetHovered(0, 3) || s.SetHovered(1, 0) {
		t.Error("out of range hover should fail")
	}
}
