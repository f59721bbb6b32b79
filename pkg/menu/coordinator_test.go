package menu

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/events"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/observability"
	"github.com/matzehuels/piemenu/pkg/provider"
)

// docsTree is a category whose second child carries content ID "X".
func docsTree(children int) node.Node {
	x := node.Category("docs", "x", "X", "", actions("docs", children)...)
	x.Metadata = map[string]string{node.MetaContentID: "X"}
	return node.Category("docs", "docs", "Docs", "", node.Action("docs", "readme", "Readme", "", "docs.run"), x)
}

func newDocsStack(t *testing.T) (*Stack, *provider.Static, *queue) {
	t.Helper()
	apps := provider.NewStatic("apps", "Apps", "grid", node.Category("apps", "apps", "Apps", "grid", actions("apps", 2)...))
	docs := provider.NewStatic("docs", "Docs", "", docsTree(2))
	reg, err := provider.NewRegistry(apps, docs)
	if err != nil {
		t.Fatal(err)
	}
	q := newQueue()
	s, err := New(Options{Providers: reg, Scheduler: q})
	if err != nil {
		t.Fatal(err)
	}
	s.Load(context.Background())
	return s, docs, q
}

func TestCoordinatorShallowestRingMatches(t *testing.T) {
	s, docs, _ := newDocsStack(t)
	c := NewCoordinator(s, nil)
	ctx := context.Background()

	s.ExpandCategory(0, 1, true) // ring 1: (docs, "")
	s.ExpandCategory(1, 1, true) // ring 2: (docs, "X")
	s.SetHovered(1, 0)
	if r, _ := s.Ring(2); r.ContentID != "X" {
		t.Fatalf("ring 2 content = %q", r.ContentID)
	}

	if level, ok := c.Match(provider.NewUpdateEvent("docs", "")); !ok || level != 1 {
		t.Fatalf("Match = %d, %v; want ring 1", level, ok)
	}
	if !c.Handle(ctx, provider.NewUpdateEvent("docs", "")) {
		t.Fatal("Handle should match")
	}

	if s.Len() != 2 || s.ActiveLevel() != 1 {
		t.Errorf("ring 2 should be closed: Len=%d active=%d", s.Len(), s.ActiveLevel())
	}
	r, _ := s.Ring(1)
	if r.Hovered != None || r.Selected != None {
		t.Errorf("indices should reset: %+v", r)
	}
	if docs.Refreshes() != 2 {
		t.Errorf("provider should be refreshed, got %d", docs.Refreshes())
	}
}

func TestCoordinatorContentMatch(t *testing.T) {
	s, docs, _ := newDocsStack(t)
	c := NewCoordinator(s, nil)
	ctx := context.Background()

	s.ExpandCategory(0, 1, true)
	s.ExpandCategory(1, 1, true)

	docs.SetRoots(docsTree(4))
	if !c.Handle(ctx, provider.NewUpdateEvent("docs", "X")) {
		t.Fatal("Handle should match ring 2")
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	r, _ := s.Ring(2)
	if len(r.Nodes) != 4 {
		t.Errorf("ring 2 has %d nodes, want 4", len(r.Nodes))
	}
	// The parent ring's copy is refreshed too.
	parent, _ := s.Ring(1)
	if n, _ := parent.SelectedNode(); len(n.Children) != 4 {
		t.Errorf("parent copy has %d children, want 4", len(n.Children))
	}
}

func TestCoordinatorRootReplacement(t *testing.T) {
	s, docs, _ := newDocsStack(t)
	c := NewCoordinator(s, nil)

	s.ExpandCategory(0, 0, true) // apps ring; no docs ring open
	docs.SetRoots(
		node.Category("docs", "guides", "Guides", "", actions("docs", 1)...),
		node.Category("docs", "notes", "Notes", "", actions("docs", 1)...),
	)

	// A docs update cannot match the apps ring, only ring 0.
	if level, ok := c.Match(provider.NewUpdateEvent("docs", "")); !ok || level != 0 {
		t.Fatalf("Match = %d, %v; want ring 0", level, ok)
	}
	c.Handle(context.Background(), provider.NewUpdateEvent("docs", ""))

	root, _ := s.Ring(0)
	var got []string
	for _, n := range root.Nodes {
		got = append(got, n.ID)
	}
	if diff := cmp.Diff([]string{"apps", "guides", "notes"}, got); diff != "" {
		t.Errorf("ring 0 mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 1 || root.Selected != None {
		t.Errorf("deeper rings should close: Len=%d selected=%d", s.Len(), root.Selected)
	}
}

func TestCoordinatorNoMatch(t *testing.T) {
	s, _, _ := newDocsStack(t)
	c := NewCoordinator(s, nil)
	s.ExpandCategory(0, 0, true)
	before := s.Rings()

	if c.Handle(context.Background(), provider.NewUpdateEvent("docs", "X")) {
		t.Error("no ring shows docs/X")
	}
	if c.Handle(context.Background(), provider.NewUpdateEvent("unknown", "")) {
		t.Error("unknown provider should not match")
	}
	if diff := cmp.Diff(before, s.Rings()); diff != "" {
		t.Errorf("stack mutated (-before +after):\n%s", diff)
	}
}

func TestCoordinatorClosesRingWhenParentVanishes(t *testing.T) {
	s, docs, _ := newDocsStack(t)
	c := NewCoordinator(s, nil)
	s.ExpandCategory(0, 1, true)
	s.ExpandCategory(1, 1, true)

	docs.SetRoots(node.Category("docs", "docs", "Docs", "", node.Action("docs", "readme", "Readme", "", "docs.run")))
	c.Handle(context.Background(), provider.NewUpdateEvent("docs", "X"))

	if s.Len() != 2 || s.ActiveLevel() != 1 {
		t.Errorf("ring 2 should close: Len=%d active=%d", s.Len(), s.ActiveLevel())
	}
}

func TestCoordinatorDynamicReload(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	c := NewCoordinator(s, nil)
	ctx := context.Background()

	s.NavigateIntoFolder(ctx, 0, 1)
	f.files.release <- struct{}{}
	f.queue.step(t)

	f.files.SetChildren("/home", node.File("files", "/home/only.txt", "only.txt", "files.open"))
	if !c.Handle(ctx, provider.NewUpdateEvent("files", "/home")) {
		t.Fatal("Handle should match the folder ring")
	}
	f.files.release <- struct{}{}
	f.queue.step(t)

	r, _ := s.Ring(1)
	if len(r.Nodes) != 1 || r.Nodes[0].Name != "only.txt" {
		t.Errorf("ring 1 = %+v", r.Nodes)
	}
	if root, _ := s.Ring(0); len(root.Nodes[1].Children) != 1 {
		t.Errorf("parent copy should hold the reloaded children")
	}
}

func TestCoordinatorUpdatedHintsReachLayout(t *testing.T) {
	f := newFixture(t)
	s := f.stack
	c := NewCoordinator(s, nil)
	ctx := context.Background()

	s.NavigateIntoFolder(ctx, 0, 1)
	f.files.release <- struct{}{}
	f.queue.step(t)
	if got := s.Configurations()[1].Slice.ItemAngle; got == 50 {
		t.Fatalf("item angle already 50 before the update")
	}

	home := node.Folder("files", "/home", "home", "files.open")
	home.Hints.ChildItemAngle = 50
	f.files.SetRoots(home)
	f.files.mu.Lock()
	f.files.err = errors.New(errors.ErrCodeProvider, "unreadable")
	f.files.mu.Unlock()

	if !c.Handle(ctx, provider.NewUpdateEvent("files", "/home")) {
		t.Fatal("Handle should match the folder ring")
	}
	if got := s.Configurations()[1].Slice.ItemAngle; got != 50 {
		t.Errorf("item angle before reload = %v, want 50", got)
	}

	f.files.release <- struct{}{}
	f.queue.step(t)
	if got := s.Configurations()[1].Slice.ItemAngle; got != 50 {
		t.Errorf("item angle after failed reload = %v, want 50", got)
	}
	if r, _ := s.Ring(1); len(r.Nodes) != 3 {
		t.Errorf("failed reload should keep the old items, got %d", len(r.Nodes))
	}
}

func TestCoordinatorDynamicReloadDiscardsStale(t *testing.T) {
	hooks := &staleCounter{}
	observability.SetMenuHooks(hooks)
	t.Cleanup(observability.Reset)

	f := newFixture(t)
	s := f.stack
	c := NewCoordinator(s, nil)
	ctx := context.Background()

	s.NavigateIntoFolder(ctx, 0, 1)
	f.files.release <- struct{}{}
	f.queue.step(t)

	c.Handle(ctx, provider.NewUpdateEvent("files", "/home"))
	s.CollapseToRing(0)
	before := s.Rings()

	f.files.release <- struct{}{}
	f.queue.step(t)

	if diff := cmp.Diff(before, s.Rings()); diff != "" {
		t.Errorf("stale reload mutated the stack (-before +after):\n%s", diff)
	}
	if len(hooks.stale) != 1 || hooks.stale[0] != "update" {
		t.Errorf("stale results = %v", hooks.stale)
	}
}

func TestCoordinatorRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := NewLoop(nil)
	go loop.Run(ctx)

	apps := provider.NewStatic("apps", "Apps", "grid", node.Category("apps", "apps", "Apps", "grid", actions("apps", 2)...))
	reg, _ := provider.NewRegistry(apps)
	s, err := New(Options{Providers: reg, Scheduler: loop})
	if err != nil {
		t.Fatal(err)
	}
	if err := loop.Do(ctx, func() { s.Load(ctx) }); err != nil {
		t.Fatal(err)
	}

	bus := events.NewMemoryBus()
	defer bus.Close()
	c := NewCoordinator(s, nil)
	go c.Run(ctx, bus)

	apps.SetRoots(node.Category("apps", "apps", "Apps", "grid", actions("apps", 5)...))
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := bus.Publish(ctx, provider.NewUpdateEvent("apps", "")); err != nil {
			t.Fatal(err)
		}
		var n int
		if err := loop.Do(ctx, func() { n = len(s.rings[0].Nodes[0].Children) }); err != nil {
			t.Fatal(err)
		}
		if n == 5 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("update never applied, ring 0 child count %d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
