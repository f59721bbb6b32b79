package menu

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/provider"
)

var center = hittest.Point{X: 300, Y: 300}

// itemPos returns the screen position at the middle of item index of the
// ring at level.
func itemPos(t *testing.T, s *Stack, level, index int) hittest.Point {
	t.Helper()
	configs := s.Configurations()
	if level >= len(configs) {
		t.Fatalf("no ring %d", level)
	}
	rc := configs[level]
	return hittest.At(center, rc.Slice.ItemCenter(index), rc.StartRadius+rc.Thickness/2)
}

func newController(t *testing.T) (*Controller, *[]node.ActionRef) {
	t.Helper()
	file := node.File("files", "/tmp/a.txt", "a.txt", "files.open")
	apps := provider.NewStatic("apps", "Apps", "grid",
		node.Category("apps", "apps", "Apps", "grid", actions("apps", 3)...),
		node.Category("apps", "recent", "Recent", "clock", file),
	)
	reg, err := provider.NewRegistry(apps)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(Options{Providers: reg, Scheduler: newQueue()})
	if err != nil {
		t.Fatal(err)
	}
	s.Load(context.Background())

	var ran []node.ActionRef
	reg2 := node.NewActionRegistry()
	record := func(ref node.ActionRef) node.ActionFunc {
		return func(context.Context, node.Node) error {
			ran = append(ran, ref)
			return nil
		}
	}
	reg2.Register("apps.run", record("apps.run"))
	reg2.Register("files.open", record("files.open"))
	return NewController(s, reg2, center, nil), &ran
}

func TestControllerClickExpandsAndExecutes(t *testing.T) {
	c, ran := newController(t)
	s := c.Stack()
	ctx := context.Background()

	out, err := c.Click(ctx, node.LeftClick, itemPos(t, s, 0, 0), node.ModNone)
	if err != nil || out.Dismiss {
		t.Fatalf("category click: %+v, %v", out, err)
	}
	r, ok := s.Ring(1)
	if !ok || !r.OpenedByClick {
		t.Fatalf("click should open ring 1 by click: %+v", r)
	}

	// Shift keeps the menu open.
	out, err = c.Click(ctx, node.LeftClick, itemPos(t, s, 1, 2), node.ModShift)
	if err != nil || out.Dismiss || out.Executed != "apps.run" {
		t.Fatalf("shift click: %+v, %v", out, err)
	}
	if s.Len() != 2 {
		t.Error("keep-open action should not reset the stack")
	}

	out, err = c.Click(ctx, node.LeftClick, itemPos(t, s, 1, 1), node.ModNone)
	if err != nil || !out.Dismiss || out.Executed != "apps.run" {
		t.Fatalf("plain click: %+v, %v", out, err)
	}
	if s.Len() != 0 {
		t.Error("executing should reset the stack")
	}
	if diff := cmp.Diff([]node.ActionRef{"apps.run", "apps.run"}, *ran); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerClickOutsideDismisses(t *testing.T) {
	c, _ := newController(t)
	out, err := c.Click(context.Background(), node.LeftClick, center, node.ModNone)
	if err != nil || !out.Dismiss {
		t.Fatalf("click in the hole: %+v, %v", out, err)
	}
	if c.Stack().Len() != 0 {
		t.Error("dismiss should reset the stack")
	}
}

func TestControllerUnknownAction(t *testing.T) {
	c, _ := newController(t)
	s := c.Stack()
	ctx := context.Background()
	s.ExpandCategory(0, 0, true)

	c.actions = node.NewActionRegistry()
	out, err := c.Click(ctx, node.LeftClick, itemPos(t, s, 1, 0), node.ModNone)
	if err == nil {
		t.Error("unregistered action should report an error")
	}
	if !out.Dismiss {
		t.Error("failed execute still dismisses")
	}
}

func TestControllerBoundaryCrossAndAutoCollapse(t *testing.T) {
	c, _ := newController(t)
	s := c.Stack()
	ctx := context.Background()

	// Hover item 0, then push past the outer edge of ring 0.
	if _, err := c.Move(ctx, itemPos(t, s, 0, 0), node.ModNone); err != nil {
		t.Fatal(err)
	}
	if r, _ := s.Ring(0); r.Hovered != 0 {
		t.Fatalf("hovered = %d", r.Hovered)
	}
	rc := s.Configurations()[0]
	beyond := hittest.At(center, rc.Slice.ItemCenter(0), rc.EndRadius()+200)
	if _, err := c.Move(ctx, beyond, node.ModNone); err != nil {
		t.Fatal(err)
	}
	r, ok := s.Ring(1)
	if !ok || r.OpenedByClick {
		t.Fatalf("boundary cross should open ring 1 by hover: %+v", r)
	}

	// Moving back onto the other ring 0 item closes the hover-opened ring.
	if _, err := c.Move(ctx, itemPos(t, s, 0, 1), node.ModNone); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || s.ActiveLevel() != 0 {
		t.Errorf("hover-opened ring should close: Len=%d", s.Len())
	}
	if r, _ := s.Ring(0); r.Hovered != 1 {
		t.Errorf("hovered = %d", r.Hovered)
	}
}

func TestControllerClickOpenedRingSurvivesHover(t *testing.T) {
	c, _ := newController(t)
	s := c.Stack()
	ctx := context.Background()

	c.Click(ctx, node.LeftClick, itemPos(t, s, 0, 0), node.ModNone)
	c.Move(ctx, itemPos(t, s, 1, 0), node.ModNone)
	if r, _ := s.Ring(1); r.Hovered != 0 {
		t.Fatalf("ring 1 hovered = %d", r.Hovered)
	}
	c.Move(ctx, itemPos(t, s, 0, 1), node.ModNone)

	if s.Len() != 2 {
		t.Errorf("click-opened ring should stay open, Len=%d", s.Len())
	}
	// Only the ring under the pointer shows hover.
	if r, _ := s.Ring(0); r.Hovered != 1 {
		t.Errorf("ring 0 hovered = %d, want 1", r.Hovered)
	}
	if r, _ := s.Ring(1); r.Hovered != None {
		t.Errorf("ring 1 hovered = %d, want None", r.Hovered)
	}
}

func TestControllerDrag(t *testing.T) {
	c, _ := newController(t)
	s := c.Stack()
	ctx := context.Background()
	s.ExpandCategory(0, 1, true)

	out, err := c.Click(ctx, node.MiddleClick, itemPos(t, s, 1, 0), node.ModNone)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"/tmp/a.txt"}, out.Drag); diff != "" {
		t.Errorf("drag payload mismatch (-want +got):\n%s", diff)
	}
	if !out.Dismiss || s.Len() != 0 {
		t.Error("drag should dismiss the menu")
	}
}

func TestControllerActivate(t *testing.T) {
	c, ran := newController(t)
	ctx := context.Background()

	if _, err := c.Activate(ctx, 0, 1, node.ModNone); err != nil {
		t.Fatal(err)
	}
	out, err := c.Activate(ctx, 1, 0, node.ModNone)
	if err != nil || out.Executed != "files.open" {
		t.Fatalf("activate file: %+v, %v", out, err)
	}
	if len(*ran) != 1 {
		t.Errorf("ran = %v", *ran)
	}
	if out, _ := c.Activate(ctx, 4, 0, node.ModNone); out.Hit != nil {
		t.Error("invalid level should do nothing")
	}
}
