package layout

import (
	"testing"
	"time"

	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/observability"
)

type layoutCounter struct {
	observability.NoopMenuHooks
	hits, misses int
}

func (c *layoutCounter) OnLayout(_ int, cached bool, _ time.Duration) {
	if cached {
		c.hits++
	} else {
		c.misses++
	}
}

func TestMemoReusesUntilShapeChanges(t *testing.T) {
	counter := &layoutCounter{}
	observability.SetMenuHooks(counter)
	t.Cleanup(observability.Reset)

	m := NewMemo(newEngine(t, Config{}))
	rings := stackWithChild(6, 2, 4, node.Hints{})

	first := m.Get(rings, 1)
	second := m.Get(rings, 1)
	if &first[0] != &second[0] {
		t.Error("identical shape should return the cached array")
	}

	rings[0].Selected = 3
	third := m.Get(rings, 1)
	if &third[0] == &second[0] {
		t.Error("changed selection should recompute")
	}
	if third[1].Slice.Start == second[1].Slice.Start {
		t.Error("child ring should follow the new selection")
	}

	rings[0].Collapsed = true
	if fourth := m.Get(rings, 1); fourth[0].Thickness != DefaultCollapsedThickness {
		t.Errorf("collapsed flag should recompute, thickness %v", fourth[0].Thickness)
	}

	if counter.hits != 1 || counter.misses != 3 {
		t.Errorf("hits=%d misses=%d, want 1 and 3", counter.hits, counter.misses)
	}
}

func TestMemoInvalidate(t *testing.T) {
	m := NewMemo(newEngine(t, Config{}))
	rings := stackWithChild(6, 2, 4, node.Hints{})
	before := m.Get(rings, 1)

	// Same shape, different contents: only Invalidate picks them up.
	rings[1].Nodes = items(4)
	rings[1].Nodes[0].Name = "renamed"
	if got := m.Get(rings, 1); got[1].Nodes[0].Name == "renamed" {
		t.Fatal("memo should not notice content changes on its own")
	}

	m.Invalidate()
	after := m.Get(rings, 1)
	if &after[0] == &before[0] {
		t.Error("Invalidate should force a recompute")
	}
	if after[1].Nodes[0].Name != "renamed" {
		t.Errorf("recomputed ring has %q", after[1].Nodes[0].Name)
	}
}
