package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/piemenu/pkg/node"
)

const tol = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) < tol }

func items(n int) []node.Node {
	out := make([]node.Node, n)
	for i := range out {
		out[i] = node.Node{ID: fmt.Sprintf("n%d", i), Name: fmt.Sprintf("item %d", i), Kind: node.KindAction}
	}
	return out
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// stackWithChild returns a two-ring input where ring 1 has count items
// opened from item sel of a root ring of rootCount items.
func stackWithChild(rootCount, sel, count int, owner node.Hints) []RingInput {
	root := items(rootCount)
	root[sel].Kind = node.KindCategory
	root[sel].Hints = owner
	return []RingInput{
		{Nodes: root, Selected: sel},
		{Nodes: items(count), Selected: -1},
	}
}

func TestRootTenItems(t *testing.T) {
	e := newEngine(t, Config{})
	rc := e.Compute([]RingInput{{Nodes: items(10), Selected: -1}})[0]

	if !rc.Slice.FullCircle {
		t.Fatal("root ring must be a full circle")
	}
	if !approx(rc.Slice.ItemAngle, 36) {
		t.Errorf("ItemAngle = %v, want 36", rc.Slice.ItemAngle)
	}
	if c := rc.Slice.ItemCenter(0); !approx(c, 0) {
		t.Errorf("item 0 center = %v, want 0", c)
	}
	if !approx(rc.Slice.Start, 342) {
		t.Errorf("Start = %v, want 342", rc.Slice.Start)
	}
	if rc.StartRadius != DefaultCenterRadius || rc.Thickness != DefaultRingThickness {
		t.Errorf("10 items should not grow the root: radius %v thickness %v", rc.StartRadius, rc.Thickness)
	}
}

func TestFullCircleAnglesSumTo360(t *testing.T) {
	e := newEngine(t, Config{})
	for n := 1; n <= 60; n++ {
		configs := e.Compute([]RingInput{{Nodes: items(n), Selected: 0}, {Nodes: items(n), Selected: -1}})
		for _, rc := range configs {
			if !rc.Slice.FullCircle {
				continue
			}
			var total float64
			for i := 0; i < rc.Slice.Count; i++ {
				total += rc.Slice.Angle(i)
			}
			if !approx(total, 360) {
				t.Errorf("n=%d level=%d: angles sum to %v", n, rc.Level, total)
			}
		}
	}
}

func TestHardCapAndMinimalAngle(t *testing.T) {
	e := newEngine(t, Config{})
	limit := e.MaxItems()
	if limit != 36 {
		t.Fatalf("MaxItems = %d, want 36", limit)
	}

	for level := 1; level <= 4; level++ {
		for n := 1; n <= 80; n++ {
			rings := []RingInput{{Nodes: items(n), Selected: 0}}
			for l := 1; l <= level; l++ {
				rings = append(rings, RingInput{Nodes: items(n), Selected: 0})
			}
			for _, rc := range e.Compute(rings) {
				if len(rc.Nodes) > limit {
					t.Fatalf("n=%d level=%d: %d nodes exceed cap", n, rc.Level, len(rc.Nodes))
				}
				for i := 0; i < rc.Slice.Count; i++ {
					if a := rc.Slice.Angle(i); a < e.Config().MinimalAngle-tol {
						t.Fatalf("n=%d level=%d item %d: angle %v below minimal", n, rc.Level, i, a)
					}
				}
			}
		}
	}
}

func TestRootAutoGrow(t *testing.T) {
	e := newEngine(t, Config{})
	rc := e.Compute([]RingInput{{Nodes: items(20), Selected: -1}})[0]

	if !approx(rc.Slice.ItemAngle, 18) {
		t.Fatalf("ItemAngle = %v, want 18", rc.Slice.ItemAngle)
	}
	if rc.StartRadius <= DefaultCenterRadius || rc.Thickness <= DefaultRingThickness {
		t.Fatalf("root should grow: radius %v thickness %v", rc.StartRadius, rc.Thickness)
	}

	holeScale := rc.StartRadius / DefaultCenterRadius
	thickScale := rc.Thickness / DefaultRingThickness
	if !approx(holeScale, 25.0/18.0) {
		t.Errorf("hole scale = %v, want %v", holeScale, 25.0/18.0)
	}
	if !approx(thickScale, math.Sqrt(holeScale)) {
		t.Errorf("thickness scale = %v, want sqrt(%v)", thickScale, holeScale)
	}
	// The arc of one item at the grown hole equals the comfort arc at the default hole.
	if !approx(rc.StartRadius*18, DefaultCenterRadius*25) {
		t.Errorf("arc length not preserved: %v vs %v", rc.StartRadius*18, DefaultCenterRadius*25)
	}
}

func TestRootOverrides(t *testing.T) {
	e := newEngine(t, Config{})

	tests := []struct {
		name      string
		overrides []float64
		want      []float64 // nil means uniform
	}{
		{"remaining split", []float64{180, 0, 0}, []float64{180, 90, 90}},
		{"all overridden are stretched", []float64{100, 100}, []float64{180, 180}},
		{"overflow falls back to uniform", []float64{200, 200, 0}, nil},
		{"squeezed below minimal falls back", []float64{340, 0, 0, 0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := items(len(tt.overrides))
			for i, a := range tt.overrides {
				nodes[i].Hints.AngleOverride = a
			}
			s := e.Compute([]RingInput{{Nodes: nodes, Selected: -1}})[0].Slice

			if diff := cmp.Diff(tt.want, s.ItemAngles, cmpopts.EquateApprox(0, tol), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ItemAngles mismatch (-want +got):\n%s", diff)
			}
			if !approx(s.ItemCenter(0), 0) {
				t.Errorf("item 0 center = %v, want 0", s.ItemCenter(0))
			}
		})
	}
}

func TestChildPhases(t *testing.T) {
	e := newEngine(t, Config{})

	tests := []struct {
		name  string
		count int
		full  bool
		angle float64
	}{
		{"stack", 3, false, 30},
		{"stack at max arc", 6, false, 30},
		{"distribute", 9, false, 20},
		{"stack at minimum", 15, false, 15},
		{"full circle", 23, true, 360.0 / 23},
		{"full circle many", 30, true, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := e.Compute(stackWithChild(4, 1, tt.count, node.Hints{}))[1]
			if rc.Slice.FullCircle != tt.full {
				t.Errorf("FullCircle = %v, want %v", rc.Slice.FullCircle, tt.full)
			}
			if !approx(rc.Slice.ItemAngle, tt.angle) {
				t.Errorf("ItemAngle = %v, want %v", rc.Slice.ItemAngle, tt.angle)
			}
		})
	}
}

func TestChildPhasesScaleWithDepth(t *testing.T) {
	e := newEngine(t, Config{})
	root := items(4)
	root[0].Kind = node.KindCategory
	mid := items(2)
	mid[0].Kind = node.KindCategory

	rings := []RingInput{
		{Nodes: root, Selected: 0},
		{Nodes: mid, Selected: 0},
		{Nodes: items(6), Selected: -1},
	}
	rc := e.Compute(rings)[2]
	if want := 30 * DefaultDepthScale; !approx(rc.Slice.ItemAngle, want) {
		t.Errorf("level 2 ItemAngle = %v, want %v", rc.Slice.ItemAngle, want)
	}

	byLevel := newEngine(t, Config{DepthExponent: DepthFromLevel})
	rc = byLevel.Compute(rings)[1]
	if want := 30 * DefaultDepthScale; !approx(rc.Slice.ItemAngle, want) {
		t.Errorf("level 1 with level exponent ItemAngle = %v, want %v", rc.Slice.ItemAngle, want)
	}
}

func TestChildFixedAngle(t *testing.T) {
	e := newEngine(t, Config{})

	rc := e.Compute(stackWithChild(4, 1, 4, node.Hints{ChildItemAngle: 40}))[1]
	if rc.Slice.FullCircle || !approx(rc.Slice.ItemAngle, 40) {
		t.Errorf("fitting fixed angle: full=%v angle=%v", rc.Slice.FullCircle, rc.Slice.ItemAngle)
	}

	rc = e.Compute(stackWithChild(4, 1, 10, node.Hints{ChildItemAngle: 40}))[1]
	if !rc.Slice.FullCircle || !approx(rc.Slice.ItemAngle, 36) {
		t.Errorf("overflowing fixed angle: full=%v angle=%v", rc.Slice.FullCircle, rc.Slice.ItemAngle)
	}
}

func TestChildFullCircleHints(t *testing.T) {
	e := newEngine(t, Config{})

	if rc := e.Compute(stackWithChild(4, 1, 3, node.Hints{PreferFullCircle: true}))[1]; !rc.Slice.FullCircle {
		t.Error("PreferFullCircle should force a full circle")
	}
	if rc := e.Compute(stackWithChild(4, 1, 5, node.Hints{PartialSliceThreshold: 5}))[1]; !rc.Slice.FullCircle {
		t.Error("reaching PartialSliceThreshold should force a full circle")
	}
	if rc := e.Compute(stackWithChild(4, 1, 4, node.Hints{PartialSliceThreshold: 5}))[1]; rc.Slice.FullCircle {
		t.Error("below PartialSliceThreshold should stay partial")
	}
}

func TestChildAnchors(t *testing.T) {
	e := newEngine(t, Config{})

	// Root of 4 items: item 1 spans [45, 135].
	tests := []struct {
		anchor node.Anchor
		start  float64
		end    float64
		dir    Direction
		first  [2]float64
	}{
		{node.AnchorCenter, 60, 120, Clockwise, [2]float64{60, 90}},
		{node.AnchorCounterClockwiseEdge, 45, 105, Clockwise, [2]float64{45, 75}},
		{node.AnchorClockwiseEdge, 75, 135, CounterClockwise, [2]float64{105, 135}},
	}
	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			s := e.Compute(stackWithChild(4, 1, 2, node.Hints{Anchor: tt.anchor}))[1].Slice
			if !approx(s.Start, tt.start) || !approx(s.End, tt.end) || s.Direction != tt.dir {
				t.Errorf("slice = [%v, %v] %v, want [%v, %v] %v", s.Start, s.End, s.Direction, tt.start, tt.end, tt.dir)
			}
			if a, b := s.ItemRange(0); !approx(a, tt.first[0]) || !approx(b, tt.first[1]) {
				t.Errorf("item 0 = [%v, %v], want %v", a, b, tt.first)
			}
		})
	}
}

func TestRadiiAndCollapsedRings(t *testing.T) {
	e := newEngine(t, Config{RingGap: 4})
	rings := stackWithChild(4, 1, 3, node.Hints{ChildRingThickness: 60, ChildIconSize: 24})
	rings[0].Collapsed = true

	configs := e.Compute(rings)
	root, child := configs[0], configs[1]

	if root.Thickness != DefaultCollapsedThickness || root.IconSize != DefaultCollapsedIconSize {
		t.Errorf("collapsed root = thickness %v icon %v", root.Thickness, root.IconSize)
	}
	if want := root.EndRadius() + 4; child.StartRadius != want {
		t.Errorf("child StartRadius = %v, want %v", child.StartRadius, want)
	}
	if child.Thickness != 60 || child.IconSize != 24 {
		t.Errorf("child hints ignored: thickness %v icon %v", child.Thickness, child.IconSize)
	}
}

func TestConfigValidation(t *testing.T) {
	c := DefaultConfig()
	if c.MinimalAngle != DefaultMinimalAngle || c.DepthExponent != DepthFromParent || c.DefaultAnchor != node.AnchorCenter {
		t.Errorf("DefaultConfig = %+v", c)
	}

	bad := []Config{
		{DepthExponent: "squared"},
		{DefaultAnchor: "left"},
		{MinimalAngle: 200},
		{MaxArcAngle: 400},
		{RingThickness: -1},
	}
	for _, cfg := range bad {
		if _, err := NewEngine(cfg, nil); err == nil {
			t.Errorf("NewEngine(%+v) should fail", cfg)
		}
	}
}
