package layout

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/piemenu/pkg/node"
)

// RingInput is the layout-relevant state of one ring.
type RingInput struct {
	Nodes     []node.Node
	Selected  int // -1 when nothing is selected
	Collapsed bool
}

// RingConfig is the render-facing geometry of one ring.
type RingConfig struct {
	Level       int         `json:"level"`
	StartRadius float64     `json:"start_radius"`
	Thickness   float64     `json:"thickness"`
	Nodes       []node.Node `json:"nodes"`
	Selected    int         `json:"selected"`
	Slice       SliceConfig `json:"slice"`
	IconSize    float64     `json:"icon_size"`
	Collapsed   bool        `json:"collapsed,omitempty"`
}

// EndRadius returns the outer edge of the ring.
func (r RingConfig) EndRadius() float64 { return r.StartRadius + r.Thickness }

// Engine computes ring geometry. It holds no per-menu state and is safe for
// concurrent use.
type Engine struct {
	cfg    Config
	logger *log.Logger
}

// NewEngine validates cfg and returns an engine using it.
// If logger is nil, diagnostics are discarded.
func NewEngine(cfg Config, logger *log.Logger) (*Engine, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// MaxItems returns the hard per-ring item cap.
func (e *Engine) MaxItems() int { return e.cfg.MaxItems() }

// Compute derives the geometry of every ring. Ring i > 0 is placed against
// the wedge of the selected item of ring i-1.
func (e *Engine) Compute(rings []RingInput) []RingConfig {
	out := make([]RingConfig, 0, len(rings))
	radius := e.cfg.CenterRadius

	for i, r := range rings {
		nodes := node.Cap(r.Nodes, e.MaxItems())
		rc := RingConfig{
			Level:     i,
			Nodes:     nodes,
			Selected:  r.Selected,
			IconSize:  e.cfg.IconSize,
			Thickness: e.cfg.RingThickness,
			Collapsed: r.Collapsed,
		}

		if i == 0 {
			var hole float64
			rc.Slice, hole, rc.Thickness = e.rootSlice(nodes)
			radius = hole
		} else {
			parent := out[i-1]
			owner, wedgeStart, wedgeEnd := parentWedge(parent)
			if t := owner.Hints.ChildRingThickness; t > 0 {
				rc.Thickness = t
			}
			if s := owner.Hints.ChildIconSize; s > 0 {
				rc.IconSize = s
			}
			rc.Slice = e.childSlice(i, len(nodes), owner, wedgeStart, wedgeEnd, parent.Slice.Direction)
		}

		if r.Collapsed {
			rc.Thickness = e.cfg.CollapsedThickness
			rc.IconSize = e.cfg.CollapsedIconSize
		}
		rc.StartRadius = radius
		radius += rc.Thickness + e.cfg.RingGap
		out = append(out, rc)
	}
	return out
}

// parentWedge returns the node that owns the next ring together with the
// clockwise-ordered edges of its wedge.
func parentWedge(parent RingConfig) (node.Node, float64, float64) {
	sel := parent.Selected
	if sel < 0 || sel >= len(parent.Nodes) {
		return node.Node{}, 0, 0
	}
	start, end := parent.Slice.ItemRange(sel)
	return parent.Nodes[sel], start, end
}

// rootSlice lays out ring 0: always a full circle with item 0 centered at
// the top. It also returns the hole radius and thickness, grown when items
// would be packed tighter than RootComfortAngle.
func (e *Engine) rootSlice(nodes []node.Node) (SliceConfig, float64, float64) {
	hole, thickness := e.cfg.CenterRadius, e.cfg.RingThickness
	n := len(nodes)
	if n == 0 {
		return SliceConfig{FullCircle: true, Direction: Clockwise}, hole, thickness
	}

	s := SliceConfig{
		FullCircle: true,
		Direction:  Clockwise,
		Count:      n,
		ItemAngle:  360 / float64(n),
	}
	s.ItemAngles = e.rootOverrides(nodes)

	s.Start = Normalize(-s.Angle(0) / 2)
	s.End = s.Start

	if uniform := 360 / float64(n); uniform < e.cfg.RootComfortAngle {
		// Arc length at a fixed radius is proportional to the angle, so the
		// desired/current arc ratio reduces to comfort/uniform.
		scale := e.cfg.RootComfortAngle / uniform
		hole *= scale
		thickness *= math.Sqrt(scale)
		e.logger.Debug("root ring grown", "items", n, "angle", uniform, "scale", scale)
	}
	return s, hole, thickness
}

// rootOverrides resolves per-node angle overrides in the root ring. It
// returns nil when the ring should be laid out uniformly.
func (e *Engine) rootOverrides(nodes []node.Node) []float64 {
	var fixed float64
	free := 0
	for _, nd := range nodes {
		if a := nd.Hints.AngleOverride; a > 0 {
			fixed += a
		} else {
			free++
		}
	}
	if fixed == 0 {
		return nil
	}

	angles := make([]float64, len(nodes))
	switch remaining := 360 - fixed; {
	case free > 0 && remaining > eps:
		share := remaining / float64(free)
		for i, nd := range nodes {
			if a := nd.Hints.AngleOverride; a > 0 {
				angles[i] = a
			} else {
				angles[i] = share
			}
		}
	case free == 0 && remaining >= -eps:
		// Every item is overridden; stretch them to close the circle.
		for i, nd := range nodes {
			angles[i] = nd.Hints.AngleOverride * 360 / fixed
		}
	default:
		e.logger.Warn("root angle overrides exceed 360 degrees, using uniform layout",
			"overrides", fixed, "items", len(nodes))
		return nil
	}

	for _, a := range angles {
		if a < e.cfg.MinimalAngle-eps {
			e.logger.Warn("root angle overrides squeeze items below minimal angle, using uniform layout",
				"angle", a, "minimal", e.cfg.MinimalAngle)
			return nil
		}
	}
	return angles
}

// depthScale returns the factor applied to the phase constants of a ring.
func (e *Engine) depthScale(level int) float64 {
	exp := level - 1
	if e.cfg.DepthExponent == DepthFromLevel {
		exp = level
	}
	if exp <= 0 {
		return 1
	}
	return math.Pow(e.cfg.DepthScale, float64(exp))
}

// childSlice lays out a non-root ring of count items against the parent
// wedge [wedgeStart, wedgeEnd].
func (e *Engine) childSlice(level, count int, owner node.Node, wedgeStart, wedgeEnd float64, parentDir Direction) SliceConfig {
	mid := (wedgeStart + wedgeEnd) / 2
	if count == 0 {
		return SliceConfig{FullCircle: true, Start: Normalize(mid), End: Normalize(mid), Direction: parentDir}
	}
	full := func() SliceConfig {
		a := 360 / float64(count)
		start := Normalize(mid - a/2)
		return SliceConfig{FullCircle: true, Start: start, End: start, Direction: Clockwise, Count: count, ItemAngle: a}
	}

	n := float64(count)
	hints := owner.Hints
	if hints.PreferFullCircle {
		return full()
	}
	if t := hints.PartialSliceThreshold; t > 0 && count >= t {
		return full()
	}

	if a := hints.ChildItemAngle; a > 0 {
		a = math.Max(a, e.cfg.MinimalAngle)
		if n*a >= 360-eps {
			return full()
		}
		return e.partial(count, a, owner, wedgeStart, wedgeEnd, parentDir)
	}

	scale := e.depthScale(level)
	minimal := math.Max(e.cfg.PhaseMinimalAngle*scale, e.cfg.MinimalAngle)
	def := math.Max(e.cfg.DefaultItemAngle*scale, minimal)
	maxArc := math.Max(e.cfg.MaxArcAngle*scale, minimal)

	var angle float64
	switch {
	case n*def <= maxArc+eps:
		angle = def
	case maxArc/n >= minimal-eps:
		angle = maxArc / n
	case n*minimal < 360-minimal:
		angle = minimal
	default:
		return full()
	}
	return e.partial(count, angle, owner, wedgeStart, wedgeEnd, parentDir)
}

// partial places an arc of count items of angle degrees according to the
// owner's anchor.
func (e *Engine) partial(count int, angle float64, owner node.Node, wedgeStart, wedgeEnd float64, parentDir Direction) SliceConfig {
	total := angle * float64(count)
	anchor := owner.Hints.Anchor
	if anchor == node.AnchorDefault {
		anchor = e.cfg.DefaultAnchor
	}

	var start float64
	dir := parentDir
	switch anchor {
	case node.AnchorCounterClockwiseEdge:
		start = wedgeStart
		dir = Clockwise
	case node.AnchorClockwiseEdge:
		start = wedgeEnd - total
		dir = CounterClockwise
	default:
		start = (wedgeStart+wedgeEnd)/2 - total/2
	}
	return SliceConfig{
		Start:     Normalize(start),
		End:       Normalize(start + total),
		Direction: dir,
		Count:     count,
		ItemAngle: angle,
	}
}
