package hittest

import (
	"math"

	"github.com/matzehuels/piemenu/pkg/layout"
	"github.com/matzehuels/piemenu/pkg/node"
)

// Point is a screen position. Y grows downward.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Hit identifies the item under the pointer.
type Hit struct {
	Level int       `json:"level"`
	Index int       `json:"index"`
	Node  node.Node `json:"node"`
}

// Polar returns the angle of pos around center in degrees (0 at the top,
// clockwise) and its distance from center.
func Polar(pos, center Point) (angle, dist float64) {
	dx := pos.X - center.X
	dy := pos.Y - center.Y
	// Screen y points down, so up is -dy.
	angle = layout.Normalize(math.Atan2(dx, -dy) * 180 / math.Pi)
	return angle, math.Hypot(dx, dy)
}

// At returns the screen position at angle degrees and dist from center.
// It is the inverse of Polar.
func At(center Point, angle, dist float64) Point {
	rad := angle * math.Pi / 180
	return Point{
		X: center.X + dist*math.Sin(rad),
		Y: center.Y - dist*math.Cos(rad),
	}
}

// ItemAt returns the item of configs under pos. A pointer beyond the
// outermost ring resolves against the ring at activeLevel.
func ItemAt(configs []layout.RingConfig, activeLevel int, pos, center Point) (Hit, bool) {
	if len(configs) == 0 {
		return Hit{}, false
	}
	angle, dist := Polar(pos, center)

	rc, ok := ringAt(configs, activeLevel, dist)
	if !ok || len(rc.Nodes) == 0 {
		return Hit{}, false
	}
	idx, ok := Index(rc.Slice, angle)
	if !ok || idx >= len(rc.Nodes) {
		return Hit{}, false
	}
	return Hit{Level: rc.Level, Index: idx, Node: rc.Nodes[idx]}, true
}

func ringAt(configs []layout.RingConfig, activeLevel int, dist float64) (layout.RingConfig, bool) {
	var outer float64
	for _, rc := range configs {
		if dist >= rc.StartRadius && dist <= rc.EndRadius() {
			return rc, true
		}
		outer = math.Max(outer, rc.EndRadius())
	}
	if dist > outer && activeLevel >= 0 && activeLevel < len(configs) {
		return configs[activeLevel], true
	}
	return layout.RingConfig{}, false
}

// Index returns the item of s that covers angle. Partial slices reject
// angles outside their arc; clockwise slices count from Start and
// counter-clockwise slices count back from End.
func Index(s layout.SliceConfig, angle float64) (int, bool) {
	if s.Count == 0 {
		return 0, false
	}

	var offset float64
	switch {
	case s.FullCircle:
		offset = layout.Normalize(angle - s.Start)
	case !s.Contains(angle):
		return 0, false
	case s.Direction == layout.CounterClockwise:
		offset = layout.Normalize(s.End - angle)
	default:
		offset = layout.Normalize(angle - s.Start)
	}

	if len(s.ItemAngles) == 0 {
		if s.ItemAngle <= 0 {
			return 0, false
		}
		idx := int(math.Floor(offset / s.ItemAngle))
		if s.FullCircle {
			return idx % s.Count, true
		}
		// The far edge of a partial arc belongs to its last item.
		return min(idx, s.Count-1), true
	}

	var acc float64
	for i, a := range s.ItemAngles {
		acc += a
		if offset < acc {
			return i, true
		}
	}
	return len(s.ItemAngles) - 1, true
}
