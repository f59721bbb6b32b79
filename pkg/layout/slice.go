package layout

import "math"

const eps = 1e-9

// Direction is the order in which items are laid out along a slice.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (d Direction) String() string {
	if d == CounterClockwise {
		return "ccw"
	}
	return "cw"
}

// MarshalText encodes the direction as "cw" or "ccw".
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// SliceConfig describes how a ring's items are spread over its arc.
// Angles are in degrees, 0 at the top, growing clockwise.
//
// For partial slices the arc runs clockwise from Start to End. Clockwise
// rings place item 0 at Start; counter-clockwise rings place it at End.
type SliceConfig struct {
	FullCircle bool      `json:"full_circle"`
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	Direction  Direction `json:"direction"`
	Count      int       `json:"count"`

	// ItemAngle is the uniform per-item angle.
	ItemAngle float64 `json:"item_angle"`

	// ItemAngles, when set, gives every item its own angle.
	ItemAngles []float64 `json:"item_angles,omitempty"`
}

// Angle returns the angle of item i.
func (s SliceConfig) Angle(i int) float64 {
	if len(s.ItemAngles) > 0 {
		if i < 0 || i >= len(s.ItemAngles) {
			return 0
		}
		return s.ItemAngles[i]
	}
	return s.ItemAngle
}

// Total returns the arc covered by the slice.
func (s SliceConfig) Total() float64 {
	if s.FullCircle {
		return 360
	}
	if len(s.ItemAngles) > 0 {
		return sum(s.ItemAngles)
	}
	return s.ItemAngle * float64(s.Count)
}

// offset returns the arc between the slice origin and the leading edge of item i.
func (s SliceConfig) offset(i int) float64 {
	if len(s.ItemAngles) > 0 {
		return sum(s.ItemAngles[:i])
	}
	return s.ItemAngle * float64(i)
}

// ItemRange returns the clockwise-ordered edges of item i. start is
// normalized to [0, 360); end = start + Angle(i) and may exceed 360.
func (s SliceConfig) ItemRange(i int) (start, end float64) {
	a := s.Angle(i)
	if s.Direction == CounterClockwise && !s.FullCircle {
		e := s.End - s.offset(i)
		start = Normalize(e - a)
	} else {
		start = Normalize(s.Start + s.offset(i))
	}
	return start, start + a
}

// ItemCenter returns the angle bisecting item i, normalized to [0, 360).
func (s SliceConfig) ItemCenter(i int) float64 {
	start, end := s.ItemRange(i)
	return Normalize((start + end) / 2)
}

// Contains reports whether angle falls on the slice arc.
func (s SliceConfig) Contains(angle float64) bool {
	if s.FullCircle {
		return true
	}
	return Normalize(angle-s.Start) <= s.Total()+eps
}

// Normalize maps an angle into [0, 360).
func Normalize(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360-eps {
		a = 0
	}
	return a
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}
