package layout

import (
	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
)

// Depth exponent modes for per-ring scaling of the phase constants.
const (
	// DepthFromParent scales ring i by DepthScale^(i-1), so ring 1 uses the
	// unscaled constants.
	DepthFromParent = "parent"

	// DepthFromLevel scales ring i by DepthScale^i.
	DepthFromLevel = "level"
)

// Config holds the instance geometry and the tuned layout constants.
// It is immutable once handed to an Engine. All angles are in degrees.
type Config struct {
	// Instance geometry
	RingThickness      float64 `toml:"ring_thickness" json:"ring_thickness"`
	CenterRadius       float64 `toml:"center_radius" json:"center_radius"`
	IconSize           float64 `toml:"icon_size" json:"icon_size"`
	CollapsedThickness float64 `toml:"collapsed_thickness" json:"collapsed_thickness"`
	CollapsedIconSize  float64 `toml:"collapsed_icon_size" json:"collapsed_icon_size"`
	RingGap            float64 `toml:"ring_gap" json:"ring_gap"`

	// Child ring phases
	DefaultItemAngle  float64 `toml:"default_item_angle" json:"default_item_angle"`
	MaxArcAngle       float64 `toml:"max_arc_angle" json:"max_arc_angle"`
	PhaseMinimalAngle float64 `toml:"phase_minimal_angle" json:"phase_minimal_angle"`
	DepthScale        float64 `toml:"depth_scale" json:"depth_scale"`
	DepthExponent     string  `toml:"depth_exponent" json:"depth_exponent"`

	// MinimalAngle is the smallest angle any item may get. It also sets the
	// hard per-ring item cap of floor(360 / MinimalAngle).
	MinimalAngle float64 `toml:"minimal_angle" json:"minimal_angle"`

	// RootComfortAngle is the per-item angle below which the root ring grows.
	RootComfortAngle float64 `toml:"root_comfort_angle" json:"root_comfort_angle"`

	DefaultAnchor node.Anchor `toml:"default_anchor" json:"default_anchor"`
}

// Default layout values.
const (
	DefaultRingThickness      = 80.0
	DefaultCenterRadius       = 56.0
	DefaultIconSize           = 32.0
	DefaultCollapsedThickness = 24.0
	DefaultCollapsedIconSize  = 16.0
	DefaultDefaultItemAngle   = 30.0
	DefaultMaxArcAngle        = 180.0
	DefaultPhaseMinimalAngle  = 15.0
	DefaultMinimalAngle       = 10.0
	DefaultDepthScale         = 0.85
	DefaultRootComfortAngle   = 25.0
)

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	var c Config
	_ = c.ValidateAndSetDefaults()
	return c
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects values
// the layout math cannot work with.
func (c *Config) ValidateAndSetDefaults() error {
	setDefault(&c.RingThickness, DefaultRingThickness)
	setDefault(&c.CenterRadius, DefaultCenterRadius)
	setDefault(&c.IconSize, DefaultIconSize)
	setDefault(&c.CollapsedThickness, DefaultCollapsedThickness)
	setDefault(&c.CollapsedIconSize, DefaultCollapsedIconSize)
	setDefault(&c.DefaultItemAngle, DefaultDefaultItemAngle)
	setDefault(&c.MaxArcAngle, DefaultMaxArcAngle)
	setDefault(&c.PhaseMinimalAngle, DefaultPhaseMinimalAngle)
	setDefault(&c.MinimalAngle, DefaultMinimalAngle)
	setDefault(&c.DepthScale, DefaultDepthScale)
	setDefault(&c.RootComfortAngle, DefaultRootComfortAngle)
	if c.DepthExponent == "" {
		c.DepthExponent = DepthFromParent
	}
	if c.DefaultAnchor == node.AnchorDefault {
		c.DefaultAnchor = node.AnchorCenter
	}

	switch {
	case c.RingThickness < 0, c.CenterRadius < 0, c.IconSize < 0, c.RingGap < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "ring geometry must be non-negative")
	case c.MinimalAngle > 180:
		return errors.New(errors.ErrCodeInvalidConfig, "minimal angle %.1f exceeds 180", c.MinimalAngle)
	case c.MinimalAngle < 0 || c.PhaseMinimalAngle < 0 || c.DefaultItemAngle < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "angles must be positive")
	case c.MaxArcAngle > 360 || c.MaxArcAngle < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max arc angle %.1f outside (0, 360]", c.MaxArcAngle)
	case c.DepthScale < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "depth scale must be positive")
	}
	switch c.DepthExponent {
	case DepthFromParent, DepthFromLevel:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown depth exponent %q", c.DepthExponent)
	}
	switch c.DefaultAnchor {
	case node.AnchorCenter, node.AnchorClockwiseEdge, node.AnchorCounterClockwiseEdge:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown anchor %q", c.DefaultAnchor)
	}
	return nil
}

// MaxItems is the hard per-ring item cap.
func (c Config) MaxItems() int {
	return int(360/c.MinimalAngle + eps)
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
