package node

import (
	"fmt"
	"strings"
)

// BehaviorKind is the tag of the Behavior union.
type BehaviorKind int

const (
	DoNothing BehaviorKind = iota
	Execute
	ExecuteKeepOpen
	Expand
	NavigateInto
	Drag
)

var behaviorNames = [...]string{
	DoNothing:       "do-nothing",
	Execute:         "execute",
	ExecuteKeepOpen: "execute-keep-open",
	Expand:          "expand",
	NavigateInto:    "navigate-into",
	Drag:            "drag",
}

func (k BehaviorKind) String() string {
	if k < 0 || int(k) >= len(behaviorNames) {
		return fmt.Sprintf("behavior(%d)", int(k))
	}
	return behaviorNames[k]
}

// MarshalText encodes the kind by name.
func (k BehaviorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *BehaviorKind) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range behaviorNames {
		if name == s {
			*k = BehaviorKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown behavior %q", s)
}

// ActionRef is a stable handle resolved through an ActionRegistry.
type ActionRef string

// Behavior is what an interaction does. Execute kinds name an action by
// handle; Drag carries the dragged items.
type Behavior struct {
	Kind    BehaviorKind `json:"kind"`
	Action  ActionRef    `json:"action,omitempty"`
	Payload []string     `json:"payload,omitempty"`
}

// Run returns an Execute behavior for ref.
func Run(ref ActionRef) Behavior { return Behavior{Kind: Execute, Action: ref} }

// RunKeepOpen returns an ExecuteKeepOpen behavior for ref.
func RunKeepOpen(ref ActionRef) Behavior { return Behavior{Kind: ExecuteKeepOpen, Action: ref} }

// Channel is an interaction source.
type Channel int

const (
	LeftClick Channel = iota
	RightClick
	MiddleClick
	BoundaryCross
)

func (c Channel) String() string {
	switch c {
	case LeftClick:
		return "left"
	case RightClick:
		return "right"
	case MiddleClick:
		return "middle"
	case BoundaryCross:
		return "boundary"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// ParseChannel parses a channel name as returned by Channel.String.
func ParseChannel(s string) (Channel, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "left", "":
		return LeftClick, nil
	case "right":
		return RightClick, nil
	case "middle":
		return MiddleClick, nil
	case "boundary":
		return BoundaryCross, nil
	}
	return LeftClick, fmt.Errorf("unknown channel %q", s)
}

// Modifier is a set of pressed modifier keys.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << (iota - 1)
	ModCtrl
	ModAlt
	ModCmd
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

func (m Modifier) String() string {
	if m == ModNone {
		return "none"
	}
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModCmd) {
		parts = append(parts, "cmd")
	}
	return strings.Join(parts, "+")
}

// ParseModifier parses a "+"-separated modifier list such as "ctrl+shift".
// The empty string and "none" parse to ModNone.
func ParseModifier(s string) (Modifier, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return ModNone, nil
	}
	var m Modifier
	for _, part := range strings.Split(s, "+") {
		switch strings.TrimSpace(part) {
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModCtrl
		case "alt", "opt", "option":
			m |= ModAlt
		case "cmd", "meta", "super":
			m |= ModCmd
		default:
			return ModNone, fmt.Errorf("unknown modifier %q", part)
		}
	}
	return m, nil
}

// Override replaces the base behavior when exactly Modifiers are pressed.
type Override struct {
	Modifiers Modifier `json:"modifiers"`
	Behavior  Behavior `json:"behavior"`
}

// Interaction binds one channel: a base behavior plus modifier overrides.
type Interaction struct {
	Base      Behavior   `json:"base"`
	Overrides []Override `json:"overrides,omitempty"`
}

// Resolve picks the override whose modifier set equals mods exactly, or the
// base behavior when none does.
func (i Interaction) Resolve(mods Modifier) Behavior {
	for _, o := range i.Overrides {
		if o.Modifiers == mods {
			return o.Behavior
		}
	}
	return i.Base
}

// With returns a copy of i with an additional override.
func (i Interaction) With(mods Modifier, b Behavior) Interaction {
	overrides := make([]Override, len(i.Overrides), len(i.Overrides)+1)
	copy(overrides, i.Overrides)
	i.Overrides = append(overrides, Override{Modifiers: mods, Behavior: b})
	return i
}

// On returns an interaction with only a base behavior.
func On(b Behavior) Interaction { return Interaction{Base: b} }

// Bindings holds one interaction per channel.
type Bindings struct {
	LeftClick     Interaction `json:"left_click"`
	RightClick    Interaction `json:"right_click"`
	MiddleClick   Interaction `json:"middle_click"`
	BoundaryCross Interaction `json:"boundary_cross"`
}

// For returns the interaction bound to ch.
func (b Bindings) For(ch Channel) Interaction {
	switch ch {
	case LeftClick:
		return b.LeftClick
	case RightClick:
		return b.RightClick
	case MiddleClick:
		return b.MiddleClick
	case BoundaryCross:
		return b.BoundaryCross
	}
	return Interaction{}
}
