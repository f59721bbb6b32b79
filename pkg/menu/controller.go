package menu

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/node"
)

// Outcome reports what a pointer event did beyond changing the stack.
type Outcome struct {
	// Dismiss is set when the menu should close. The stack has already
	// been reset.
	Dismiss bool `json:"dismiss"`

	// Executed is the action that ran, if any.
	Executed node.ActionRef `json:"executed,omitempty"`

	// Drag carries the payload of a drag that should start.
	Drag []string `json:"drag,omitempty"`

	// Hit is the item under the pointer.
	Hit *hittest.Hit `json:"hit,omitempty"`
}

// Controller translates pointer input into stack transitions and runs the
// resulting actions. Like the Stack, it must be driven from the owner
// context.
type Controller struct {
	stack   *Stack
	actions *node.ActionRegistry
	center  hittest.Point
	logger  *log.Logger
}

// NewController returns a controller for a menu centered at center.
func NewController(stack *Stack, actions *node.ActionRegistry, center hittest.Point, logger *log.Logger) *Controller {
	if actions == nil {
		actions = node.NewActionRegistry()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Controller{stack: stack, actions: actions, center: center, logger: logger}
}

// Stack returns the controlled stack.
func (c *Controller) Stack() *Stack { return c.stack }

// Center returns the menu center.
func (c *Controller) Center() hittest.Point { return c.center }

// SetCenter moves the menu center, e.g. after a resize.
func (c *Controller) SetCenter(center hittest.Point) { c.center = center }

// Move tracks the pointer. Hovering back into a parent ring closes the
// rings above it that were opened by hovering; crossing the outer edge of
// the active ring fires the hovered item's boundary-cross behavior.
func (c *Controller) Move(ctx context.Context, pos hittest.Point, mods node.Modifier) (Outcome, error) {
	s := c.stack
	hit, ok := s.ItemAt(pos, c.center)
	if !ok {
		s.SetHovered(s.ActiveLevel(), None)
		return Outcome{}, nil
	}

	if hit.Level < s.ActiveLevel() && !c.openedByClickAbove(hit.Level) {
		s.CollapseToRing(hit.Level)
	}
	s.SetHovered(hit.Level, hit.Index)
	out := Outcome{Hit: &hit}

	if !c.beyond(hit.Level, pos) {
		return out, nil
	}
	b := hit.Node.Resolve(node.BoundaryCross, mods)
	return c.apply(ctx, hit, b, false, out)
}

// Click resolves the channel's behavior for the item under pos. A click
// that hits nothing dismisses the menu.
func (c *Controller) Click(ctx context.Context, ch node.Channel, pos hittest.Point, mods node.Modifier) (Outcome, error) {
	hit, ok := c.stack.ItemAt(pos, c.center)
	if !ok {
		c.stack.Reset()
		return Outcome{Dismiss: true}, nil
	}
	b := hit.Node.Resolve(ch, mods)
	return c.apply(ctx, hit, b, true, Outcome{Hit: &hit})
}

// Activate behaves like a left click on the item at (level, index). It
// serves keyboard and API driven front ends.
func (c *Controller) Activate(ctx context.Context, level, index int, mods node.Modifier) (Outcome, error) {
	n, err := c.stack.nodeAt(level, index)
	if err != nil {
		c.stack.reject("activate", level, err)
		return Outcome{}, nil
	}
	hit := hittest.Hit{Level: level, Index: index, Node: n}
	return c.apply(ctx, hit, n.Resolve(node.LeftClick, mods), true, Outcome{Hit: &hit})
}

// Dismiss closes the menu.
func (c *Controller) Dismiss() Outcome {
	c.stack.Reset()
	return Outcome{Dismiss: true}
}

func (c *Controller) apply(ctx context.Context, hit hittest.Hit, b node.Behavior, byClick bool, out Outcome) (Outcome, error) {
	s := c.stack
	switch b.Kind {
	case node.DoNothing:
	case node.Expand:
		if r, ok := s.Ring(hit.Level); ok && r.Selected == hit.Index && s.Len() > hit.Level+1 {
			// Already open.
			break
		}
		if hit.Node.NeedsDynamicLoading && len(hit.Node.Children) == 0 {
			s.NavigateIntoFolder(ctx, hit.Level, hit.Index)
			break
		}
		s.ExpandCategory(hit.Level, hit.Index, byClick)
	case node.NavigateInto:
		s.NavigateIntoFolder(ctx, hit.Level, hit.Index)
	case node.Execute, node.ExecuteKeepOpen:
		out.Executed = b.Action
		err := c.actions.Run(ctx, b.Action, hit.Node)
		if err != nil {
			c.logger.Warn("action failed", "action", b.Action, "node", hit.Node.ID, "err", err)
		}
		if b.Kind == node.Execute {
			s.Reset()
			out.Dismiss = true
		}
		return out, err
	case node.Drag:
		out.Drag = append([]string(nil), b.Payload...)
		s.Reset()
		out.Dismiss = true
	}
	return out, nil
}

// openedByClickAbove reports whether any ring above level was opened by a
// click and must survive the pointer moving back down.
func (c *Controller) openedByClickAbove(level int) bool {
	for _, r := range c.stack.Rings()[level+1:] {
		if r.OpenedByClick {
			return true
		}
	}
	return false
}

// beyond reports whether pos lies past the outer edge of the active ring
// at level.
func (c *Controller) beyond(level int, pos hittest.Point) bool {
	if level != c.stack.ActiveLevel() {
		return false
	}
	configs := c.stack.Configurations()
	if level >= len(configs) {
		return false
	}
	_, dist := hittest.Polar(pos, c.center)
	return dist > configs[level].EndRadius()
}
