package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/menu"
	"github.com/matzehuels/piemenu/pkg/node"
)

// hitResult is what the hit command reports for a point.
type hitResult struct {
	Point   hittest.Point `json:"point" yaml:"point"`
	Angle   float64       `json:"angle" yaml:"angle"`
	Dist    float64       `json:"distance" yaml:"distance"`
	Hit     *hitItem      `json:"hit,omitempty" yaml:"hit,omitempty"`
	Outcome *menu.Outcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
}

type hitItem struct {
	Level int    `json:"level" yaml:"level"`
	Index int    `json:"index" yaml:"index"`
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
}

// hitCommand creates the hit command resolving a screen point to an item.
func (c *CLI) hitCommand() *cobra.Command {
	var (
		open   string
		format string
		click  string
		mods   string
	)

	cmd := &cobra.Command{
		Use:   "hit <x> <y>",
		Short: "Resolve a screen point to a menu item",
		Long: `Resolve a screen point to a menu item.

The point is given in screen coordinates with y growing downwards. The menu
center comes from the config file. With --click the point is also clicked,
which may open rings or run actions (use --dry-run to only log them).`,
		Example: `  piemenu hit 300 200
  piemenu hit 380 300 --open 0:1
  piemenu hit 300 200 --click left --mods shift --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			return c.runHit(cmd.Context(), pos, open, click, mods, format)
		},
	}

	walkFlag(cmd, &open)
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml (default: human readable)")
	cmd.Flags().StringVar(&click, "click", "", "click the point with a button: left, right, middle")
	cmd.Flags().StringVar(&mods, "mods", "", `modifiers held during the click, e.g. "ctrl+shift"`)

	return cmd
}

func parsePoint(xs, ys string) (hittest.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return hittest.Point{}, fmt.Errorf("invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return hittest.Point{}, fmt.Errorf("invalid y %q", ys)
	}
	return hittest.Point{X: x, Y: y}, nil
}

func (c *CLI) runHit(ctx context.Context, pos hittest.Point, open, click, mods, format string) error {
	var (
		ch  node.Channel
		mod node.Modifier
		err error
	)
	if click != "" {
		if ch, err = node.ParseChannel(click); err != nil {
			return err
		}
		if mod, err = node.ParseModifier(mods); err != nil {
			return err
		}
	}

	sess, stop, err := c.startSession(ctx)
	if err != nil {
		return err
	}
	defer stop()

	if err := walk(ctx, sess, open); err != nil {
		return fmt.Errorf("open %q: %w", open, err)
	}

	res := hitResult{Point: pos}
	var clickErr error
	err = sess.Do(ctx, func() {
		center := sess.Controller.Center()
		res.Angle, res.Dist = hittest.Polar(pos, center)
		if hit, ok := sess.Stack.ItemAt(pos, center); ok {
			res.Hit = &hitItem{Level: hit.Level, Index: hit.Index, ID: hit.Node.ID, Name: hit.Node.Name}
		}
		if click != "" {
			out, err := sess.Controller.Click(ctx, ch, pos, mod)
			out.Hit = nil
			res.Outcome, clickErr = &out, err
		}
	})
	if err != nil {
		return err
	}

	if format != "" {
		if err := encode(os.Stdout, format, res); err != nil {
			return err
		}
		return clickErr
	}

	printKeyValue("Point", fmt.Sprintf("(%g, %g)", pos.X, pos.Y))
	printKeyValue("Angle", fmt.Sprintf("%.1f°", res.Angle))
	printKeyValue("Distance", fmt.Sprintf("%.1f", res.Dist))
	if res.Hit == nil {
		printInfo("No item at this point")
	} else {
		printKeyValue("Ring", strconv.Itoa(res.Hit.Level))
		printKeyValue("Index", strconv.Itoa(res.Hit.Index))
		printKeyValue("Item", StyleHighlight.Render(res.Hit.Name)+" "+StyleDim.Render(res.Hit.ID))
	}
	if out := res.Outcome; out != nil {
		switch {
		case out.Executed != "":
			printSuccess("Ran %s", out.Executed)
		case len(out.Drag) > 0:
			printSuccess("Drag %v", out.Drag)
		}
		if out.Dismiss {
			printDetail("menu dismissed")
		}
	}
	return clickErr
}
