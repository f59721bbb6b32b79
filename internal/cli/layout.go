package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/internal/server"
)

// layoutCommand creates the layout command printing ring geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		open   string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the computed ring geometry",
		Long: `Print the computed ring geometry.

The menu is built from the configured providers, the items named by --open
are expanded or navigated into, and the resulting ring stack is printed with
every ring's slice, radii and per-item angles.

Angles are in degrees, 0 at the top, growing clockwise.`,
		Example: `  piemenu layout
  piemenu layout --open 0:1,1:0 --format yaml
  piemenu layout --providers files --open 0:0 -o rings.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), open, format, output)
		},
	}

	walkFlag(cmd, &open)
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, open, format, output string) error {
	sess, stop, err := c.startSession(ctx)
	if err != nil {
		return err
	}
	defer stop()

	if err := walk(ctx, sess, open); err != nil {
		return fmt.Errorf("open %q: %w", open, err)
	}

	var view server.MenuView
	if err := sess.Do(ctx, func() { view = server.Snapshot(sess.Stack, sess.Controller.Center()) }); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := encode(w, format, view); err != nil {
		return err
	}
	if output != "" {
		printSuccess("Layout written")
		printFile(output)
		printStats(len(view.Rings), countItems(view), view.Navigating)
	}
	return nil
}

func countItems(v server.MenuView) int {
	n := 0
	for _, r := range v.Rings {
		n += len(r.Items)
	}
	return n
}
