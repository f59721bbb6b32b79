package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/layout"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/provider"
	"github.com/matzehuels/piemenu/pkg/render"
	"github.com/matzehuels/piemenu/pkg/render/tree"
)

// Diagram output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
	formatPDF = "pdf"
)

// validTreeFormats is the set of supported diagram formats.
var validTreeFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPNG: true, formatPDF: true}

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	output   string
	format   string
	stack    bool
	open     string
	provider string
	detailed bool
	angles   bool
	scale    float64
}

// treeCommand creates the tree command drawing provider trees or the open
// ring stack with Graphviz.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{format: formatDOT, scale: 2.0}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Draw the provider trees or the open rings as a diagram",
		Long: `Draw the provider trees or the open rings as a diagram.

By default every enabled provider's root tree is drawn. With --stack the
currently open rings are drawn instead, one cluster per ring, after opening
the items named by --open.

Folder contents are loaded lazily and only appear once a folder was opened.`,
		Example: `  piemenu tree -f svg -o providers.svg
  piemenu tree --provider system --detailed
  piemenu tree --stack --open 0:0 --angles -f png -o rings.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validTreeFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'png' or 'pdf')", opts.format)
			}
			return c.runTree(cmd.Context(), &opts)
		},
	}

	walkFlag(cmd, &opts.open)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for dot and svg)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&opts.stack, "stack", false, "draw the open rings instead of the provider trees")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "only draw this provider's tree")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show kind, provider and metadata")
	cmd.Flags().BoolVar(&opts.angles, "angles", false, "show item angles (with --stack)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, opts *treeOpts) error {
	if opts.output == "" && (opts.format == formatPNG || opts.format == formatPDF) {
		return fmt.Errorf("%s output needs --output", opts.format)
	}

	sess, stop, err := c.startSession(ctx)
	if err != nil {
		return err
	}
	defer stop()

	dopts := tree.Options{Detailed: opts.detailed, Angles: opts.angles}
	var dot string
	if opts.stack {
		if err := walk(ctx, sess, opts.open); err != nil {
			return fmt.Errorf("open %q: %w", opts.open, err)
		}
		var configs []layout.RingConfig
		if err := sess.Do(ctx, func() { configs = sess.Stack.Configurations() }); err != nil {
			return err
		}
		dot = tree.StackDOT(configs, dopts)
	} else {
		roots, err := providerRoots(ctx, sess.Providers.All(), opts.provider)
		if err != nil {
			return err
		}
		dot = tree.ProviderDOT(roots, dopts)
	}
	c.Logger.Debug("generated DOT", "bytes", len(dot))

	data, err := renderDiagram(ctx, dot, opts.format, opts.scale)
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	path := outputPath(opts.output, opts.format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printSuccess("Diagram written")
	printFile(path)
	return nil
}

// providerRoots collects the root trees of ps, restricted to only when set.
func providerRoots(ctx context.Context, ps []provider.Provider, only string) ([]node.Node, error) {
	var roots []node.Node
	found := only == ""
	for _, p := range ps {
		if only != "" && p.ID() != only {
			continue
		}
		found = true
		roots = append(roots, p.ProvideFunctions(ctx)...)
	}
	if !found {
		return nil, fmt.Errorf("provider %q is not enabled", only)
	}
	return roots, nil
}

// renderDiagram turns DOT into the requested format. SVG rendering runs
// behind a spinner since Graphviz can take a moment on large trees.
func renderDiagram(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	if format == formatDOT {
		return []byte(dot), nil
	}

	sp := startSpinner(ctx, os.Stderr, "Rendering diagram")
	svg, err := tree.RenderSVG(ctx, dot)
	sp.stop()
	if err != nil {
		return nil, err
	}

	switch format {
	case formatSVG:
		return svg, nil
	case formatPNG:
		return render.ToPNG(svg, scale)
	case formatPDF:
		return render.ToPDF(svg)
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// outputPath appends the format's extension to base unless it already has
// one.
func outputPath(base, format string) string {
	if validTreeFormats[strings.TrimPrefix(filepath.Ext(base), ".")] {
		return base
	}
	return base + "." + format
}
