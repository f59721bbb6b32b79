package tree

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/piemenu/pkg/layout"
	"github.com/matzehuels/piemenu/pkg/node"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds kind, provider and metadata to node labels. When false
	// only the name is shown.
	Detailed bool

	// Angles adds each ring item's angular range in StackDOT.
	Angles bool
}

func header(buf *bytes.Buffer, rankdir string) {
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

// ProviderDOT converts node trees to DOT. Every node gets a graph ID from
// its position, so equal node IDs in different branches stay distinct.
func ProviderDOT(roots []node.Node, opts Options) string {
	var buf bytes.Buffer
	header(&buf, "LR")
	var edges []string
	var walk func(prefix string, nodes []node.Node)
	walk = func(prefix string, nodes []node.Node) {
		for i, n := range nodes {
			id := prefix + strconv.Itoa(i)
			fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
			if prefix != "n" {
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", strings.TrimSuffix(prefix, "."), id))
			}
			walk(id+".", n.Children)
		}
	}
	walk("n", roots)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// StackDOT converts computed ring configurations to DOT.
func StackDOT(configs []layout.RingConfig, opts Options) string {
	var buf bytes.Buffer
	header(&buf, "TB")

	for _, rc := range configs {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", rc.Level)
		fmt.Fprintf(&buf, "    label=%q;\n", ringLabel(rc))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for i, n := range rc.Nodes {
			label := fmtLabel(n, opts.Detailed)
			if opts.Angles {
				start, end := rc.Slice.ItemRange(i)
				label += fmt.Sprintf("\n%.1f..%.1f°", start, end)
			}
			attrs := fmtAttrs(n, label)
			if i == rc.Selected {
				attrs = append(attrs, "penwidth=3")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", itemID(rc.Level, i), strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for i := 1; i < len(configs); i++ {
		parent := configs[i-1]
		if parent.Selected < 0 || len(configs[i].Nodes) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [lhead=cluster_%d];\n", itemID(parent.Level, parent.Selected), itemID(configs[i].Level, 0), configs[i].Level)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func itemID(level, index int) string { return fmt.Sprintf("r%d_%d", level, index) }

func ringLabel(rc layout.RingConfig) string {
	shape := "partial"
	if rc.Slice.FullCircle {
		shape = "full"
	}
	label := fmt.Sprintf("ring %d (%s, r=%.0f..%.0f)", rc.Level, shape, rc.StartRadius, rc.EndRadius())
	if rc.Collapsed {
		label += " collapsed"
	}
	return label
}

func fmtLabel(n node.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{string(n.Kind)}
	if n.ProviderID != "" {
		parts = append(parts, "provider: "+n.ProviderID)
	}
	for _, k := range slices.Sorted(maps.Keys(n.Metadata)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Metadata[k]))
	}
	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n node.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Hidden:
		attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=lightgrey", "fontcolor=grey40")
	case n.NeedsDynamicLoading && len(n.Children) == 0:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case n.IsBranch():
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
