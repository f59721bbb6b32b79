// Package tree renders menu content as Graphviz node-link diagrams.
//
// [ProviderDOT] draws provider trees: branches point at their children,
// dynamic nodes whose children are not loaded yet are dashed and hidden
// nodes are greyed out. [StackDOT] draws the open ring stack, one cluster
// per ring, with the selected item of each ring pointing at the ring it
// opened.
//
//	dot := tree.ProviderDOT(p.ProvideFunctions(ctx), tree.Options{Detailed: true})
//	svg, err := tree.RenderSVG(ctx, dot)
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
package tree
