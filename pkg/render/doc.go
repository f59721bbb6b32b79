// Package render exports menu state as images.
//
// The [tree] subpackage turns provider trees and ring stacks into Graphviz
// diagrams. [ToPDF] and [ToPNG] convert the resulting SVG with the external
// rsvg-convert tool (from librsvg).
//
//	dot := tree.StackDOT(stack.Configurations(), tree.Options{})
//	svg, err := tree.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(svg, 2.0)
//
// [tree]: github.com/matzehuels/piemenu/pkg/render/tree
package render
