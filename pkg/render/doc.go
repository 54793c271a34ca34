// Package render converts rendered diagrams between output formats.
//
// [ToPDF] and [ToPNG] turn SVG into PDF or PNG using the external
// rsvg-convert tool (from librsvg). Hypertree diagrams themselves are
// produced by the [nodelink] subpackage.
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/htdecomp/pkg/render/nodelink
package render
