package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/render"
)

// Options configures hypertree diagram rendering.
type Options struct {
	// Detailed adds the node index, the chi size and the fractional cover
	// weight (when known) to every label.
	Detailed bool
}

// ToDOT converts a hypertree to Graphviz DOT format. Each node is a box
// labeled with its lambda set above its chi set, names sorted by id. The
// resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or
// [RenderPNG].
//
// Cut placeholders are rendered with dashed outlines and grey fill.
func ToDOT(t *hypertree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := t.Nodes()
	ids := make(map[hypertree.Handle]int, len(nodes))
	for i, h := range nodes {
		ids[h] = i
		n := t.Node(h)
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(fmtAttrs(n, fmtLabel(i, n, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	for _, h := range nodes {
		if p := t.Parent(h); p != hypertree.None {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", ids[p], ids[h])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(i int, n *hypertree.Node, detailed bool) string {
	label := "{" + strings.Join(hypergraph.Names(n.Lambda), ", ") + "}\n" +
		"{" + strings.Join(hypergraph.Names(n.Chi), ", ") + "}"
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("node: %d", i), fmt.Sprintf("|chi|: %d", n.Chi.Len())}
	if n.Cover != nil {
		parts = append(parts, fmt.Sprintf("cover: %.3g", n.Cover.Weight))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *hypertree.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Cut {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
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

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and scales with its container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
