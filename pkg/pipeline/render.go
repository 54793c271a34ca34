package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/render/nodelink"
)

// Render generates output artifacts of t in the requested formats.
func Render(ctx context.Context, t *hypertree.Tree, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := opts.hooks()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := renderFormats(ctx, t, opts.Formats, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, t *hypertree.Tree, formats []string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	var dot string
	for _, format := range formats {
		if format != FormatJSON && dot == "" {
			dot = nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed})
		}

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = graph.MarshalTree(t)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		default:
			return nil, ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
