package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Parse reads the input hypergraph. Inline Input wins over the Source path.
func Parse(ctx context.Context, opts Options) (*hypergraph.Hypergraph, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	source := opts.Source
	if opts.Input != "" {
		source = "<inline>"
	}

	hooks := opts.hooks()
	hooks.OnParseStart(ctx, opts.Format, source)
	start := time.Now()
	h, err := parse(opts)
	edges := 0
	if h != nil {
		edges = h.EdgeCount()
	}
	hooks.OnParseComplete(ctx, opts.Format, source, edges, time.Since(start), err)
	return h, err
}

func parse(opts Options) (*hypergraph.Hypergraph, error) {
	if opts.Input != "" {
		return graph.Load(strings.NewReader(opts.Input), opts.Format)
	}
	f, err := os.Open(opts.Source)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", opts.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return graph.Load(f, opts.Format)
}

// inputWarnings lists properties of h that the search tolerates but a user
// likely wants to know about.
func inputWarnings(h *hypergraph.Hypergraph) []string {
	var out []string
	if !h.IsConnected() {
		out = append(out, fmt.Sprintf("hypergraph is not connected (%d components)", len(h.Components())))
	}
	return out
}
