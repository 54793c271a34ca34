package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/matzehuels/htdecomp/pkg/decomp"
	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// Decompose searches for a decomposition of h of width at most opts.Width
// and applies the requested reductions. It returns a nil tree when none
// exists. With Auto it keeps lowering the bound below the width of the last
// result; attempts counts the searches run.
func Decompose(ctx context.Context, h *hypergraph.Hypergraph, opts Options) (t *hypertree.Tree, attempts int, err error) {
	if err := opts.ValidateForDecompose(); err != nil {
		return nil, 0, err
	}
	for k := opts.Width; k >= 1; {
		attempts++
		next, err := decomposeAt(ctx, h, opts, k)
		if err != nil {
			return nil, attempts, err
		}
		if next == nil {
			break
		}
		t = next
		if !opts.Auto {
			break
		}
		opts.Logger.Info("found decomposition", "bound", k, "width", t.Width())
		k = nextBound(t, opts, k)
	}
	if t == nil {
		return nil, attempts, nil
	}
	if err := postprocess(t, h, opts); err != nil {
		return nil, attempts, err
	}
	return t, attempts, nil
}

// nextBound returns the width bound of the Auto attempt after a result t
// found at bound, or 0 when no narrower bound is admissible.
func nextBound(t *hypertree.Tree, opts Options, bound int) int {
	k := min(t.Width(), bound) - 1
	switch opts.Algorithm {
	case decomp.NameFrac:
		if float64(k) <= opts.MinImprovement {
			return 0
		}
	case decomp.NameRankFH:
		// Only the fractional width is bounded.
		if fw, ok := t.FractionalWidth(); ok {
			k = min(int(math.Ceil(fw-fracTolerance)), bound) - 1
		}
	}
	return k
}

func decomposeAt(ctx context.Context, h *hypergraph.Hypergraph, opts Options, k int) (*hypertree.Tree, error) {
	hooks := opts.hooks()
	hooks.OnDecomposeStart(ctx, opts.Algorithm, k, h.EdgeCount())
	start := time.Now()

	alg, err := decomp.New(opts.Algorithm, opts.DecompOptions(k))
	if err != nil {
		hooks.OnDecomposeComplete(ctx, opts.Algorithm, -1, time.Since(start), err)
		return nil, err
	}
	t, err := alg.FindDecomp(ctx, h)
	width := -1
	if t != nil {
		width = t.Width()
	}
	hooks.OnDecomposeComplete(ctx, opts.Algorithm, width, time.Since(start), err)
	opts.Logger.Debug("search finished", "algorithm", opts.Algorithm, "bound", k, "width", width, "duration", time.Since(start))
	return t, err
}

// postprocess applies the optional reductions. Shrinking merges bags, so
// fractional covers dropped on the way are computed again.
func postprocess(t *hypertree.Tree, h *hypergraph.Hypergraph, opts Options) error {
	if opts.Shrink {
		before := t.Size()
		t.Shrink(false)
		opts.Logger.Debug("shrunk tree", "nodes_before", before, "nodes_after", t.Size())
	}
	if opts.Reduce {
		rng := opts.rng()
		if err := t.ReduceLambda(rng); err != nil {
			return err
		}
		if err := t.ElimCovEdges(rng); err != nil {
			return err
		}
	}
	if fractional(opts.Algorithm) {
		return refreshCovers(t, h)
	}
	return nil
}

// fracTolerance absorbs LP rounding when a fractional width is turned into
// an integer bound.
const fracTolerance = 1e-9

// fractional reports whether the algorithm bounds fractional cover weights,
// so its results carry a cover per node.
func fractional(algorithm string) bool {
	return algorithm == decomp.NameFrac || algorithm == decomp.NameRankFH
}

func refreshCovers(t *hypertree.Tree, h *hypergraph.Hypergraph) error {
	var p fec.LPProvider
	for _, x := range t.Nodes() {
		n := t.Node(x)
		if n.Cover != nil {
			continue
		}
		c, err := p.Compute(n.Chi, fec.Incident(h, n.Chi))
		if err != nil {
			return err
		}
		n.Cover = &c
	}
	return nil
}

// Verify checks the four hypertree conditions of t against h.
func Verify(t *hypertree.Tree, h *hypergraph.Hypergraph, strict bool) hypertree.Report {
	return t.Verify(h, strict)
}
