package decomp

import (
	"context"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// fracEpsilon absorbs LP rounding when comparing cover weights.
const fracEpsilon = 1e-9

// FracImproveDecomp is DetKDecomp restricted to bags whose fractional edge
// cover weighs at most K - MinImprovement. Every node of a result carries
// its cover, so the tree reports its fractional width.
type FracImproveDecomp struct {
	Options

	best float64
}

var _ Algorithm = (*FracImproveDecomp)(nil)

// Name returns "frac".
func (f *FracImproveDecomp) Name() string { return NameFrac }

// SetWidth sets the width bound.
func (f *FracImproveDecomp) SetWidth(k int) { f.K = k }

// FractionalWidth returns the fractional width of the last decomposition
// found, or 0 if there was none.
func (f *FracImproveDecomp) FractionalWidth() float64 { return f.best }

// FindDecomp returns a decomposition of h of width at most K whose bags all
// have fractional cover weight at most K - MinImprovement, or nil.
func (f *FracImproveDecomp) FindDecomp(ctx context.Context, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	f.best = 0
	if err := prepare(ctx, h, f.K); err != nil {
		return nil, err
	}
	threshold := float64(f.K) - f.MinImprovement
	if f.MinImprovement < 0 || threshold <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"minimum improvement %g must lie in [0, %d)", f.MinImprovement, f.K)
	}

	t := hypertree.New()
	s := newDetKSearch(t, h, NewRegistry(h, f.K), f.Options)
	s.frac = &fracBound{h: h, provider: f.provider(), threshold: threshold}
	root, err := s.run(ctx, h.MCSOrder(f.rng()))
	if err != nil || root == hypertree.None {
		return nil, err
	}
	out := finish(t, root)
	f.best, _ = out.FractionalWidth()
	return out, nil
}

// fracBound rejects bags whose fractional cover is too heavy.
type fracBound struct {
	h         *hypergraph.Hypergraph
	provider  fec.Provider
	threshold float64
}

// bag computes the cover of chi over the edges of h touching it and reports
// whether its weight is within the threshold.
func (f *fracBound) bag(chi hypergraph.VertexSet) (fec.Cover, bool, error) {
	c, err := f.provider.Compute(chi, fec.Incident(f.h, chi))
	if err != nil {
		return fec.Cover{}, false, err
	}
	return c, c.Weight <= f.threshold+fracEpsilon, nil
}

// admit checks every node of the subtree at root and attaches the covers
// if all of them pass.
func (f *fracBound) admit(t *hypertree.Tree, root hypertree.Handle) (bool, error) {
	nodes := t.PreOrder(root)
	covers := make([]fec.Cover, len(nodes))
	for i, h := range nodes {
		c, ok, err := f.bag(t.Node(h).Chi)
		if err != nil || !ok {
			return false, err
		}
		covers[i] = c
	}
	for i, h := range nodes {
		t.Node(h).Cover = &covers[i]
	}
	return true, nil
}
