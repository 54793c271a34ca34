package decomp

import (
	"context"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// GlobalBIPDecomp is DetKDecomp over the input extended by the subedges of
// every edge, computed once before the search. Subedges in the result are
// replaced by the edges they were cut from. The BIP option is ignored.
type GlobalBIPDecomp struct {
	Options
}

var _ Algorithm = (*GlobalBIPDecomp)(nil)

// Name returns "globalbip".
func (g *GlobalBIPDecomp) Name() string { return NameGlobalBIP }

// SetWidth sets the width bound.
func (g *GlobalBIPDecomp) SetWidth(k int) { g.K = k }

// FindDecomp returns a hypertree decomposition of h of width at most K, or
// nil if there is none.
func (g *GlobalBIPDecomp) FindDecomp(ctx context.Context, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	if err := prepare(ctx, h, g.K); err != nil {
		return nil, err
	}
	reg := NewRegistry(h, g.K)
	subs := hypergraph.NewEdgeSet()
	for _, e := range h.Edges() {
		subs.Add(reg.Subedges(e)...)
	}
	ext, err := h.Subgraph(h.Edges(), subs.Sorted()...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "extend hypergraph by subedges")
	}
	g.logger().Debug("added subedges", "edges", h.EdgeCount(), "subedges", subs.Len())

	opts := g.Options
	opts.BIP = false
	t := hypertree.New()
	s := newDetKSearch(t, ext, reg, opts)
	s.alg = NameGlobalBIP
	root, err := s.run(ctx, ext.MCSOrder(g.rng()))
	if err != nil || root == hypertree.None {
		return nil, err
	}
	return finish(t, root), nil
}
