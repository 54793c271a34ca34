package decomp

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/observability"
)

// RankFHDecomp searches for fractional hypertree decompositions using
// vertex separators.
//
// A bag is the connector of the subproblem plus one more vertex, accepted
// when its fractional edge cover weighs at most K. Edges inside the bag are
// done; the rest falls apart into components that are decomposed below it.
// A bag of weight K covers at most K times the largest edge size vertices,
// which bounds the connector and so the recursion depth.
//
// Every node carries its cover and lambda holds the edges with non-zero
// weight, so the result meets the first three hypertree conditions but in
// general not the special condition. Width bounds the fractional width; the
// number of lambda edges per node is not bounded.
type RankFHDecomp struct {
	Options

	best float64
}

var _ Algorithm = (*RankFHDecomp)(nil)

// Name returns "rankfh".
func (r *RankFHDecomp) Name() string { return NameRankFH }

// SetWidth sets the fractional width bound.
func (r *RankFHDecomp) SetWidth(k int) { r.K = k }

// FractionalWidth returns the fractional width of the last decomposition
// found, or 0 if there was none.
func (r *RankFHDecomp) FractionalWidth() float64 { return r.best }

// FindDecomp returns a fractional hypertree decomposition of h of
// fractional width at most K, or nil.
func (r *RankFHDecomp) FindDecomp(ctx context.Context, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	r.best = 0
	if err := prepare(ctx, h, r.K); err != nil {
		return nil, err
	}
	rank := 0
	for _, e := range h.Edges() {
		rank = max(rank, len(e.Vertices))
	}

	s := &rankSearch{
		t:        hypertree.New(),
		h:        h,
		k:        float64(r.K),
		rank:     rank,
		provider: r.provider(),
		hooks:    r.hooks(),
		log:      r.logger(),
		tried:    make(map[string]*sepMemo),
		cuts:     make(map[hypertree.Handle]Component),
	}
	root, err := s.decomp(ctx, h.MCSOrder(r.rng()), hypergraph.NewVertexSet(), 0)
	if err != nil || root == hypertree.None {
		return nil, err
	}
	if err := s.expand(ctx, root); err != nil {
		return nil, err
	}
	out := s.t.Extract(root)
	r.best, _ = out.FractionalWidth()
	return out, nil
}

// rankSearch holds the state of one RankFHDecomp run.
type rankSearch struct {
	t        *hypertree.Tree
	h        *hypergraph.Hypergraph
	k        float64
	rank     int
	provider fec.Provider
	hooks    observability.SearchHooks
	log      *log.Logger

	// tried is keyed by bag and subproblem edges, which together fix the
	// components and their connectors.
	tried map[string]*sepMemo
	cuts  map[hypertree.Handle]Component
}

func (s *rankSearch) decomp(ctx context.Context, edges []*hypergraph.Edge, connector hypergraph.VertexSet, level int) (hypertree.Handle, error) {
	if err := ctx.Err(); err != nil {
		return hypertree.None, err
	}
	if float64(connector.Len()+1) > s.k*float64(s.rank) {
		return hypertree.None, nil
	}

	for _, v := range hypergraph.VerticesOf(edges...).Minus(connector).Sorted() {
		bag := connector.Clone()
		bag.Add(v)
		cover, err := s.provider.Compute(bag, fec.Incident(s.h, bag))
		if err != nil {
			return hypertree.None, err
		}
		if cover.Weight > s.k+fracEpsilon {
			continue
		}
		h, err := s.tryBag(ctx, edges, bag, cover, level)
		if err != nil || h != hypertree.None {
			return h, err
		}
	}
	return hypertree.None, nil
}

func (s *rankSearch) tryBag(ctx context.Context, edges []*hypergraph.Edge, bag hypergraph.VertexSet, cover fec.Cover, level int) (hypertree.Handle, error) {
	key := bag.Key() + "|" + hypergraph.EdgesKey(edges)
	memo, ok := s.tried[key]
	if !ok {
		memo = &sepMemo{}
		s.tried[key] = memo
	}
	s.hooks.OnSeparator(ctx, NameRankFH, level, bag.Len())

	comps := SeparateBag(bag, edges)
	cut := make([]bool, len(comps))
	for i, c := range comps {
		members := hypergraph.NewEdgeSet(c.Edges...)
		if containsAny(members, memo.fail) {
			s.hooks.OnMemoHit(ctx, NameRankFH, false)
			return hypertree.None, nil
		}
		cut[i] = containsAny(members, memo.succ)
	}

	subtrees := make([]hypertree.Handle, 0, len(comps))
	for i, c := range comps {
		if cut[i] {
			s.hooks.OnMemoHit(ctx, NameRankFH, true)
			subtrees = append(subtrees, s.cutNode(c, level+1))
			continue
		}
		sub, err := s.decomp(ctx, c.Edges, c.Connector, level+1)
		if err != nil {
			return hypertree.None, err
		}
		if sub == hypertree.None {
			memo.fail = append(memo.fail, c.Edges[0])
			return hypertree.None, nil
		}
		memo.succ = append(memo.succ, c.Edges[0])
		subtrees = append(subtrees, sub)
	}

	h := s.t.NewNode(bag.Clone(), hypergraph.NewEdgeSet(cover.Edges...))
	s.t.Node(h).Cover = &cover
	for _, sub := range subtrees {
		if err := s.t.AddChild(h, sub); err != nil {
			return hypertree.None, err
		}
	}
	return h, nil
}

// cutNode creates a placeholder for a component already known to be
// decomposable below the same bag.
func (s *rankSearch) cutNode(c Component, label int) hypertree.Handle {
	h := s.t.NewNode(c.Connector.Clone(), hypergraph.NewEdgeSet(c.Edges...))
	s.t.SetCut(h, "", label)
	s.cuts[h] = c
	return h
}

// expand replaces every cut node below root by a decomposition of its
// component.
func (s *rankSearch) expand(ctx context.Context, root hypertree.Handle) error {
	for c := s.t.FindCut(root); c != hypertree.None; c = s.t.FindCut(root) {
		comp := s.cuts[c]
		s.log.Debug("expanding cut node", "edges", len(comp.Edges), "level", s.t.Node(c).Label)
		sub, err := s.decomp(ctx, comp.Edges, comp.Connector, s.t.Node(c).Label)
		if err != nil {
			return err
		}
		if sub == hypertree.None {
			return errors.New(errors.ErrCodeCutNodeUnsolved, "cut node over {%s} could not be expanded", hypergraph.EdgesKey(comp.Edges))
		}
		if err := s.t.Replace(c, sub); err != nil {
			return err
		}
		delete(s.cuts, c)
	}
	return nil
}
