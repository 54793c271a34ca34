package decomp

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/observability"
	"github.com/matzehuels/htdecomp/pkg/setcover"
)

// DetKDecomp is the cover-based backtracking search.
//
// A subproblem is a set of edges plus the connector vertices it shares with
// the separator above it. Every separator consists of boundary edges
// covering the connector, extended by one component edge when the cover
// holds none, and must leave components strictly smaller than the
// subproblem.
type DetKDecomp struct {
	Options
}

var _ Algorithm = (*DetKDecomp)(nil)

// Name returns "detk".
func (d *DetKDecomp) Name() string { return NameDetK }

// SetWidth sets the width bound.
func (d *DetKDecomp) SetWidth(k int) { d.K = k }

// FindDecomp returns a hypertree decomposition of h of width at most K, or
// nil if there is none.
func (d *DetKDecomp) FindDecomp(ctx context.Context, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	if err := prepare(ctx, h, d.K); err != nil {
		return nil, err
	}
	t := hypertree.New()
	s := newDetKSearch(t, h, NewRegistry(h, d.K), d.Options)
	root, err := s.run(ctx, h.MCSOrder(d.rng()))
	if err != nil || root == hypertree.None {
		return nil, err
	}
	return finish(t, root), nil
}

// sepMemo records, for one separator, the first edge of every component
// that was decomposed (succ) or proven undecomposable (fail).
type sepMemo struct {
	succ, fail []*hypergraph.Edge
}

func containsAny(members hypergraph.EdgeSet, reps []*hypergraph.Edge) bool {
	return slices.ContainsFunc(reps, members.Has)
}

// detkSearch holds the state of one DetKDecomp run.
type detkSearch struct {
	builder
	h     *hypergraph.Hypergraph
	reg   *Registry
	bip   bool
	hooks observability.SearchHooks
	log   *log.Logger

	tried map[string]*sepMemo
	cuts  map[hypertree.Handle][]*hypergraph.Edge
	frac  *fracBound
	alg   string // reported to hooks; derived from frac when empty
}

func newDetKSearch(t *hypertree.Tree, h *hypergraph.Hypergraph, reg *Registry, o Options) *detkSearch {
	return &detkSearch{
		builder: builder{t: t, k: o.K},
		h:       h,
		reg:     reg,
		bip:     o.BIP,
		hooks:   o.hooks(),
		log:     o.logger(),
		tried:   make(map[string]*sepMemo),
		cuts:    make(map[hypertree.Handle][]*hypergraph.Edge),
	}
}

func (s *detkSearch) name() string {
	if s.alg != "" {
		return s.alg
	}
	if s.frac != nil {
		return NameFrac
	}
	return NameDetK
}

// run decomposes edges without connector and expands every cut node.
func (s *detkSearch) run(ctx context.Context, edges []*hypergraph.Edge) (hypertree.Handle, error) {
	root, err := s.decomp(ctx, edges, hypergraph.NewVertexSet(), 0)
	if err != nil || root == hypertree.None {
		return hypertree.None, err
	}
	if err := s.expand(ctx, root); err != nil {
		return hypertree.None, err
	}
	return root, nil
}

func (s *detkSearch) decomp(ctx context.Context, edges []*hypergraph.Edge, connector hypergraph.VertexSet, level int) (hypertree.Handle, error) {
	if err := ctx.Err(); err != nil {
		return hypertree.None, err
	}
	h, err := s.trivial(edges, connector)
	if err != nil {
		return hypertree.None, err
	}
	if h != hypertree.None {
		if s.frac == nil {
			return h, nil
		}
		ok, err := s.frac.admit(s.t, h)
		if err != nil {
			return hypertree.None, err
		}
		if ok {
			return h, nil
		}
	}

	comp := hypergraph.VerticesOf(edges...)
	inner, bound, compEnd := s.divide(edges, connector)
	cs := newCoverSearch(s.k, bound, compEnd, connector)

	var add []*hypergraph.Edge
	for i, e := range cs.edges {
		if cs.inComp[i] {
			add = append(add, e)
		}
	}
	add = append(add, inner...)
	if len(add) == 0 {
		return hypertree.None, errors.New(errors.ErrCodeInternal, "component of %d edges has no candidate edge", len(edges))
	}

	for n := cs.first(); n >= 0; n = cs.next() {
		sel := cs.selected()
		if weight(sel) > s.k {
			continue
		}
		if cs.selectsInComp() {
			h, err := s.try(ctx, edges, comp, connector, sel, level)
			if err != nil || h != hypertree.None {
				return h, err
			}
			continue
		}
		if weight(sel) >= s.k {
			continue
		}
		for _, a := range add {
			sep := append(slices.Clip(sel), a)
			if weight(sep) > s.k {
				continue
			}
			h, err := s.try(ctx, edges, comp, connector, sep, level)
			if err != nil || h != hypertree.None {
				return h, err
			}
		}
	}
	return hypertree.None, nil
}

// try decomposes below sep and, with BIP, below the subedge separators
// derived from sep that still cover the connector.
func (s *detkSearch) try(ctx context.Context, edges []*hypergraph.Edge, comp, connector hypergraph.VertexSet, sep []*hypergraph.Edge, level int) (hypertree.Handle, error) {
	h, err := s.trySeparator(ctx, edges, comp, connector, sep, level)
	if err != nil || h != hypertree.None || !s.bip {
		return h, err
	}
	f := NewSubedgeSeparators(s.reg, edges, sep)
	for sub := f.Next(); sub != nil; sub = f.Next() {
		if !setcover.Covers(connector, sub) {
			continue
		}
		h, err := s.trySeparator(ctx, edges, comp, connector, sub, level)
		if err != nil || h != hypertree.None {
			return h, err
		}
	}
	return hypertree.None, nil
}

func (s *detkSearch) trySeparator(ctx context.Context, edges []*hypergraph.Edge, comp, connector hypergraph.VertexSet, sep []*hypergraph.Edge, level int) (hypertree.Handle, error) {
	key := hypergraph.EdgesKey(sep)
	memo, ok := s.tried[key]
	if !ok {
		memo = &sepMemo{}
		s.tried[key] = memo
	}

	var cover *fec.Cover
	if s.frac != nil {
		chi := hypergraph.VerticesOf(sep...).Intersect(comp).Union(connector)
		c, ok, err := s.frac.bag(chi)
		if err != nil || !ok {
			return hypertree.None, err
		}
		cover = &c
	}

	s.hooks.OnSeparator(ctx, s.name(), level, len(sep))
	comps := Separate(sep, edges)
	if ok, err := progress(sep, edges, comps); err != nil || !ok {
		return hypertree.None, err
	}

	cut := make([]bool, len(comps))
	for i, c := range comps {
		members := hypergraph.NewEdgeSet(c.Edges...)
		if containsAny(members, memo.fail) {
			s.hooks.OnMemoHit(ctx, s.name(), false)
			return hypertree.None, nil
		}
		cut[i] = containsAny(members, memo.succ)
	}

	subtrees := make([]hypertree.Handle, 0, len(comps))
	for i, c := range comps {
		if cut[i] {
			s.hooks.OnMemoHit(ctx, s.name(), true)
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

	h := s.node(comp, sep, connector)
	s.t.Node(h).Cover = cover
	for _, sub := range subtrees {
		if err := s.t.AddChild(h, sub); err != nil {
			return hypertree.None, err
		}
	}
	return h, nil
}

// divide splits the subproblem against its connector. inner holds the
// component edges without connector vertices; bound holds the component
// edges with connector vertices (the first compEnd entries) followed by the
// edges outside the component that touch the connector. An outside edge is
// dropped when another outside edge contains all of its connector vertices.
func (s *detkSearch) divide(edges []*hypergraph.Edge, connector hypergraph.VertexSet) (inner, bound []*hypergraph.Edge, compEnd int) {
	inComp := hypergraph.NewEdgeSet(edges...)
	marked := hypergraph.NewEdgeSet()
	var innerb, outerb []*hypergraph.Edge
	for _, v := range connector.Sorted() {
		for _, e := range s.h.Incident(v) {
			if marked.Has(e) {
				continue
			}
			marked.Add(e)
			if inComp.Has(e) {
				innerb = append(innerb, e)
			} else {
				outerb = append(outerb, e)
			}
		}
	}
	for _, e := range edges {
		if !marked.Has(e) {
			inner = append(inner, e)
		}
	}

	dropped := make(map[int]bool)
	for _, e := range outerb {
		if dropped[e.ID] {
			continue
		}
		for _, f := range outerb {
			if f != e && !dropped[f.ID] && boundaryWithin(f, e, connector) {
				dropped[f.ID] = true
			}
		}
	}
	bound = innerb
	for _, e := range outerb {
		if !dropped[e.ID] {
			bound = append(bound, e)
		}
	}
	return inner, bound, len(innerb)
}

// boundaryWithin reports whether every connector vertex of f is in e.
func boundaryWithin(f, e *hypergraph.Edge, connector hypergraph.VertexSet) bool {
	for _, v := range f.Vertices {
		if connector.Has(v) && !e.Has(v) {
			return false
		}
	}
	return true
}

// cutNode creates a placeholder for a component already known to be
// decomposable below the same separator.
func (s *detkSearch) cutNode(c Component, label int) hypertree.Handle {
	h := s.t.NewNode(c.Connector.Clone(), hypergraph.NewEdgeSet(c.Edges...))
	s.t.SetCut(h, "", label)
	s.cuts[h] = c.Edges
	return h
}

// expand replaces every cut node below root by a real decomposition of the
// component it stands for.
func (s *detkSearch) expand(ctx context.Context, root hypertree.Handle) error {
	for c := s.t.FindCut(root); c != hypertree.None; c = s.t.FindCut(root) {
		n := s.t.Node(c)
		edges := s.cuts[c]
		s.log.Debug("expanding cut node", "edges", len(edges), "level", n.Label)
		sub, err := s.decomp(ctx, edges, n.Chi.Clone(), n.Label)
		if err != nil {
			return err
		}
		if sub == hypertree.None {
			return errors.New(errors.ErrCodeCutNodeUnsolved, "cut node over {%s} could not be expanded", hypergraph.EdgesKey(edges))
		}
		if err := s.t.Replace(c, sub); err != nil {
			return err
		}
		delete(s.cuts, c)
	}
	return nil
}
