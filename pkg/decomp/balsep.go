package decomp

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/observability"
)

// BalKDecomp is the balanced-separator search.
//
// A separator of k edges is accepted when it splits the subproblem into at
// least two components of at most half its size each. Every component is
// decomposed as a hypergraph of its own, extended by a superedge over the
// separator vertices it touches; the subtree is later hung below the
// separator node at the node holding that superedge. Below MaxRecursion
// levels the search falls back to DetKDecomp with BIP. The fallback counts
// superedges at their full weight, so a bounded recursion depth can miss
// decompositions that the unbounded search or DetKDecomp alone would find.
type BalKDecomp struct {
	Options
}

var _ Algorithm = (*BalKDecomp)(nil)

// Name returns "balsep".
func (b *BalKDecomp) Name() string { return NameBalK }

// SetWidth sets the width bound.
func (b *BalKDecomp) SetWidth(k int) { b.K = k }

// FindDecomp returns a hypertree decomposition of h of width at most K, or
// nil if none was found.
func (b *BalKDecomp) FindDecomp(ctx context.Context, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	if err := prepare(ctx, h, b.K); err != nil {
		return nil, err
	}
	s := &balSearch{
		builder: builder{t: hypertree.New(), k: b.K},
		opts:    b.Options,
		reg:     NewRegistry(h, b.K),
		rng:     b.rng(),
		hooks:   b.hooks(),
		log:     b.logger(),
		failed:  make(map[string]bool),
		solved:  make(map[string]*hypertree.Tree),
	}
	root, err := s.decompose(ctx, h, 0)
	if err != nil || root == hypertree.None {
		return nil, err
	}
	for c := s.t.FindCut(root); c != hypertree.None; c = s.t.FindCut(root) {
		if err := s.expandCut(c); err != nil {
			return nil, err
		}
	}
	return finish(s.t, root), nil
}

// balSearch holds the state of one BalKDecomp run.
type balSearch struct {
	builder
	opts  Options
	reg   *Registry
	rng   *rand.Rand
	hooks observability.SearchHooks
	log   *log.Logger

	// failed and solved are keyed by subproblem: component edges plus the
	// superedge the child hypergraph was extended with. solved keeps an
	// untouched copy of each decomposition.
	failed map[string]bool
	solved map[string]*hypertree.Tree
}

// decompose decomposes the hypergraph hg at recursion depth level.
func (s *balSearch) decompose(ctx context.Context, hg *hypergraph.Hypergraph, level int) (hypertree.Handle, error) {
	if err := ctx.Err(); err != nil {
		return hypertree.None, err
	}
	if s.opts.MaxRecursion == 0 || level < s.opts.MaxRecursion {
		return s.decomp(ctx, hg, hg.MCSOrder(s.rng), level)
	}

	s.hooks.OnFallback(ctx, NameBalK, NameDetK, level)
	s.log.Debug("recursion bound reached, falling back", "level", level, "edges", hg.EdgeCount())
	opts := s.opts
	opts.BIP = true
	d := newDetKSearch(s.t, hg, s.reg, opts)
	return d.run(ctx, hg.MCSOrder(s.rng))
}

func (s *balSearch) decomp(ctx context.Context, hg *hypergraph.Hypergraph, edges []*hypergraph.Edge, level int) (hypertree.Handle, error) {
	if h, err := s.trivial(edges, nil); err != nil || h != hypertree.None {
		return h, err
	}

	comp := hypergraph.VerticesOf(edges...)
	candidates := s.neighborEdges(hg, edges)
	checked := make(map[int]bool)
	var failedSeps [][]*hypergraph.Edge

	it := NewCombinationIterator(len(candidates), s.k)
	it.SetStage(s.k)
	for idx := it.Next(); idx != nil; idx = it.Next() {
		sep := make([]*hypergraph.Edge, len(idx))
		for i, j := range idx {
			sep[i] = candidates[j]
		}
		h, tried, err := s.trySeparator(ctx, hg, edges, comp, sep, checked, level)
		if err != nil || h != hypertree.None {
			return h, err
		}
		if tried {
			failedSeps = append(failedSeps, sep)
		}
	}

	for len(failedSeps) > 0 {
		sep := failedSeps[len(failedSeps)-1]
		failedSeps = failedSeps[:len(failedSeps)-1]
		f := NewSubedgeSeparators(s.reg, edges, sep)
		for sub := f.Next(); sub != nil; sub = f.Next() {
			h, _, err := s.trySeparator(ctx, hg, edges, comp, sub, checked, level)
			if err != nil || h != hypertree.None {
				return h, err
			}
		}
	}
	return hypertree.None, nil
}

// neighborEdges lists the candidate separator edges of a subproblem: its
// non-heavy edges followed by every other input edge touching its vertices.
func (s *balSearch) neighborEdges(hg *hypergraph.Hypergraph, edges []*hypergraph.Edge) []*hypergraph.Edge {
	root := hg.Root()
	seen := hypergraph.NewEdgeSet()
	var out []*hypergraph.Edge
	for _, e := range edges {
		seen.Add(e)
		if !e.IsHeavy() {
			out = append(out, e)
		}
	}
	comp := hypergraph.VerticesOf(edges...)
	for _, v := range root.Vertices() {
		if !comp.Has(v) {
			continue
		}
		for _, e := range root.Incident(v) {
			if !seen.Has(e) {
				seen.Add(e)
				out = append(out, e)
			}
		}
	}
	return out
}

// trySeparator decomposes below sep if it is new and balanced. tried
// reports whether sep was balanced but could not be completed.
func (s *balSearch) trySeparator(ctx context.Context, hg *hypergraph.Hypergraph, edges []*hypergraph.Edge, comp hypergraph.VertexSet, sep []*hypergraph.Edge, checked map[int]bool, level int) (hypertree.Handle, bool, error) {
	super, err := s.reg.Superedge(sep, comp)
	if err != nil {
		return hypertree.None, false, err
	}
	// A subproblem already holding the superedge cannot be extended by it.
	if checked[super.ID] || hg.HasEdge(super) {
		return hypertree.None, false, nil
	}
	checked[super.ID] = true

	comps := Separate(sep, edges)
	if !balanced(comps, len(edges)) {
		return hypertree.None, false, nil
	}
	s.hooks.OnSeparator(ctx, NameBalK, level, len(sep))

	h, err := s.split(ctx, hg, comp, sep, super, comps, level)
	return h, h == hypertree.None && err == nil, err
}

// split decomposes every component of a balanced separator and joins the
// results below a node for sep.
func (s *balSearch) split(ctx context.Context, hg *hypergraph.Hypergraph, comp hypergraph.VertexSet, sep []*hypergraph.Edge, super *hypergraph.Edge, comps []Component, level int) (hypertree.Handle, error) {
	keys := make([]string, len(comps))
	for i, c := range comps {
		keys[i] = subproblemKey(c.Edges, super)
		if s.failed[keys[i]] {
			s.hooks.OnMemoHit(ctx, NameBalK, false)
			return hypertree.None, nil
		}
	}

	subtrees := make([]hypertree.Handle, 0, len(comps))
	for i, c := range comps {
		key := keys[i]
		if _, ok := s.solved[key]; ok {
			s.hooks.OnMemoHit(ctx, NameBalK, true)
			p := s.t.NewNode(nil, hypergraph.NewEdgeSet(c.Edges...))
			s.t.Node(p).Super = super
			s.t.SetCut(p, key, level+1)
			subtrees = append(subtrees, p)
			continue
		}

		child, err := hg.Subgraph(c.Edges, super)
		if err != nil {
			return hypertree.None, errors.Wrap(errors.ErrCodeInternal, err, "build child hypergraph")
		}
		sub, err := s.decompose(ctx, child, level+1)
		if err != nil {
			return hypertree.None, err
		}
		if sub == hypertree.None {
			s.failed[key] = true
			return hypertree.None, nil
		}
		s.solved[key] = s.t.Extract(sub)
		subtrees = append(subtrees, sub)
	}

	h := s.node(comp, sep, nil)
	for _, sub := range subtrees {
		if err := s.hang(h, sub, super); err != nil {
			return hypertree.None, err
		}
	}
	return h, nil
}

// subproblemKey identifies the child hypergraph built from edges and super.
func subproblemKey(edges []*hypergraph.Edge, super *hypergraph.Edge) string {
	return hypergraph.EdgesKey(edges) + "|" + strconv.Itoa(super.ID)
}

// hang attaches sub below parent at its superedge node, expanding cut nodes
// inside sub until that node is reachable.
func (s *balSearch) hang(parent, sub hypertree.Handle, super *hypergraph.Edge) error {
	for {
		err := s.attach(parent, sub, super)
		if !stderrors.Is(err, errNoSuperedge) {
			return err
		}
		c := s.t.FindCut(sub)
		if c == hypertree.None {
			return missingSuperedge(super)
		}
		if err := s.expandCut(c); err != nil {
			return err
		}
	}
}

// expandCut replaces the cut placeholder c by a copy of the decomposition
// recorded for its subproblem, spliced at its superedge.
func (s *balSearch) expandCut(c hypertree.Handle) error {
	n := s.t.Node(c)
	cached, ok := s.solved[n.Anchor]
	if !ok {
		return errors.New(errors.ErrCodeCutNodeUnsolved, "no decomposition recorded for subproblem %s", n.Anchor)
	}
	parent := s.t.Parent(c)
	s.t.Detach(c)
	g := s.t.Graft(cached, cached.Root())
	return s.hang(parent, g, n.Super)
}
