package hypertree

import (
	"math/rand/v2"

	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/setcover"
)

// Shrink contracts redundant tree edges bottom-up. A node and a child are
// merged whenever one's chi (or lambda, with byLambda) is a subset of the
// other's. When the parent's set is the smaller one under byChi, the merged
// node takes the child's lambda; under byLambda the lambdas are united. The
// merged node always holds the union of both bags and adopts the child's
// children.
func (t *Tree) Shrink(byLambda bool) {
	for _, h := range t.PostOrder(t.root) {
		if !t.valid(h) {
			continue
		}
		for t.shrinkOnce(h, byLambda) {
		}
	}
}

func (t *Tree) shrinkOnce(h Handle, byLambda bool) bool {
	n := t.nodes[h]
	for _, c := range n.children {
		cn := t.nodes[c]
		var up, down bool
		if byLambda {
			up, down = n.Lambda.SubsetOf(cn.Lambda), cn.Lambda.SubsetOf(n.Lambda)
		} else {
			up, down = n.Chi.SubsetOf(cn.Chi), cn.Chi.SubsetOf(n.Chi)
		}
		if !up && !down {
			continue
		}
		switch {
		case byLambda:
			n.Lambda = n.Lambda.Union(cn.Lambda)
		case up:
			n.Lambda = cn.Lambda.Clone()
		}
		n.Chi = n.Chi.Union(cn.Chi)
		n.Cover = nil
		// Splice cannot fail: c is a child of h, never an ancestor.
		_ = t.Splice(c, h)
		return true
	}
	return false
}

// ReduceLambda shrinks lambdas without touching chi: first top-down, then
// bottom-up. A node's lambda is replaced by a set cover of its bag plus the
// vertices it shares with its neighbours, drawn from its own lambda and
// that of its parent (top-down) or children (bottom-up). Edges that occur
// in no child (top-down) or not in the parent (bottom-up) are kept. The
// replacement only happens when it is strictly smaller.
func (t *Tree) ReduceLambda(rng *rand.Rand) error {
	for _, h := range t.PreOrder(t.root) {
		if err := t.reduceNode(h, true, rng); err != nil {
			return err
		}
	}
	for _, h := range t.PostOrder(t.root) {
		if err := t.reduceNode(h, false, rng); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) reduceNode(h Handle, topDown bool, rng *rand.Rand) error {
	n := t.nodes[h]
	old := n.Lambda

	// Vertices of lambda shared by two children, or by the parent and a child.
	marked := hypergraph.NewVertexSet()
	seen := make(map[int]int) // vertex id -> first child index that mentions it
	inChild := hypergraph.NewVertexSet()
	for i, c := range n.children {
		for _, e := range t.nodes[c].Lambda {
			for _, v := range e.Vertices {
				if !hasVertex(old, v) {
					continue
				}
				if j, ok := seen[v.ID]; ok && j != i {
					marked.Add(v)
				} else {
					seen[v.ID] = i
				}
				inChild.Add(v)
			}
		}
	}
	candidates := old.Clone()
	var parentLambda hypergraph.EdgeSet
	if p := n.parent; p != None {
		parentLambda = t.nodes[p].Lambda
		for _, e := range parentLambda {
			for _, v := range e.Vertices {
				if inChild.Has(v) {
					marked.Add(v)
				}
			}
		}
	}
	if topDown {
		if parentLambda != nil {
			candidates = candidates.Union(parentLambda)
		}
	} else {
		for _, c := range n.children {
			candidates = candidates.Union(t.nodes[c].Lambda)
		}
	}

	keep := hypergraph.NewEdgeSet()
	for _, e := range old {
		if topDown && !t.inChildLambda(h, e) || !topDown && (parentLambda == nil || !parentLambda.Has(e)) {
			keep.Add(e)
		}
	}

	required := n.Chi.Union(marked).Minus(hypergraph.VerticesOf(keep.Sorted()...))
	cover, err := setcover.Cover(required, candidates.Sorted(), rng)
	if err != nil {
		return err
	}
	next := keep.Clone()
	next.Add(cover...)
	if next.Len() < old.Len() {
		n.Lambda = next
	}
	return nil
}

func (t *Tree) inChildLambda(h Handle, e *hypergraph.Edge) bool {
	for _, c := range t.nodes[h].children {
		if t.nodes[c].Lambda.Has(e) {
			return true
		}
	}
	return false
}

func hasVertex(lambda hypergraph.EdgeSet, v *hypergraph.Vertex) bool {
	for _, e := range lambda {
		if e.Has(v) {
			return true
		}
	}
	return false
}

// ElimCovEdges replaces every lambda by a set cover of chi drawn from the
// lambda itself.
func (t *Tree) ElimCovEdges(rng *rand.Rand) error {
	for _, h := range t.Nodes() {
		n := t.nodes[h]
		cover, err := setcover.Cover(n.Chi, n.Lambda.Sorted(), rng)
		if err != nil {
			return err
		}
		n.Lambda = hypergraph.NewEdgeSet(cover...)
	}
	return nil
}

// SetLambda extends every lambda so that it covers chi, using edges of h
// incident to the bag. Of a cover of the whole bag and a cover of only the
// vertices the current lambda misses, the smaller one is added.
func (t *Tree) SetLambda(h *hypergraph.Hypergraph, rng *rand.Rand) error {
	for _, x := range t.Nodes() {
		n := t.nodes[x]
		full, err := setcover.Cover(n.Chi, fec.Incident(h, n.Chi), rng)
		if err != nil {
			return err
		}
		if n.Lambda.Len() > 0 {
			missing := n.Chi.Minus(hypergraph.VerticesOf(n.Lambda.Sorted()...))
			partial, err := setcover.Cover(missing, fec.Incident(h, missing), rng)
			if err != nil {
				return err
			}
			if len(partial) < len(full) {
				full = partial
			}
		}
		n.Lambda.Add(full...)
	}
	return nil
}

// ResetLambda replaces every lambda by a cover of chi from the edges of h
// incident to the bag, when that cover is smaller.
func (t *Tree) ResetLambda(h *hypergraph.Hypergraph, rng *rand.Rand) error {
	for _, x := range t.Nodes() {
		n := t.nodes[x]
		cover, err := setcover.Cover(n.Chi, fec.Incident(h, n.Chi), rng)
		if err != nil {
			return err
		}
		if len(cover) < n.Lambda.Len() {
			n.Lambda = hypergraph.NewEdgeSet(cover...)
		}
	}
	return nil
}
