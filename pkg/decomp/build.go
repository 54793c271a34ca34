package decomp

import (
	stderrors "errors"
	"math"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// errNoSuperedge is returned by attach when the subtree has no uncut node
// holding the superedge. Callers holding cut nodes may expand and retry.
var errNoSuperedge = stderrors.New("superedge not found in subtree")

// builder creates hypertree nodes in the arena of one run.
type builder struct {
	t *hypertree.Tree
	k int
}

// node creates a detached node with lambda = lambda and chi = the vertices
// of lambda inside comp, plus the connector.
func (b *builder) node(comp hypergraph.VertexSet, lambda []*hypergraph.Edge, connector hypergraph.VertexSet) hypertree.Handle {
	chi := hypergraph.VerticesOf(lambda...).Intersect(comp)
	if connector != nil {
		chi = chi.Union(connector)
	}
	return b.t.NewNode(chi, hypergraph.NewEdgeSet(lambda...))
}

// attach hangs the subtree rooted at sub below parent.
//
// With a superedge the subtree decomposes a child hypergraph that contains
// super. The subtree is rerooted at its first uncut node holding super. If
// that node holds nothing but super its children are moved below parent and
// the node itself is dropped; otherwise it becomes a child of parent. A cut
// placeholder is attached as is and spliced when it is expanded.
func (b *builder) attach(parent, sub hypertree.Handle, super *hypergraph.Edge) error {
	if super == nil || b.t.Node(sub).Cut {
		return b.t.AddChild(parent, sub)
	}
	at := b.t.FindByLambda(sub, super)
	if at == hypertree.None {
		return errNoSuperedge
	}
	if err := b.t.Reroot(at); err != nil {
		return err
	}
	if n := b.t.Node(at); n.Lambda.Len() == 1 {
		return b.t.Splice(at, parent)
	}
	return b.t.AddChild(parent, at)
}

// trivial returns a decomposition of edges that needs no separator search,
// or None if the edges need one:
//
//	(a) total weight at most k: a single node
//	(b) no connector and no heavy edge, at most 2k edges: a parent holding
//	    the first ceil(n/2) edges above a child holding the rest
//	(c) no connector, a heavy edge and total weight at most 2k: the heavy
//	    edge alone below a node holding all other edges
func (b *builder) trivial(edges []*hypergraph.Edge, connector hypergraph.VertexSet) (hypertree.Handle, error) {
	comp := hypergraph.VerticesOf(edges...)
	total := weight(edges)
	if total <= b.k {
		return b.node(comp, edges, connector), nil
	}
	if connector.Len() > 0 {
		return hypertree.None, nil
	}

	var parts [2][]*hypergraph.Edge
	if total == len(edges) {
		half := int(math.Ceil(float64(len(edges)) / 2))
		if len(edges) < 2 || half > b.k {
			return hypertree.None, nil
		}
		parts = [2][]*hypergraph.Edge{edges[:half], edges[half:]}
	} else {
		if total > 2*b.k {
			return hypertree.None, nil
		}
		var heavy *hypergraph.Edge
		for _, e := range edges {
			if heavy == nil && e.IsHeavy() {
				heavy = e
				continue
			}
			parts[0] = append(parts[0], e)
		}
		parts[1] = []*hypergraph.Edge{heavy}
		if weight(parts[0]) > b.k || heavy.Weight() > b.k {
			return hypertree.None, nil
		}
	}

	top := b.node(comp, parts[0], nil)
	if err := b.t.AddChild(top, b.node(comp, parts[1], nil)); err != nil {
		return hypertree.None, errors.Wrap(errors.ErrCodeInternal, err, "join trivial decomposition")
	}
	return top, nil
}

// missingSuperedge is the consistency error reported when a superedge cannot
// be located even after expanding every cut node below it.
func missingSuperedge(super *hypergraph.Edge) error {
	return errors.New(errors.ErrCodeSuperedgeNotFound, "superedge %s not found in subtree", super)
}
