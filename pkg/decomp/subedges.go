package decomp

import (
	"fmt"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Subedges returns the subedges of e, computing them on first use.
//
// A subedge is the intersection of e with the union of up to k of its
// non-heavy neighbours in the input hypergraph. Only intersections that are
// proper subsets of e are kept, each at most once per edge. An intersection
// equal to one already created for another edge reuses that subedge, so
// every vertex set maps to a single subedge per run.
//
// Edges outside the input hypergraph have no subedges.
func (r *Registry) Subedges(e *hypergraph.Edge) []*hypergraph.Edge {
	if subs, ok := r.subs[e.ID]; ok {
		return subs
	}
	subs := []*hypergraph.Edge{}
	r.subs[e.ID] = subs
	if !r.root.HasEdge(e) {
		return subs
	}

	var neighbors []*hypergraph.Edge
	for _, n := range r.root.Neighbors(e) {
		if !n.IsHeavy() {
			neighbors = append(neighbors, n)
		}
	}

	own := make(map[string]bool)
	it := NewCombinationIterator(len(neighbors), r.k)
	for idx := it.Next(); idx != nil; idx = it.Next() {
		vs := hypergraph.NewVertexSet()
		for _, i := range idx {
			for _, v := range neighbors[i].Vertices {
				if e.Has(v) {
					vs.Add(v)
				}
			}
		}
		if vs.Len() == 0 || vs.Len() == len(e.Vertices) {
			continue
		}
		key := vs.Key()
		if own[key] {
			continue
		}
		own[key] = true
		sub, ok := r.subKeys[key]
		if !ok {
			r.nsub++
			sub = hypergraph.NewEdge(r.allocID(), fmt.Sprintf("%s-%d", e.Name, r.nsub), vs.Sorted()...)
			sub.Origin = e
			r.subKeys[key] = sub
		}
		subs = append(subs, sub)
	}
	r.subs[e.ID] = subs
	return subs
}
