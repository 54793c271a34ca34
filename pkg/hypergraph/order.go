package hypergraph

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// MCSOrder orders the edges by maximum cardinality search over the
// edge-neighbour graph: the first edge is random, and each following edge
// is one with the most neighbours already ordered, ties broken uniformly at
// random. A nil rng uses a fixed seed so the order is reproducible.
func (h *Hypergraph) MCSOrder(rng *rand.Rand) []*Edge {
	if len(h.edges) == 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 1))
	}

	order := make([]*Edge, 0, len(h.edges))
	placed := make(map[int]bool, len(h.edges))
	card := make(map[int]int, len(h.edges))

	place := func(e *Edge) {
		placed[e.ID] = true
		order = append(order, e)
		for _, n := range h.neighbors[e.ID] {
			card[n.ID]++
		}
	}

	place(h.edges[rng.IntN(len(h.edges))])
	var candidates []*Edge
	for len(order) < len(h.edges) {
		best := -1
		candidates = candidates[:0]
		for _, e := range h.edges {
			if placed[e.ID] {
				continue
			}
			switch c := card[e.ID]; {
			case c > best:
				best = c
				candidates = append(candidates[:0], e)
			case c == best:
				candidates = append(candidates, e)
			}
		}
		place(candidates[rng.IntN(len(candidates))])
	}
	return order
}

// IsConnected reports whether the primal graph of h (vertices adjacent when
// they share an edge) has at most one connected component.
func (h *Hypergraph) IsConnected() bool {
	return len(h.Components()) <= 1
}

// Components returns the vertex sets of the connected components of the
// primal graph.
func (h *Hypergraph) Components() []VertexSet {
	g := simple.NewUndirectedGraph()
	for _, v := range h.vertices {
		g.AddNode(simple.Node(v.ID))
	}
	// A star per edge preserves primal connectivity with fewer graph edges.
	for _, e := range h.edges {
		hub := e.Vertices[0]
		for _, v := range e.Vertices[1:] {
			g.SetEdge(simple.Edge{F: simple.Node(hub.ID), T: simple.Node(v.ID)})
		}
	}

	var out []VertexSet
	for _, cc := range topo.ConnectedComponents(g) {
		s := make(VertexSet, len(cc))
		for _, n := range cc {
			v, _ := h.Vertex(int(n.ID()))
			s.Add(v)
		}
		out = append(out, s)
	}
	return out
}
