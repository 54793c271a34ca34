// Package hypergraph provides the vertex, hyperedge and hypergraph model that
// every decomposition strategy in htdecomp operates on.
//
// # Overview
//
// A hypergraph is a set of hyperedges, each of which is a set of vertices.
// In the conjunctive-query reading, a vertex is a variable and a hyperedge is
// an atom mentioning those variables. This package owns identity: a [Vertex]
// or [Edge] is created once and then shared by pointer across every derived
// subgraph, separator and hypertree bag that mentions it.
//
// # Edge Kinds
//
// Edges come in two kinds:
//
//   - [Plain]: an ordinary hyperedge with weight 1
//   - [Super]: a synthetic edge folding a separator into a single edge for a
//     recursive subproblem; its weight is the number of underlying edges
//
// Subedges (vertex intersections of an edge with some of its neighbours) are
// plain edges whose [Edge.Origin] points back to the edge they were cut from.
//
// # Building Hypergraphs
//
// [Build] is the boundary to parsers: it takes an ordered variable list and an
// ordered atom list and allocates one vertex per variable and one edge per
// atom. [ParseHyperBench] reads the HyperBench text format directly:
//
//	% a triangle
//	e1(a,b),
//	e2(b,c),
//	e3(c,a).
//
// [Hypergraph.Subgraph] derives child hypergraphs that share edge and vertex
// identity with their parent, optionally extended with extra (super)edges.
//
// # Sets
//
// [VertexSet] and [EdgeSet] are id-keyed sets with an order-independent
// [Set.Key] used as a memoization signature. Algorithms keep all transient
// marking in such call-scoped sets; vertices and edges carry no scratch state.
//
// # Concurrency
//
// A Hypergraph is not safe for concurrent mutation. Once built it may be read
// from multiple goroutines.
package hypergraph
