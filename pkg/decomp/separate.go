package decomp

import (
	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Component is one connected part of a subproblem left by a separator.
type Component struct {
	// Edges in flood-fill order. Edges[0] identifies the component among
	// all components of the same separator.
	Edges []*hypergraph.Edge
	// Connector holds the separator vertices the component touches.
	Connector hypergraph.VertexSet
}

// Vertices returns the vertices of the component's edges.
func (c Component) Vertices() hypergraph.VertexSet {
	return hypergraph.VerticesOf(c.Edges...)
}

// Separate splits edges into the components left after removing sep. The
// vertices of sep are blocked: the flood fill does not pass through them,
// and a blocked vertex touched by a component becomes one of its connector
// vertices. The components partition edges minus sep; none is empty.
func Separate(sep, edges []*hypergraph.Edge) []Component {
	sepEdges := hypergraph.NewEdgeSet(sep...)
	return flood(edges, hypergraph.VerticesOf(sep...), sepEdges.Has)
}

// SeparateBag splits edges into the components left after removing the
// vertices of bag. Edges inside the bag belong to no component.
func SeparateBag(bag hypergraph.VertexSet, edges []*hypergraph.Edge) []Component {
	return flood(edges, bag, func(e *hypergraph.Edge) bool {
		return e.VertexSet().SubsetOf(bag)
	})
}

// flood groups the edges not dropped into components connected through
// vertices outside blocked.
func flood(edges []*hypergraph.Edge, blocked hypergraph.VertexSet, drop func(*hypergraph.Edge) bool) []Component {
	dropped := make(map[int]bool)
	incident := make(map[int][]*hypergraph.Edge)
	for _, e := range edges {
		if drop(e) {
			dropped[e.ID] = true
			continue
		}
		for _, v := range e.Vertices {
			if !blocked.Has(v) {
				incident[v.ID] = append(incident[v.ID], e)
			}
		}
	}

	var comps []Component
	seen := make(map[int]bool, len(edges))
	visited := make(map[int]bool)
	for _, e := range edges {
		if dropped[e.ID] || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		c := Component{Edges: []*hypergraph.Edge{e}, Connector: hypergraph.NewVertexSet()}
		for i := 0; i < len(c.Edges); i++ {
			for _, v := range c.Edges[i].Vertices {
				if blocked.Has(v) {
					c.Connector.Add(v)
					continue
				}
				if visited[v.ID] {
					continue
				}
				visited[v.ID] = true
				for _, f := range incident[v.ID] {
					if !seen[f.ID] {
						seen[f.ID] = true
						c.Edges = append(c.Edges, f)
					}
				}
			}
		}
		comps = append(comps, c)
	}
	return comps
}

// progress reports whether every component is strictly smaller than edges.
// A separator containing one of the input edges always makes progress, so a
// violation in that case is a broken invariant and returned as an error.
// Otherwise the separator is merely useless.
func progress(sep, edges []*hypergraph.Edge, comps []Component) (bool, error) {
	for _, c := range comps {
		if len(c.Edges) < len(edges) {
			continue
		}
		in := hypergraph.NewEdgeSet(edges...)
		for _, s := range sep {
			if in.Has(s) {
				return false, errors.New(errors.ErrCodeMonotonicity,
					"separator {%s} left a component of %d edges out of %d",
					hypergraph.EdgesKey(sep), len(c.Edges), len(edges))
			}
		}
		return false, nil
	}
	return true, nil
}

// balanced reports whether comps is a balanced split of n edges: more than
// one component and none larger than n/2.
func balanced(comps []Component, n int) bool {
	if len(comps) < 2 {
		return false
	}
	for _, c := range comps {
		if len(c.Edges) > n/2 {
			return false
		}
	}
	return true
}

// weight sums the weights of es.
func weight(es []*hypergraph.Edge) int {
	w := 0
	for _, e := range es {
		w += e.Weight()
	}
	return w
}
