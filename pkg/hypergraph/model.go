package hypergraph

import (
	"slices"
	"strings"
)

// EdgeKind distinguishes ordinary hyperedges from synthetic superedges.
type EdgeKind int

const (
	// Plain is an ordinary hyperedge (including subedges) of weight 1.
	Plain EdgeKind = iota
	// Super folds a separator into one edge; its weight is len(Underlying).
	Super
)

// String returns the lowercase kind name.
func (k EdgeKind) String() string {
	if k == Super {
		return "super"
	}
	return "plain"
}

// Vertex is a variable of the hypergraph.
type Vertex struct {
	ID   int
	Name string
}

func (v *Vertex) identity() int { return v.ID }

// Edge is a hyperedge. Vertices are kept sorted by id.
type Edge struct {
	ID       int
	Name     string
	Kind     EdgeKind
	Vertices []*Vertex

	// Underlying holds the separator edges a Super edge stands for.
	Underlying []*Edge
	// Origin is set on subedges and points at the edge they were cut from.
	Origin *Edge
}

func (e *Edge) identity() int { return e.ID }

// NewEdge creates a plain edge over the given vertices. Duplicate vertices
// are collapsed.
func NewEdge(id int, name string, vertices ...*Vertex) *Edge {
	return &Edge{ID: id, Name: name, Kind: Plain, Vertices: sortVertices(vertices)}
}

// NewSuperedge creates a superedge over vertices standing for underlying.
func NewSuperedge(id int, name string, vertices []*Vertex, underlying []*Edge) *Edge {
	return &Edge{
		ID:         id,
		Name:       name,
		Kind:       Super,
		Vertices:   sortVertices(vertices),
		Underlying: slices.Clone(underlying),
	}
}

// Weight is 1 for plain edges and the number of underlying edges for
// superedges.
func (e *Edge) Weight() int {
	if e.Kind == Super {
		return len(e.Underlying)
	}
	return 1
}

// IsHeavy reports whether the edge weighs more than one ordinary edge.
func (e *Edge) IsHeavy() bool { return e.Weight() > 1 }

// IsSubedge reports whether the edge was derived from another edge.
func (e *Edge) IsSubedge() bool { return e.Origin != nil }

// Has reports whether v is one of the edge's vertices.
func (e *Edge) Has(v *Vertex) bool {
	_, ok := slices.BinarySearchFunc(e.Vertices, v.ID, func(x *Vertex, id int) int { return x.ID - id })
	return ok
}

// VertexSet returns the edge's vertices as a set.
func (e *Edge) VertexSet() VertexSet {
	return NewVertexSet(e.Vertices...)
}

// Resolve maps an edge back to the input edges it represents: subedges to
// their origin and superedges to their (resolved) underlying edges.
func (e *Edge) Resolve() []*Edge {
	switch {
	case e.Origin != nil:
		return e.Origin.Resolve()
	case e.Kind == Super:
		var out []*Edge
		for _, u := range e.Underlying {
			out = append(out, u.Resolve()...)
		}
		return out
	}
	return []*Edge{e}
}

// String renders the edge as name(v1,v2,...).
func (e *Edge) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteByte('(')
	for i, v := range e.Vertices {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.Name)
	}
	b.WriteByte(')')
	return b.String()
}

func sortVertices(vs []*Vertex) []*Vertex {
	out := slices.Clone(vs)
	slices.SortFunc(out, func(a, b *Vertex) int { return a.ID - b.ID })
	return slices.CompactFunc(out, func(a, b *Vertex) bool { return a.ID == b.ID })
}
