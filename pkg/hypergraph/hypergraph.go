package hypergraph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEdge is returned by [Hypergraph.AddEdge] when an edge with
	// the same ID is already part of the hypergraph.
	ErrDuplicateEdge = errors.New("duplicate edge ID")

	// ErrEmptyEdge is returned by [Hypergraph.AddEdge] for an edge without
	// vertices. Such an edge cannot be covered by any bag.
	ErrEmptyEdge = errors.New("edge has no vertices")

	// ErrUnknownVariable is returned by [Build] when an atom references a
	// variable index outside the variable list.
	ErrUnknownVariable = errors.New("unknown variable")
)

// Atom is one edge description handed over by a parser: a name plus indices
// into the variable list.
type Atom struct {
	Name string
	Vars []int
}

// Hypergraph holds a set of edges, the vertices they touch, the
// vertex-to-incident-edges index and the edge-to-neighbour-edges index.
//
// The zero value is not usable - use New, Build or Subgraph.
type Hypergraph struct {
	parent *Hypergraph

	edges    []*Edge
	vertices []*Vertex
	edgeIdx  map[int]int // edge ID -> position in edges
	vertIdx  map[int]int // vertex ID -> position in vertices

	incident  map[int][]*Edge      // vertex ID -> incident edges
	neighbors map[int][]*Edge      // edge ID -> edges sharing a vertex
	adjacent  map[int]map[int]bool // edge ID -> neighbour IDs
}

// New creates an empty hypergraph.
func New() *Hypergraph {
	return &Hypergraph{
		edgeIdx:   make(map[int]int),
		vertIdx:   make(map[int]int),
		incident:  make(map[int][]*Edge),
		neighbors: make(map[int][]*Edge),
		adjacent:  make(map[int]map[int]bool),
	}
}

// Build allocates one vertex per variable and one plain edge per atom. Vertex
// IDs are the variable positions; edge IDs are the atom positions.
func Build(vars []string, atoms []Atom) (*Hypergraph, error) {
	vs := make([]*Vertex, len(vars))
	for i, name := range vars {
		vs[i] = &Vertex{ID: i, Name: name}
	}

	h := New()
	for i, a := range atoms {
		members := make([]*Vertex, 0, len(a.Vars))
		for _, idx := range a.Vars {
			if idx < 0 || idx >= len(vs) {
				return nil, fmt.Errorf("atom %s: %w: index %d", a.Name, ErrUnknownVariable, idx)
			}
			members = append(members, vs[idx])
		}
		if err := h.AddEdge(NewEdge(i, a.Name, members...)); err != nil {
			return nil, fmt.Errorf("atom %s: %w", a.Name, err)
		}
	}
	return h, nil
}

// AddEdge inserts e and its vertices and updates both adjacency indexes.
// Nothing is modified when an error is returned.
func (h *Hypergraph) AddEdge(e *Edge) error {
	if _, ok := h.edgeIdx[e.ID]; ok {
		return fmt.Errorf("%w: %d (%s)", ErrDuplicateEdge, e.ID, e.Name)
	}
	if len(e.Vertices) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyEdge, e.Name)
	}

	h.edgeIdx[e.ID] = len(h.edges)
	h.edges = append(h.edges, e)
	h.adjacent[e.ID] = make(map[int]bool)

	for _, v := range e.Vertices {
		if _, ok := h.vertIdx[v.ID]; !ok {
			h.vertIdx[v.ID] = len(h.vertices)
			h.vertices = append(h.vertices, v)
		}
		for _, f := range h.incident[v.ID] {
			if h.adjacent[e.ID][f.ID] {
				continue
			}
			h.adjacent[e.ID][f.ID] = true
			h.adjacent[f.ID][e.ID] = true
			h.neighbors[e.ID] = append(h.neighbors[e.ID], f)
			h.neighbors[f.ID] = append(h.neighbors[f.ID], e)
		}
		h.incident[v.ID] = append(h.incident[v.ID], e)
	}
	return nil
}

// Subgraph derives a child hypergraph over edges plus extra. Edges and
// vertices are shared with h, not copied.
func (h *Hypergraph) Subgraph(edges []*Edge, extra ...*Edge) (*Hypergraph, error) {
	sub := New()
	sub.parent = h
	for _, e := range edges {
		if err := sub.AddEdge(e); err != nil {
			return nil, err
		}
	}
	for _, e := range extra {
		if err := sub.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// Parent returns the hypergraph h was derived from, or nil.
func (h *Hypergraph) Parent() *Hypergraph { return h.parent }

// Root follows Parent links to the input hypergraph.
func (h *Hypergraph) Root() *Hypergraph {
	r := h
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Edges returns the edges in insertion order. The slice must not be modified.
func (h *Hypergraph) Edges() []*Edge { return h.edges }

// Vertices returns the vertices in first-seen order. The slice must not be
// modified.
func (h *Hypergraph) Vertices() []*Vertex { return h.vertices }

// EdgeCount returns the number of edges.
func (h *Hypergraph) EdgeCount() int { return len(h.edges) }

// VertexCount returns the number of vertices.
func (h *Hypergraph) VertexCount() int { return len(h.vertices) }

// Edge returns the edge with the given ID.
func (h *Hypergraph) Edge(id int) (*Edge, bool) {
	i, ok := h.edgeIdx[id]
	if !ok {
		return nil, false
	}
	return h.edges[i], true
}

// Vertex returns the vertex with the given ID.
func (h *Hypergraph) Vertex(id int) (*Vertex, bool) {
	i, ok := h.vertIdx[id]
	if !ok {
		return nil, false
	}
	return h.vertices[i], true
}

// VertexByName looks a vertex up by name.
func (h *Hypergraph) VertexByName(name string) (*Vertex, bool) {
	for _, v := range h.vertices {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// EdgeByName looks an edge up by name.
func (h *Hypergraph) EdgeByName(name string) (*Edge, bool) {
	for _, e := range h.edges {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// HasEdge reports whether e belongs to h.
func (h *Hypergraph) HasEdge(e *Edge) bool {
	_, ok := h.edgeIdx[e.ID]
	return ok
}

// HasVertex reports whether v is touched by an edge of h.
func (h *Hypergraph) HasVertex(v *Vertex) bool {
	_, ok := h.vertIdx[v.ID]
	return ok
}

// Incident returns the edges of h containing v.
func (h *Hypergraph) Incident(v *Vertex) []*Edge { return h.incident[v.ID] }

// Neighbors returns the edges of h sharing at least one vertex with e.
func (h *Hypergraph) Neighbors(e *Edge) []*Edge { return h.neighbors[e.ID] }

// HeavyEdgeCount returns the number of edges of weight > 1.
func (h *Hypergraph) HeavyEdgeCount() int {
	n := 0
	for _, e := range h.edges {
		if e.IsHeavy() {
			n++
		}
	}
	return n
}

// MaxEdgeID returns the largest edge ID in h, or -1 when h is empty.
func (h *Hypergraph) MaxEdgeID() int {
	m := -1
	for _, e := range h.edges {
		m = max(m, e.ID)
	}
	return m
}

// VertexSet returns all vertices of h as a set.
func (h *Hypergraph) VertexSet() VertexSet { return NewVertexSet(h.vertices...) }
