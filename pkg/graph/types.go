package graph

import (
	"slices"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// =============================================================================
// Hypergraph - Input Serialization
// =============================================================================

// Hypergraph is the canonical serialization format for hypergraphs.
type Hypergraph struct {
	Vertices []string `json:"vertices,omitempty" bson:"vertices,omitempty"`
	Edges    []Edge   `json:"edges" bson:"edges"`
}

// Edge is one named hyperedge.
type Edge struct {
	Name     string   `json:"name" bson:"name"`
	Vertices []string `json:"vertices" bson:"vertices"`
}

// FromHypergraph converts a hypergraph to its serialization format. Edges
// keep their insertion order; vertices are listed in first-seen order.
func FromHypergraph(h *hypergraph.Hypergraph) Hypergraph {
	out := Hypergraph{
		Vertices: make([]string, 0, h.VertexCount()),
		Edges:    make([]Edge, 0, h.EdgeCount()),
	}
	for _, v := range h.Vertices() {
		out.Vertices = append(out.Vertices, v.Name)
	}
	for _, e := range h.Edges() {
		out.Edges = append(out.Edges, Edge{Name: e.Name, Vertices: vertexNames(e.Vertices)})
	}
	return out
}

// ToHypergraph builds a hypergraph from its serialization format.
// Edge and vertex names must be valid identifiers and edge names unique.
func ToHypergraph(g Hypergraph) (*hypergraph.Hypergraph, error) {
	var vars []string
	idx := make(map[string]int)
	addVar := func(name string) (int, error) {
		if i, ok := idx[name]; ok {
			return i, nil
		}
		if err := errors.ValidateIdentifier(name); err != nil {
			return 0, err
		}
		idx[name] = len(vars)
		vars = append(vars, name)
		return idx[name], nil
	}
	for _, v := range g.Vertices {
		if _, err := addVar(v); err != nil {
			return nil, err
		}
	}

	atoms := make([]hypergraph.Atom, 0, len(g.Edges))
	seen := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if err := errors.ValidateIdentifier(e.Name); err != nil {
			return nil, err
		}
		if seen[e.Name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate edge %q", e.Name)
		}
		seen[e.Name] = true
		if len(e.Vertices) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %q has no vertices", e.Name)
		}
		a := hypergraph.Atom{Name: e.Name, Vars: make([]int, len(e.Vertices))}
		for i, v := range e.Vertices {
			j, err := addVar(v)
			if err != nil {
				return nil, err
			}
			a.Vars[i] = j
		}
		atoms = append(atoms, a)
	}

	h, err := hypergraph.Build(vars, atoms)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build hypergraph")
	}
	return h, nil
}

// =============================================================================
// Tree - Decomposition Serialization
// =============================================================================

// Tree is the canonical serialization format for hypertree decompositions.
type Tree struct {
	Width           int        `json:"width" bson:"width"`
	FractionalWidth float64    `json:"fractional_width,omitempty" bson:"fractional_width,omitempty"`
	Nodes           []TreeNode `json:"nodes" bson:"nodes"`
	Edges           []Link     `json:"edges" bson:"edges"`
}

// TreeNode is one decomposition node. Cover maps edge names to their
// weight in the node's fractional edge cover, when one was computed.
type TreeNode struct {
	ID     int                `json:"id" bson:"id"`
	Lambda []string           `json:"lambda" bson:"lambda"`
	Chi    []string           `json:"chi" bson:"chi"`
	Cover  map[string]float64 `json:"cover,omitempty" bson:"cover,omitempty"`
}

// Link is a parent-child pair of node IDs.
type Link struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// FromTree converts a decomposition to its serialization format. Node IDs
// follow pre-order from the root.
func FromTree(t *hypertree.Tree) Tree {
	nodes := t.Nodes()
	ids := make(map[hypertree.Handle]int, len(nodes))
	out := Tree{
		Width: t.Width(),
		Nodes: make([]TreeNode, 0, len(nodes)),
		Edges: []Link{},
	}
	if w, ok := t.FractionalWidth(); ok {
		out.FractionalWidth = w
	}
	for i, h := range nodes {
		ids[h] = i
		n := t.Node(h)
		tn := TreeNode{
			ID:     i,
			Lambda: hypergraph.Names(n.Lambda),
			Chi:    hypergraph.Names(n.Chi),
		}
		if n.Cover != nil && len(n.Cover.Edges) > 0 {
			tn.Cover = make(map[string]float64, len(n.Cover.Edges))
			for j, e := range n.Cover.Edges {
				tn.Cover[e.Name] = n.Cover.Weights[j]
			}
		}
		out.Nodes = append(out.Nodes, tn)
		if p := t.Parent(h); p != hypertree.None {
			out.Edges = append(out.Edges, Link{From: ids[p], To: i})
		}
	}
	return out
}

// ToTree rebuilds a decomposition of h from its serialization format.
// Every name must refer to an edge or vertex of h, and the links must form
// a single tree rooted at node 0.
func ToTree(g Tree, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	t := hypertree.New()
	handles := make(map[int]hypertree.Handle, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := handles[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate tree node %d", n.ID)
		}
		lambda, err := lookupEdges(h, n.Lambda)
		if err != nil {
			return nil, err
		}
		chi := hypergraph.NewVertexSet()
		for _, name := range n.Chi {
			v, ok := h.VertexByName(name)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "node %d: unknown vertex %q", n.ID, name)
			}
			chi.Add(v)
		}
		handle := t.NewNode(chi, hypergraph.NewEdgeSet(lambda...))
		if len(n.Cover) > 0 {
			c, err := coverOf(h, chi, n.Cover)
			if err != nil {
				return nil, err
			}
			t.Node(handle).Cover = c
		}
		handles[n.ID] = handle
	}

	for _, l := range g.Edges {
		p, ok1 := handles[l.From]
		c, ok2 := handles[l.To]
		if !ok1 || !ok2 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "link %d->%d references an unknown node", l.From, l.To)
		}
		if err := t.AddChild(p, c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "link %d->%d", l.From, l.To)
		}
	}

	if len(g.Nodes) == 0 {
		return t, nil
	}
	root, ok := handles[0]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree has no node 0")
	}
	if err := t.SetRoot(root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "set root")
	}
	if t.Size() != len(g.Nodes) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree is disconnected: %d of %d nodes reachable", t.Size(), len(g.Nodes))
	}
	return t, nil
}

func lookupEdges(h *hypergraph.Hypergraph, names []string) ([]*hypergraph.Edge, error) {
	out := make([]*hypergraph.Edge, 0, len(names))
	for _, name := range names {
		e, ok := h.EdgeByName(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown edge %q", name)
		}
		out = append(out, e)
	}
	return out, nil
}

func coverOf(h *hypergraph.Hypergraph, bag hypergraph.VertexSet, weights map[string]float64) (*fec.Cover, error) {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	slices.Sort(names)
	edges, err := lookupEdges(h, names)
	if err != nil {
		return nil, err
	}
	c := &fec.Cover{Bag: bag, Edges: edges, Weights: make([]float64, len(edges))}
	for i, name := range names {
		c.Weights[i] = weights[name]
		c.Weight += weights[name]
	}
	return c, nil
}

func vertexNames(vs []*hypergraph.Vertex) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name
	}
	return out
}

// =============================================================================
// Report - Verification Serialization
// =============================================================================

// Report is the serialization format of a verification report.
type Report struct {
	OK     bool          `json:"ok" bson:"ok"`
	Checks []CheckResult `json:"checks" bson:"checks"`
}

// CheckResult is the outcome of one hypertree condition.
type CheckResult struct {
	Condition string `json:"condition" bson:"condition"`
	Checked   bool   `json:"checked" bson:"checked"`
	Satisfied bool   `json:"satisfied" bson:"satisfied"`
	Witness   string `json:"witness,omitempty" bson:"witness,omitempty"`
}

// FromReport converts a verification report to its serialization format.
func FromReport(r hypertree.Report) Report {
	out := Report{OK: r.OK(), Checks: make([]CheckResult, 0, len(r.Checks))}
	for _, c := range r.Checks {
		out.Checks = append(out.Checks, CheckResult{
			Condition: c.Condition.String(),
			Checked:   c.Checked,
			Satisfied: c.Satisfied,
			Witness:   c.Witness(),
		})
	}
	return out
}
