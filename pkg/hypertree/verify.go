package hypertree

import (
	"fmt"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Condition numbers the four hypertree conditions.
type Condition int

const (
	// CondCovering: every edge is contained in some bag.
	CondCovering Condition = iota + 1
	// CondConnected: the bags containing a vertex form a connected subtree.
	CondConnected
	// CondLambdaCovers: every bag is covered by its node's lambda.
	CondLambdaCovers
	// CondSpecial: vars(lambda(p)) ∩ chi(T_p) ⊆ chi(p) for every node p.
	CondSpecial
)

// String returns a short condition name.
func (c Condition) String() string {
	switch c {
	case CondCovering:
		return "edge covering"
	case CondConnected:
		return "connectedness"
	case CondLambdaCovers:
		return "lambda covers chi"
	case CondSpecial:
		return "special condition"
	}
	return fmt.Sprintf("condition %d", int(c))
}

// Check is the outcome of one condition. A violated check carries exactly
// one witness matching the condition: an edge (1), a vertex (2) or a node
// (3, 4).
type Check struct {
	Condition Condition
	Checked   bool // false for condition 4 outside strict mode
	Satisfied bool

	Edge   *hypergraph.Edge
	Vertex *hypergraph.Vertex
	Node   Handle
}

// Witness describes the violating element.
func (c Check) Witness() string {
	switch {
	case c.Satisfied || !c.Checked:
		return ""
	case c.Edge != nil:
		return "edge " + c.Edge.Name
	case c.Vertex != nil:
		return "vertex " + c.Vertex.Name
	default:
		return fmt.Sprintf("node %d", c.Node)
	}
}

// Report collects the checks of one verification.
type Report struct {
	Checks []Check
}

// OK reports whether every performed check is satisfied.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if c.Checked && !c.Satisfied {
			return false
		}
	}
	return true
}

// Failed returns the violated checks.
func (r Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Checked && !c.Satisfied {
			out = append(out, c)
		}
	}
	return out
}

// Verify checks the tree against h. Condition 4 is only checked in strict
// mode. The tree is not modified.
func (t *Tree) Verify(h *hypergraph.Hypergraph, strict bool) Report {
	nodes := t.Nodes()
	return Report{Checks: []Check{
		t.checkCovering(h, nodes),
		t.checkConnected(h, nodes),
		t.checkLambdaCovers(nodes),
		t.checkSpecial(nodes, strict),
	}}
}

func (t *Tree) checkCovering(h *hypergraph.Hypergraph, nodes []Handle) Check {
	c := Check{Condition: CondCovering, Checked: true, Satisfied: true, Node: None}
	for _, e := range h.Edges() {
		covered := false
		for _, x := range nodes {
			if e.VertexSet().SubsetOf(t.nodes[x].Chi) {
				covered = true
				break
			}
		}
		if !covered {
			c.Satisfied, c.Edge = false, e
			return c
		}
	}
	return c
}

// checkConnected counts, per vertex, the nodes whose bag holds the vertex
// while the parent's does not. More than one such top node means the
// occurrences are disconnected.
func (t *Tree) checkConnected(h *hypergraph.Hypergraph, nodes []Handle) Check {
	c := Check{Condition: CondConnected, Checked: true, Satisfied: true, Node: None}
	tops := make(map[int]int)
	for _, x := range nodes {
		n := t.nodes[x]
		for id, v := range n.Chi {
			if n.parent != None && t.nodes[n.parent].Chi.Has(v) {
				continue
			}
			tops[id]++
		}
	}
	for _, v := range h.Vertices() {
		if tops[v.ID] > 1 {
			c.Satisfied, c.Vertex = false, v
			return c
		}
	}
	return c
}

func (t *Tree) checkLambdaCovers(nodes []Handle) Check {
	c := Check{Condition: CondLambdaCovers, Checked: true, Satisfied: true, Node: None}
	for _, x := range nodes {
		n := t.nodes[x]
		if !n.Chi.SubsetOf(hypergraph.VerticesOf(n.Lambda.Sorted()...)) {
			c.Satisfied, c.Node = false, x
			return c
		}
	}
	return c
}

func (t *Tree) checkSpecial(nodes []Handle, strict bool) Check {
	c := Check{Condition: CondSpecial, Checked: strict, Satisfied: true, Node: None}
	if !strict {
		return c
	}
	below := make(map[Handle]hypergraph.VertexSet, len(nodes))
	for _, x := range t.PostOrder(t.root) {
		s := t.nodes[x].Chi.Clone()
		for _, ch := range t.nodes[x].children {
			for id, v := range below[ch] {
				s[id] = v
			}
		}
		below[x] = s
	}
	for _, x := range nodes {
		n := t.nodes[x]
		vars := hypergraph.VerticesOf(n.Lambda.Sorted()...)
		if !vars.Intersect(below[x]).SubsetOf(n.Chi) {
			c.Satisfied, c.Node = false, x
			return c
		}
	}
	return c
}
