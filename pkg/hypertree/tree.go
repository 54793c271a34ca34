package hypertree

import (
	"errors"
	"slices"

	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

var (
	// ErrInvalidHandle is returned when a handle does not name a live node.
	ErrInvalidHandle = errors.New("invalid node handle")

	// ErrHasParent is returned by [Tree.AddChild] when the child is still
	// attached elsewhere. Detach it first.
	ErrHasParent = errors.New("node already has a parent")

	// ErrCycle is returned by [Tree.AddChild] when the child is an ancestor
	// of the parent.
	ErrCycle = errors.New("operation would create a cycle")
)

// Handle addresses a node in a Tree.
type Handle int

// None is the handle of no node.
const None Handle = -1

// Node is one hypertree node.
type Node struct {
	Chi    hypergraph.VertexSet
	Lambda hypergraph.EdgeSet

	Cut    bool   // placeholder awaiting expansion
	Label  int    // recursion depth at which a cut was placed
	Anchor string // memo key of the subproblem a cut stands for

	// Super is the superedge of the subproblem a cut node stands for.
	Super *hypergraph.Edge
	// Cover is the fractional edge cover of Chi when one was computed.
	Cover *fec.Cover

	parent   Handle
	children []Handle
	dead     bool
}

// Tree is an arena of hypertree nodes.
//
// The zero value is not usable - use New.
type Tree struct {
	nodes []*Node
	root  Handle
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{root: None}
}

// NewNode allocates a detached node. Nil sets are replaced by empty ones.
func (t *Tree) NewNode(chi hypergraph.VertexSet, lambda hypergraph.EdgeSet) Handle {
	if chi == nil {
		chi = hypergraph.NewVertexSet()
	}
	if lambda == nil {
		lambda = hypergraph.NewEdgeSet()
	}
	t.nodes = append(t.nodes, &Node{Chi: chi, Lambda: lambda, parent: None})
	return Handle(len(t.nodes) - 1)
}

func (t *Tree) valid(h Handle) bool {
	return h >= 0 && int(h) < len(t.nodes) && !t.nodes[h].dead
}

// Node returns the node behind h, or nil.
func (t *Tree) Node(h Handle) *Node {
	if !t.valid(h) {
		return nil
	}
	return t.nodes[h]
}

// Root returns the root handle, or None for an empty tree.
func (t *Tree) Root() Handle { return t.root }

// SetRoot marks h as the root.
func (t *Tree) SetRoot(h Handle) error {
	if !t.valid(h) {
		return ErrInvalidHandle
	}
	t.root = h
	return nil
}

// Parent returns the parent of h, or None.
func (t *Tree) Parent(h Handle) Handle {
	if !t.valid(h) {
		return None
	}
	return t.nodes[h].parent
}

// Children returns the children of h in insertion order. The slice must not
// be modified.
func (t *Tree) Children(h Handle) []Handle {
	if !t.valid(h) {
		return nil
	}
	return t.nodes[h].children
}

// AddChild attaches the detached node child below parent.
func (t *Tree) AddChild(parent, child Handle) error {
	if !t.valid(parent) || !t.valid(child) {
		return ErrInvalidHandle
	}
	if t.nodes[child].parent != None {
		return ErrHasParent
	}
	for a := parent; a != None; a = t.nodes[a].parent {
		if a == child {
			return ErrCycle
		}
	}
	t.nodes[child].parent = parent
	t.nodes[parent].children = append(t.nodes[parent].children, child)
	return nil
}

// Detach unlinks h from its parent. h keeps its subtree.
func (t *Tree) Detach(h Handle) {
	if !t.valid(h) {
		return
	}
	n := t.nodes[h]
	if n.parent == None {
		return
	}
	p := t.nodes[n.parent]
	p.children = slices.DeleteFunc(p.children, func(c Handle) bool { return c == h })
	n.parent = None
}

// discard detaches h, moves nothing and marks it dead. Its children must
// already have been moved.
func (t *Tree) discard(h Handle) {
	t.Detach(h)
	if t.root == h {
		t.root = None
	}
	t.nodes[h].children = nil
	t.nodes[h].dead = true
}

// Reroot turns the tree containing h around so that h becomes its top node:
// every ancestor of h becomes a descendant along the reversed path. If the
// old top node was the tree root, h becomes the root.
func (t *Tree) Reroot(h Handle) error {
	if !t.valid(h) {
		return ErrInvalidHandle
	}
	path := []Handle{h}
	for p := t.nodes[h].parent; p != None; p = t.nodes[p].parent {
		path = append(path, p)
	}
	top := path[len(path)-1]

	for i := len(path) - 1; i > 0; i-- {
		parent, child := path[i], path[i-1]
		t.Detach(child)
		if err := t.AddChild(child, parent); err != nil {
			return err
		}
	}
	if t.root == top {
		t.root = h
	}
	return nil
}

// Splice moves every child of wrapper below into, in order, and discards
// wrapper. wrapper must not be an ancestor of into.
func (t *Tree) Splice(wrapper, into Handle) error {
	if !t.valid(wrapper) || !t.valid(into) {
		return ErrInvalidHandle
	}
	for a := into; a != None; a = t.nodes[a].parent {
		if a == wrapper {
			return ErrCycle
		}
	}
	for _, c := range slices.Clone(t.nodes[wrapper].children) {
		t.Detach(c)
		if err := t.AddChild(into, c); err != nil {
			return err
		}
	}
	t.discard(wrapper)
	return nil
}

// Replace puts the subtree rooted at the detached node with in the place of
// old, which is discarded together with its subtree.
func (t *Tree) Replace(old, with Handle) error {
	if !t.valid(old) || !t.valid(with) {
		return ErrInvalidHandle
	}
	if t.nodes[with].parent != None {
		return ErrHasParent
	}
	parent := t.nodes[old].parent
	if parent != None {
		p := t.nodes[parent]
		i := slices.Index(p.children, old)
		p.children[i] = with
		t.nodes[with].parent = parent
		t.nodes[old].parent = None
	}
	if t.root == old {
		t.root = with
	}
	for _, h := range t.PreOrder(old) {
		t.nodes[h].dead = true
	}
	return nil
}

// SetCut turns h into a cut placeholder.
func (t *Tree) SetCut(h Handle, anchor string, label int) {
	if n := t.Node(h); n != nil {
		n.Cut = true
		n.Anchor = anchor
		n.Label = label
	}
}

// PreOrder lists the subtree rooted at from, parents before children.
func (t *Tree) PreOrder(from Handle) []Handle {
	if !t.valid(from) {
		return nil
	}
	var out []Handle
	stack := []Handle{from}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, h)
		ch := t.nodes[h].children
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, ch[i])
		}
	}
	return out
}

// PostOrder lists the subtree rooted at from, children before parents.
func (t *Tree) PostOrder(from Handle) []Handle {
	var out []Handle
	var walk func(Handle)
	walk = func(h Handle) {
		for _, c := range t.nodes[h].children {
			walk(c)
		}
		out = append(out, h)
	}
	if t.valid(from) {
		walk(from)
	}
	return out
}

// Nodes lists the nodes reachable from the root in pre-order.
func (t *Tree) Nodes() []Handle { return t.PreOrder(t.root) }

// FindByLambda returns the first node in pre-order below from whose lambda
// contains e, skipping cut placeholders. It returns None if there is none.
func (t *Tree) FindByLambda(from Handle, e *hypergraph.Edge) Handle {
	for _, h := range t.PreOrder(from) {
		n := t.nodes[h]
		if !n.Cut && n.Lambda.Has(e) {
			return h
		}
	}
	return None
}

// FindCut returns the first cut node in pre-order below from, or None.
func (t *Tree) FindCut(from Handle) Handle {
	for _, h := range t.PreOrder(from) {
		if t.nodes[h].Cut {
			return h
		}
	}
	return None
}

// FindByAnchor returns the first cut node below from whose anchor is key.
func (t *Tree) FindByAnchor(from Handle, key string) Handle {
	for _, h := range t.PreOrder(from) {
		if n := t.nodes[h]; n.Cut && n.Anchor == key {
			return h
		}
	}
	return None
}

// Graft copies the subtree of src rooted at from into t and returns the
// detached copy of from. Sets are cloned; vertices and edges are shared.
func (t *Tree) Graft(src *Tree, from Handle) Handle {
	if !src.valid(from) {
		return None
	}
	var copyNode func(Handle) Handle
	copyNode = func(h Handle) Handle {
		n := src.nodes[h]
		c := t.NewNode(n.Chi.Clone(), n.Lambda.Clone())
		cn := t.nodes[c]
		cn.Cut, cn.Label, cn.Anchor, cn.Super, cn.Cover = n.Cut, n.Label, n.Anchor, n.Super, n.Cover
		for _, ch := range n.children {
			cc := copyNode(ch)
			t.nodes[cc].parent = c
			cn.children = append(cn.children, cc)
		}
		return c
	}
	return copyNode(from)
}

// Extract returns a compact tree holding a copy of the subtree rooted at
// from, numbered in pre-order.
func (t *Tree) Extract(from Handle) *Tree {
	out := New()
	if r := out.Graft(t, from); r != None {
		out.root = r
	}
	return out
}

// Size returns the number of nodes reachable from the root.
func (t *Tree) Size() int { return len(t.Nodes()) }

// Width returns the hypertree width: the largest lambda size.
func (t *Tree) Width() int {
	w := 0
	for _, h := range t.Nodes() {
		w = max(w, t.nodes[h].Lambda.Len())
	}
	return w
}

// TreeWidth returns the largest chi size minus one.
func (t *Tree) TreeWidth() int {
	w := 0
	for _, h := range t.Nodes() {
		w = max(w, t.nodes[h].Chi.Len())
	}
	return w - 1
}

// FractionalWidth returns the largest fractional cover weight among nodes
// that carry one, and false if none does.
func (t *Tree) FractionalWidth() (float64, bool) {
	w, ok := 0.0, false
	for _, h := range t.Nodes() {
		if c := t.nodes[h].Cover; c != nil {
			w, ok = max(w, c.Weight), true
		}
	}
	return w, ok
}

// ResolveEdges rewrites every lambda in terms of input edges: subedges
// become the edge they were cut from and superedges their underlying edges.
func (t *Tree) ResolveEdges() {
	for _, h := range t.Nodes() {
		n := t.nodes[h]
		resolved := hypergraph.NewEdgeSet()
		for _, e := range n.Lambda {
			resolved.Add(e.Resolve()...)
		}
		n.Lambda = resolved
	}
}
