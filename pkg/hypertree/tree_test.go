package hypertree

import (
	"testing"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pathGraph builds p0(a,b), p1(b,c), ..., one edge per consecutive pair.
func pathGraph(t *testing.T, n int) *hypergraph.Hypergraph {
	t.Helper()
	vars := make([]string, n+1)
	for i := range vars {
		vars[i] = string(rune('a' + i))
	}
	atoms := make([]hypergraph.Atom, n)
	for i := range atoms {
		atoms[i] = hypergraph.Atom{Name: "p" + string(rune('0'+i)), Vars: []int{i, i + 1}}
	}
	h, err := hypergraph.Build(vars, atoms)
	require.NoError(t, err)
	return h
}

func edge(h *hypergraph.Hypergraph, name string) *hypergraph.Edge {
	e, _ := h.EdgeByName(name)
	return e
}

// leafNode adds a node whose lambda is the named edges and chi their vertices.
func leafNode(tr *Tree, h *hypergraph.Hypergraph, names ...string) Handle {
	lambda := hypergraph.NewEdgeSet()
	for _, n := range names {
		lambda.Add(edge(h, n))
	}
	return tr.NewNode(hypergraph.VerticesOf(lambda.Sorted()...), lambda)
}

// chain builds a path-shaped tree, one node per edge, rooted at p0.
func chain(t *testing.T, h *hypergraph.Hypergraph) *Tree {
	t.Helper()
	tr := New()
	prev := None
	for _, e := range h.Edges() {
		x := leafNode(tr, h, e.Name)
		if prev == None {
			require.NoError(t, tr.SetRoot(x))
		} else {
			require.NoError(t, tr.AddChild(prev, x))
		}
		prev = x
	}
	return tr
}

func TestAddChildErrors(t *testing.T) {
	tr := New()
	a := tr.NewNode(nil, nil)
	b := tr.NewNode(nil, nil)
	c := tr.NewNode(nil, nil)

	require.NoError(t, tr.AddChild(a, b))
	assert.ErrorIs(t, tr.AddChild(c, b), ErrHasParent)
	assert.ErrorIs(t, tr.AddChild(b, a), ErrCycle)
	assert.ErrorIs(t, tr.AddChild(a, Handle(42)), ErrInvalidHandle)
	assert.Equal(t, a, tr.Parent(b))
	assert.Equal(t, []Handle{b}, tr.Children(a))
}

func TestReroot(t *testing.T) {
	h := pathGraph(t, 4)
	tr := chain(t, h)
	nodes := tr.Nodes()
	require.Len(t, nodes, 4)

	require.NoError(t, tr.Reroot(nodes[2]))
	assert.Equal(t, nodes[2], tr.Root())
	assert.Equal(t, None, tr.Parent(nodes[2]))
	assert.ElementsMatch(t, []Handle{nodes[3], nodes[1]}, tr.Children(nodes[2]))
	assert.Equal(t, nodes[1], tr.Parent(nodes[0]))
	assert.Equal(t, 4, tr.Size())
	assert.True(t, tr.Verify(h, true).OK())
}

func TestSplice(t *testing.T) {
	h := pathGraph(t, 3)
	tr := New()
	top := leafNode(tr, h, "p0")
	wrapper := leafNode(tr, h, "p1")
	x := leafNode(tr, h, "p2")
	y := leafNode(tr, h, "p2")
	require.NoError(t, tr.SetRoot(top))
	require.NoError(t, tr.AddChild(wrapper, x))
	require.NoError(t, tr.AddChild(wrapper, y))

	require.NoError(t, tr.Splice(wrapper, top))
	assert.Equal(t, []Handle{x, y}, tr.Children(top))
	assert.Nil(t, tr.Node(wrapper), "wrapper is discarded")
	assert.ErrorIs(t, tr.Splice(top, x), ErrCycle)
}

func TestReplace(t *testing.T) {
	h := pathGraph(t, 3)
	tr := chain(t, h)
	nodes := tr.Nodes()
	with := leafNode(tr, h, "p1", "p2")

	require.NoError(t, tr.Replace(nodes[1], with))
	assert.Equal(t, []Handle{with}, tr.Children(nodes[0]))
	assert.Nil(t, tr.Node(nodes[2]), "the replaced subtree is discarded")
	assert.Equal(t, 2, tr.Size())
	assert.Equal(t, 2, tr.Width())
}

func TestFindByLambdaSkipsCuts(t *testing.T) {
	h := pathGraph(t, 3)
	tr := chain(t, h)
	nodes := tr.Nodes()
	p1 := edge(h, "p1")

	assert.Equal(t, nodes[1], tr.FindByLambda(tr.Root(), p1))
	tr.SetCut(nodes[1], "k", 2)
	assert.Equal(t, None, tr.FindByLambda(tr.Root(), p1))
	assert.Equal(t, nodes[1], tr.FindCut(tr.Root()))
	assert.Equal(t, nodes[1], tr.FindByAnchor(tr.Root(), "k"))
	assert.Equal(t, None, tr.FindByAnchor(tr.Root(), "other"))
	assert.Equal(t, 2, tr.Node(nodes[1]).Label)
}

func TestExtractCompacts(t *testing.T) {
	h := pathGraph(t, 4)
	tr := chain(t, h)
	_ = tr.NewNode(nil, nil) // unreachable garbage
	nodes := tr.Nodes()

	sub := tr.Extract(nodes[1])
	assert.Equal(t, 3, sub.Size())
	assert.Equal(t, []Handle{0, 1, 2}, sub.Nodes(), "pre-order numbering")

	// Copies are independent.
	sub.Node(0).Chi.Remove(h.Vertices()[1])
	assert.Equal(t, 2, tr.Node(nodes[1]).Chi.Len())
}

func TestGraft(t *testing.T) {
	h := pathGraph(t, 2)
	src := chain(t, h)
	dst := New()
	root := leafNode(dst, h, "p0")
	require.NoError(t, dst.SetRoot(root))

	g := dst.Graft(src, src.Nodes()[1])
	require.NotEqual(t, None, g)
	require.NoError(t, dst.AddChild(root, g))
	assert.Equal(t, 2, dst.Size())
	assert.Equal(t, None, dst.Graft(src, Handle(99)))
}

func TestWidths(t *testing.T) {
	h := pathGraph(t, 3)
	tr := New()
	r := leafNode(tr, h, "p0", "p1")
	c := leafNode(tr, h, "p2")
	require.NoError(t, tr.SetRoot(r))
	require.NoError(t, tr.AddChild(r, c))

	assert.Equal(t, 2, tr.Width())
	assert.Equal(t, 2, tr.TreeWidth())
	_, ok := tr.FractionalWidth()
	assert.False(t, ok)
}

func TestResolveEdges(t *testing.T) {
	h := pathGraph(t, 2)
	p0, p1 := edge(h, "p0"), edge(h, "p1")
	sub := hypergraph.NewEdge(10, "p0-1", p0.Vertices[1])
	sub.Origin = p0
	sup := hypergraph.NewSuperedge(11, "SE1", p1.Vertices, []*hypergraph.Edge{p1})

	tr := New()
	r := tr.NewNode(hypergraph.NewVertexSet(), hypergraph.NewEdgeSet(sub, sup))
	require.NoError(t, tr.SetRoot(r))
	tr.ResolveEdges()

	assert.True(t, tr.Node(r).Lambda.Equal(hypergraph.NewEdgeSet(p0, p1)))
}
