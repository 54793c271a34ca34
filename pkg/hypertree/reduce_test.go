package hypertree

import (
	"testing"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(tr *Tree) [][2]string {
	var out [][2]string
	for _, x := range tr.Nodes() {
		n := tr.Node(x)
		out = append(out, [2]string{n.Chi.Key(), n.Lambda.Key()})
	}
	return out
}

func TestShrinkByChi(t *testing.T) {
	h := pathGraph(t, 2)
	tr := New()
	r := leafNode(tr, h, "p0", "p1") // chi {a,b,c}
	dup := leafNode(tr, h, "p1")     // chi {b,c}, inside the parent
	leaf := leafNode(tr, h, "p1")
	require.NoError(t, tr.SetRoot(r))
	require.NoError(t, tr.AddChild(r, dup))
	require.NoError(t, tr.AddChild(dup, leaf))

	tr.Shrink(false)
	assert.Equal(t, 1, tr.Size())
	assert.True(t, tr.Verify(h, true).OK())

	before := snapshot(tr)
	tr.Shrink(false)
	assert.Equal(t, before, snapshot(tr), "idempotent")
}

func TestShrinkParentIntoChild(t *testing.T) {
	h := pathGraph(t, 3)
	tr := New()
	r := leafNode(tr, h, "p1")         // chi {b,c}
	big := leafNode(tr, h, "p0", "p1") // chi {a,b,c}, a superset of the parent
	other := leafNode(tr, h, "p2")     // chi {c,d}
	require.NoError(t, tr.SetRoot(r))
	require.NoError(t, tr.AddChild(r, big))
	require.NoError(t, tr.AddChild(big, other))

	tr.Shrink(false)
	require.Equal(t, 2, tr.Size())
	root := tr.Node(tr.Root())
	assert.Equal(t, 3, root.Chi.Len())
	assert.True(t, root.Lambda.Equal(hypergraph.NewEdgeSet(edge(h, "p0"), edge(h, "p1"))), "root takes the child's lambda")
	assert.True(t, tr.Verify(h, false).OK())
}

func TestShrinkByLambda(t *testing.T) {
	h := pathGraph(t, 2)
	tr := New()
	r := leafNode(tr, h, "p0", "p1")
	c := tr.NewNode(hypergraph.NewVertexSet(h.Vertices()[2]), hypergraph.NewEdgeSet(edge(h, "p1")))
	require.NoError(t, tr.SetRoot(r))
	require.NoError(t, tr.AddChild(r, c))

	tr.Shrink(true)
	assert.Equal(t, 1, tr.Size())
	assert.Equal(t, 2, tr.Width())
}

func TestShrinkKeepsIncomparable(t *testing.T) {
	h := pathGraph(t, 4)
	tr := chain(t, h)
	before := snapshot(tr)

	tr.Shrink(false)
	tr.Shrink(true)
	assert.Equal(t, before, snapshot(tr))
}

func TestReduceLambda(t *testing.T) {
	h := pathGraph(t, 4)
	tr := New()
	// Root carries a redundant edge: {b,c} is already covered by p1.
	r := tr.NewNode(hypergraph.VerticesOf(edge(h, "p1")), hypergraph.NewEdgeSet(edge(h, "p1"), edge(h, "p0"), edge(h, "p2")))
	c1 := leafNode(tr, h, "p0")
	c2 := leafNode(tr, h, "p2", "p3")
	require.NoError(t, tr.SetRoot(r))
	require.NoError(t, tr.AddChild(r, c1))
	require.NoError(t, tr.AddChild(r, c2))
	require.True(t, tr.Verify(h, false).OK())
	width := tr.Width()

	require.NoError(t, tr.ReduceLambda(nil))
	assert.LessOrEqual(t, tr.Width(), width)
	assert.True(t, tr.Verify(h, false).OK())

	before := snapshot(tr)
	require.NoError(t, tr.ReduceLambda(nil))
	assert.Equal(t, before, snapshot(tr), "idempotent")
}

func TestElimCovEdges(t *testing.T) {
	h := pathGraph(t, 3)
	tr := New()
	r := tr.NewNode(hypergraph.VerticesOf(edge(h, "p0")), hypergraph.NewEdgeSet(edge(h, "p0"), edge(h, "p1")))
	c := leafNode(tr, h, "p1", "p2")
	require.NoError(t, tr.SetRoot(r))
	require.NoError(t, tr.AddChild(r, c))

	require.NoError(t, tr.ElimCovEdges(nil))
	assert.Equal(t, 1, tr.Node(r).Lambda.Len())
	assert.True(t, tr.Node(r).Lambda.Has(edge(h, "p0")))
	assert.True(t, tr.Verify(h, false).OK())

	before := snapshot(tr)
	require.NoError(t, tr.ElimCovEdges(nil))
	assert.Equal(t, before, snapshot(tr), "idempotent")
}

func TestSetAndResetLambda(t *testing.T) {
	h := pathGraph(t, 3)
	tr := New()
	r := tr.NewNode(hypergraph.VerticesOf(edge(h, "p0"), edge(h, "p1")), nil)
	c := tr.NewNode(hypergraph.VerticesOf(edge(h, "p2")), hypergraph.NewEdgeSet(edge(h, "p0"), edge(h, "p1"), edge(h, "p2")))
	require.NoError(t, tr.SetRoot(r))
	require.NoError(t, tr.AddChild(r, c))

	require.NoError(t, tr.SetLambda(h, nil))
	assert.Equal(t, 2, tr.Node(r).Lambda.Len())
	assert.True(t, tr.Verify(h, false).OK())

	require.NoError(t, tr.ResetLambda(h, nil))
	assert.Equal(t, 1, tr.Node(c).Lambda.Len())
	assert.True(t, tr.Node(c).Lambda.Has(edge(h, "p2")))
}
