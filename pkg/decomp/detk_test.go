package decomp

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

func TestDetKTriangle(t *testing.T) {
	h := parse(t, triangleSrc)

	d := &DetKDecomp{Options: Options{K: 1}}
	tr, err := d.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	assert.Nil(t, tr, "the triangle has no width-1 decomposition")

	d.SetWidth(2)
	tr, err = d.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	requireValid(t, h, tr, 2)
}

func TestDetKPath(t *testing.T) {
	h := parse(t, pathSrc)
	for seed := range uint64(5) {
		d := &DetKDecomp{Options: Options{K: 1, Rand: rand.New(rand.NewPCG(seed, seed))}}
		tr, err := d.FindDecomp(context.Background(), h)
		require.NoError(t, err)
		requireValid(t, h, tr, 1)
		assert.Equal(t, 4, tr.Size())
		for _, n := range tr.Nodes() {
			assert.Equal(t, 1, tr.Node(n).Lambda.Len())
		}
	}
}

func TestDetKCycle(t *testing.T) {
	h := parse(t, cycleSrc)
	rec := &recorder{}
	d := &DetKDecomp{Options: Options{K: 2, Hooks: rec}}
	tr, err := d.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	requireValid(t, h, tr, 2)
	assert.Positive(t, rec.separators)

	d.SetWidth(1)
	tr, err = d.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestDetKWithBIP(t *testing.T) {
	h := parse(t, cycleSrc)
	d := &DetKDecomp{Options: Options{K: 2, BIP: true}}
	tr, err := d.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	requireValid(t, h, tr, 2)

	d.SetWidth(1)
	tr, err = d.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	assert.Nil(t, tr, "subedges do not lower the width")
}

func TestDetKDeterministic(t *testing.T) {
	h := parse(t, cycleSrc)
	run := func() []string {
		d := &DetKDecomp{Options: Options{K: 2, Rand: rand.New(rand.NewPCG(7, 7))}}
		tr, err := d.FindDecomp(context.Background(), h)
		require.NoError(t, err)
		var out []string
		for _, n := range tr.Nodes() {
			out = append(out, tr.Node(n).Lambda.Key())
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestDetKDisconnected(t *testing.T) {
	h := parse(t, "a(x,y), b(y,z), c(u,w).")
	d := &DetKDecomp{Options: Options{K: 1}}
	tr, err := d.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	requireValid(t, h, tr, 1)
	assert.Equal(t, 3, tr.Size())
}

func TestDivide(t *testing.T) {
	h := parse(t, "p0(a,b), p1(b,c), p2(c,d), q(b,c,z).")
	s := newDetKSearch(nil, h, NewRegistry(h, 2), Options{K: 2})
	conn := vertices(t, h, "b", "c")

	inner, bound, compEnd := s.divide(edges(t, h, "p1", "p2"), conn)
	assert.Empty(t, inner)
	assert.Equal(t, 2, compEnd)
	assert.ElementsMatch(t, []string{"p1", "p2"}, edgeNames(bound[:compEnd]))
	// p0 only touches b, which q also holds, so p0 is dropped.
	assert.Equal(t, []string{"q"}, edgeNames(bound[compEnd:]))
}

func TestBoundaryWithin(t *testing.T) {
	h := parse(t, "p0(a,b), q(b,c,z).")
	conn := vertices(t, h, "b", "c")
	p0, q := edges(t, h, "p0")[0], edges(t, h, "q")[0]
	assert.True(t, boundaryWithin(p0, q, conn))
	assert.False(t, boundaryWithin(q, p0, conn))
}

func TestContainsAny(t *testing.T) {
	h := parse(t, pathSrc)
	set := hypergraph.NewEdgeSet(edges(t, h, "p0", "p1")...)
	assert.True(t, containsAny(set, edges(t, h, "p3", "p1")))
	assert.False(t, containsAny(set, edges(t, h, "p2")))
	assert.False(t, containsAny(set, nil))
}
