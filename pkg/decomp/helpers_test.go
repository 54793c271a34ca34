package decomp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

const (
	triangleSrc = "e1(v1,v2), e2(v2,v3), e3(v3,v1)."
	pathSrc     = "p0(a,b), p1(b,c), p2(c,d), p3(d,e)."
	cycleSrc    = "c0(v0,v1), c1(v1,v2), c2(v2,v3), c3(v3,v4), c4(v4,v5), c5(v5,v0)."
)

func parse(t *testing.T, src string) *hypergraph.Hypergraph {
	t.Helper()
	h, err := hypergraph.ParseHyperBench(strings.NewReader(src))
	require.NoError(t, err)
	return h
}

func edges(t *testing.T, h *hypergraph.Hypergraph, names ...string) []*hypergraph.Edge {
	t.Helper()
	out := make([]*hypergraph.Edge, len(names))
	for i, n := range names {
		e, ok := h.EdgeByName(n)
		require.True(t, ok, "edge %s", n)
		out[i] = e
	}
	return out
}

func vertices(t *testing.T, h *hypergraph.Hypergraph, names ...string) hypergraph.VertexSet {
	t.Helper()
	vs := hypergraph.NewVertexSet()
	for _, n := range names {
		v, ok := h.VertexByName(n)
		require.True(t, ok, "vertex %s", n)
		vs.Add(v)
	}
	return vs
}

func edgeNames(es []*hypergraph.Edge) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}
