package setcover

import (
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	v map[string]*hypergraph.Vertex
	e map[string]*hypergraph.Edge
}

func newFixture(defs map[string][]string) *fixture {
	f := &fixture{v: map[string]*hypergraph.Vertex{}, e: map[string]*hypergraph.Edge{}}
	id := 0
	names := slices.Sorted(maps.Keys(defs))
	for i, name := range names {
		var vs []*hypergraph.Vertex
		for _, vn := range defs[name] {
			v, ok := f.v[vn]
			if !ok {
				v = &hypergraph.Vertex{ID: id, Name: vn}
				id++
				f.v[vn] = v
			}
			vs = append(vs, v)
		}
		f.e[name] = hypergraph.NewEdge(i, name, vs...)
	}
	return f
}

func (f *fixture) vertices(names ...string) hypergraph.VertexSet {
	s := hypergraph.NewVertexSet()
	for _, n := range names {
		s.Add(f.v[n])
	}
	return s
}

func (f *fixture) edges(names ...string) []*hypergraph.Edge {
	out := make([]*hypergraph.Edge, len(names))
	for i, n := range names {
		out[i] = f.e[n]
	}
	return out
}

func edgeNames(es []*hypergraph.Edge) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func TestCovers(t *testing.T) {
	f := newFixture(map[string][]string{"e1": {"a", "b"}, "e2": {"c"}})

	assert.True(t, Covers(f.vertices("a", "c"), f.edges("e1", "e2")))
	assert.False(t, Covers(f.vertices("a", "c"), f.edges("e1")))
	assert.True(t, Covers(f.vertices(), nil))
}

func TestCoverPrefersLargeEdge(t *testing.T) {
	f := newFixture(map[string][]string{
		"big":   {"a", "b", "c", "d"},
		"left":  {"a", "b"},
		"right": {"c", "d"},
	})

	got, err := Cover(f.vertices("a", "b", "c", "d"), f.edges("left", "right", "big"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"big"}, edgeNames(got))
}

func TestCoverTakesUniqueEdges(t *testing.T) {
	f := newFixture(map[string][]string{
		"e1": {"a", "b"},
		"e2": {"b", "c"},
		"e3": {"c", "d"},
		"e4": {"a", "b", "c"},
	})

	// d is only in e3, so e3 must be chosen.
	got, err := Cover(f.vertices("a", "b", "c", "d"), f.edges("e1", "e2", "e3", "e4"), nil)
	require.NoError(t, err)
	assert.Contains(t, edgeNames(got), "e3")
	assert.Len(t, got, 2)
	assert.True(t, Covers(f.vertices("a", "b", "c", "d"), got))
}

func TestCoverUncoverable(t *testing.T) {
	f := newFixture(map[string][]string{"e1": {"a"}, "e2": {"z"}})

	_, err := Cover(f.vertices("a", "z"), f.edges("e1"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUncoverable))
}

func TestCoverEmpty(t *testing.T) {
	f := newFixture(map[string][]string{"e1": {"a"}})

	got, err := Cover(f.vertices(), f.edges("e1"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCoverAlwaysCovers(t *testing.T) {
	f := newFixture(map[string][]string{
		"e1": {"a", "b", "c"},
		"e2": {"c", "d", "e"},
		"e3": {"e", "f", "a"},
		"e4": {"b", "d", "f"},
		"e5": {"a", "d"},
		"e6": {"g", "a"},
	})
	all := f.edges("e1", "e2", "e3", "e4", "e5", "e6")
	want := f.vertices("a", "b", "c", "d", "e", "f", "g")

	for seed := uint64(0); seed < 25; seed++ {
		got, err := Cover(want, all, rand.New(rand.NewPCG(seed, seed)))
		require.NoError(t, err)
		assert.True(t, Covers(want, got), "seed %d", seed)
		assert.LessOrEqual(t, len(got), 3, "seed %d", seed)
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1].ID, got[i].ID, "result sorted by id")
		}
	}
}

func TestCoverIgnoresDuplicateCandidates(t *testing.T) {
	f := newFixture(map[string][]string{"e1": {"a", "b"}, "e2": {"b"}})

	got, err := Cover(f.vertices("a", "b"), f.edges("e1", "e1", "e2"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, edgeNames(got))
}
