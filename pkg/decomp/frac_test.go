package decomp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

func TestFracTriangle(t *testing.T) {
	h := parse(t, triangleSrc)
	f := &FracImproveDecomp{Options: Options{K: 2, MinImprovement: 0.5}}
	tr, err := f.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	requireValid(t, h, tr, 2)
	assert.InDelta(t, 1.5, f.FractionalWidth(), 1e-6)

	for _, n := range tr.Nodes() {
		c := tr.Node(n).Cover
		require.NotNil(t, c, "every node carries its cover")
		assert.LessOrEqual(t, c.Weight, 1.5+1e-6)
	}
}

func TestFracNoImprovementPossible(t *testing.T) {
	// Some bag must hold all three vertices, whose cover weighs 1.5.
	h := parse(t, triangleSrc)
	f := &FracImproveDecomp{Options: Options{K: 2, MinImprovement: 0.6}}
	tr, err := f.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.Zero(t, f.FractionalWidth())
}

func TestFracPath(t *testing.T) {
	h := parse(t, pathSrc)
	f := &FracImproveDecomp{Options: Options{K: 1}}
	tr, err := f.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	requireValid(t, h, tr, 1)
	assert.InDelta(t, 1.0, f.FractionalWidth(), 1e-6)
}

func TestFracInvalidThreshold(t *testing.T) {
	h := parse(t, triangleSrc)
	for _, m := range []float64{-0.1, 2, 3} {
		f := &FracImproveDecomp{Options: Options{K: 2, MinImprovement: m}}
		_, err := f.FindDecomp(context.Background(), h)
		require.Error(t, err, "min improvement %g", m)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	}
}

// fixedProvider reports the same weight for every bag.
type fixedProvider float64

func (p fixedProvider) Compute(bag hypergraph.VertexSet, _ []*hypergraph.Edge) (fec.Cover, error) {
	return fec.Cover{Bag: bag, Weight: float64(p)}, nil
}

func TestFracUsesProvider(t *testing.T) {
	h := parse(t, pathSrc)
	f := &FracImproveDecomp{Options: Options{K: 2, MinImprovement: 1, FEC: fixedProvider(1.5)}}
	tr, err := f.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	assert.Nil(t, tr, "every bag is rejected")

	f.FEC = fixedProvider(0.5)
	tr, err = f.FindDecomp(context.Background(), h)
	require.NoError(t, err)
	requireValid(t, h, tr, 2)
	assert.InDelta(t, 0.5, f.FractionalWidth(), 1e-9)
}
