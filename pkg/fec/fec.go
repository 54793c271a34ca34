// Package fec computes fractional edge covers of vertex bags.
//
// A fractional edge cover of a bag assigns each candidate edge a weight in
// [0,1] such that every bag vertex is covered with total weight at least 1.
// The minimum total weight is the bag's fractional cover number, the
// quantity FracImprove decompositions bound per node.
//
// Decomposition code depends only on the [Provider] contract. [LPProvider]
// solves the linear program with gonum's simplex implementation.
package fec

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Cover is a fractional edge cover of Bag. Edges and Weights are parallel;
// only edges with non-zero weight are listed.
type Cover struct {
	Bag     hypergraph.VertexSet
	Edges   []*hypergraph.Edge
	Weights []float64
	Weight  float64
}

// Provider computes a minimum fractional edge cover of bag using the given
// candidate edges.
type Provider interface {
	Compute(bag hypergraph.VertexSet, candidates []*hypergraph.Edge) (Cover, error)
}

// DefaultTolerance is the simplex tolerance used when LPProvider.Tol is zero.
const DefaultTolerance = 1e-10

// LPProvider solves
//
//	min  sum_e x_e
//	s.t. sum_{e ∋ v} x_e >= 1   for every v in the bag
//	     x_e >= 0
//
// in standard form with one surplus variable per bag vertex. The x_e <= 1
// bound is implied at the optimum and left out.
type LPProvider struct {
	Tol float64
}

var _ Provider = LPProvider{}

// Compute implements Provider.
func (p LPProvider) Compute(bag hypergraph.VertexSet, candidates []*hypergraph.Edge) (Cover, error) {
	cover := Cover{Bag: bag}
	if bag.Len() == 0 {
		return cover, nil
	}

	vertices := bag.Sorted()
	edges := relevant(bag, candidates)
	if !bag.SubsetOf(hypergraph.VerticesOf(edges...)) {
		missing := bag.Minus(hypergraph.VerticesOf(edges...))
		return Cover{}, errors.New(errors.ErrCodeUncoverable, "bag vertices %v not covered by any candidate", hypergraph.Names(missing))
	}

	m, n := len(vertices), len(edges)
	a := mat.NewDense(m, n+m, nil)
	b := make([]float64, m)
	c := make([]float64, n+m)
	for j := range n {
		c[j] = 1
	}
	for i, v := range vertices {
		b[i] = 1
		for j, e := range edges {
			if e.Has(v) {
				a.Set(i, j, 1)
			}
		}
		a.Set(i, n+i, -1)
	}

	tol := p.Tol
	if tol == 0 {
		tol = DefaultTolerance
	}
	opt, x, err := lp.Simplex(c, a, b, tol, nil)
	if err != nil {
		return Cover{}, errors.Wrap(errors.ErrCodeInternal, err, "fractional edge cover LP over %d vertices", m)
	}

	for j, e := range edges {
		if w := x[j]; w > 1e-9 {
			cover.Edges = append(cover.Edges, e)
			cover.Weights = append(cover.Weights, math.Min(w, 1))
		}
	}
	cover.Weight = opt
	return cover, nil
}

// relevant returns the distinct candidates touching the bag, ordered by id.
func relevant(bag hypergraph.VertexSet, candidates []*hypergraph.Edge) []*hypergraph.Edge {
	set := hypergraph.NewEdgeSet()
	for _, e := range candidates {
		for _, v := range e.Vertices {
			if bag.Has(v) {
				set.Add(e)
				break
			}
		}
	}
	out := set.Sorted()
	return slices.Clip(out)
}

// Incident returns every edge of h containing a vertex of bag, ordered by id.
// It is the usual candidate list for Compute.
func Incident(h *hypergraph.Hypergraph, bag hypergraph.VertexSet) []*hypergraph.Edge {
	set := hypergraph.NewEdgeSet()
	for _, v := range bag {
		set.Add(h.Incident(v)...)
	}
	return set.Sorted()
}
