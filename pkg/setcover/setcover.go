// Package setcover computes small edge sets covering a vertex set.
//
// [Cover] runs four greedy heuristics and keeps the smallest result:
//
//   - unit-first greedy, deterministic (lowest edge id wins ties)
//   - unit-first greedy, random tie-breaking
//   - weighted greedy, deterministic
//   - weighted greedy, random tie-breaking
//
// Both rules first take every edge that is the only candidate for some
// vertex. The unit rule then repeatedly picks the edge covering the most
// uncovered vertices. The weighted rule scores a vertex by one minus the
// fraction of candidate edges containing it, so rarely covered vertices pull
// harder, and picks the edge with the highest sum over its uncovered
// vertices.
package setcover

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Covers reports whether the union of edges contains every vertex.
func Covers(vertices hypergraph.VertexSet, edges []*hypergraph.Edge) bool {
	reach := hypergraph.VerticesOf(edges...)
	return vertices.SubsetOf(reach)
}

// Cover returns a small subset of edges whose union contains vertices,
// ordered by edge id. An uncoverable vertex set is a precondition violation
// and yields an UNCOVERABLE error. A nil rng uses a fixed seed.
func Cover(vertices hypergraph.VertexSet, edges []*hypergraph.Edge, rng *rand.Rand) ([]*hypergraph.Edge, error) {
	if !Covers(vertices, edges) {
		missing := vertices.Minus(hypergraph.VerticesOf(edges...))
		return nil, errors.New(errors.ErrCodeUncoverable, "vertices %v cannot be covered by %d edges",
			hypergraph.Names(missing), len(edges))
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}

	p := newProblem(vertices, edges)
	best := p.unitGreedy(nil)
	for _, candidate := range [][]*hypergraph.Edge{
		p.unitGreedy(rng),
		p.weightedGreedy(nil),
		p.weightedGreedy(rng),
	} {
		if len(candidate) < len(best) {
			best = candidate
		}
	}
	slices.SortFunc(best, func(a, b *hypergraph.Edge) int { return a.ID - b.ID })
	return best, nil
}

type problem struct {
	vertices []*hypergraph.Vertex
	edges    []*hypergraph.Edge
	incident map[int][]*hypergraph.Edge // vertex id -> candidate edges containing it
}

func newProblem(vertices hypergraph.VertexSet, edges []*hypergraph.Edge) *problem {
	p := &problem{
		vertices: vertices.Sorted(),
		incident: make(map[int][]*hypergraph.Edge),
	}
	seen := make(map[int]bool)
	for _, e := range edges {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		p.edges = append(p.edges, e)
		for _, v := range e.Vertices {
			if vertices.Has(v) {
				p.incident[v.ID] = append(p.incident[v.ID], e)
			}
		}
	}
	return p
}

// state tracks one heuristic run.
type state struct {
	p         *problem
	uncovered hypergraph.VertexSet
	chosen    []*hypergraph.Edge
	taken     map[int]bool
}

func (p *problem) newState() *state {
	return &state{p: p, uncovered: hypergraph.NewVertexSet(p.vertices...), taken: make(map[int]bool)}
}

// take selects e and returns the vertices it newly covers.
func (s *state) take(e *hypergraph.Edge) []*hypergraph.Vertex {
	s.taken[e.ID] = true
	s.chosen = append(s.chosen, e)
	var covered []*hypergraph.Vertex
	for _, v := range e.Vertices {
		if s.uncovered.Has(v) {
			s.uncovered.Remove(v)
			covered = append(covered, v)
		}
	}
	return covered
}

// takeUnique selects every edge that is the only candidate for a vertex.
func (s *state) takeUnique(onCover func(*hypergraph.Vertex)) {
	for _, v := range s.p.vertices {
		if !s.uncovered.Has(v) {
			continue
		}
		if inc := s.p.incident[v.ID]; len(inc) == 1 {
			for _, c := range s.take(inc[0]) {
				onCover(c)
			}
		}
	}
}

// pick chooses among tied candidates: lowest id without rng, uniform with.
func pick(cands []*hypergraph.Edge, rng *rand.Rand) *hypergraph.Edge {
	if rng != nil {
		return cands[rng.IntN(len(cands))]
	}
	return slices.MinFunc(cands, func(a, b *hypergraph.Edge) int { return a.ID - b.ID })
}

func (p *problem) unitGreedy(rng *rand.Rand) []*hypergraph.Edge {
	s := p.newState()
	s.takeUnique(func(*hypergraph.Vertex) {})

	var cands []*hypergraph.Edge
	for s.uncovered.Len() > 0 {
		best := 0
		cands = cands[:0]
		for _, e := range p.edges {
			if s.taken[e.ID] {
				continue
			}
			n := 0
			for _, v := range e.Vertices {
				if s.uncovered.Has(v) {
					n++
				}
			}
			switch {
			case n > best:
				best = n
				cands = append(cands[:0], e)
			case n == best && n > 0:
				cands = append(cands, e)
			}
		}
		s.take(pick(cands, rng))
	}
	return s.chosen
}

func (p *problem) weightedGreedy(rng *rand.Rand) []*hypergraph.Edge {
	s := p.newState()
	total := float64(len(p.edges))
	vw := make(map[int]float64, len(p.vertices))
	for _, v := range p.vertices {
		vw[v.ID] = 1 - float64(len(p.incident[v.ID]))/total
	}
	s.takeUnique(func(v *hypergraph.Vertex) { vw[v.ID] = 0 })

	ew := make(map[int]float64, len(p.edges))
	for _, v := range p.vertices {
		if !s.uncovered.Has(v) {
			continue
		}
		for _, e := range p.incident[v.ID] {
			if !s.taken[e.ID] {
				ew[e.ID] += vw[v.ID]
			}
		}
	}

	var cands []*hypergraph.Edge
	for s.uncovered.Len() > 0 {
		best := -1.0
		cands = cands[:0]
		for _, e := range p.edges {
			if s.taken[e.ID] || !coversAny(e, s.uncovered) {
				continue
			}
			switch w := ew[e.ID]; {
			case w > best:
				best = w
				cands = append(cands[:0], e)
			case w == best:
				cands = append(cands, e)
			}
		}
		for _, v := range s.take(pick(cands, rng)) {
			for _, e := range p.incident[v.ID] {
				if !s.taken[e.ID] {
					ew[e.ID] -= vw[v.ID]
				}
			}
			vw[v.ID] = 0
		}
	}
	return s.chosen
}

func coversAny(e *hypergraph.Edge, vs hypergraph.VertexSet) bool {
	for _, v := range e.Vertices {
		if vs.Has(v) {
			return true
		}
	}
	return false
}
