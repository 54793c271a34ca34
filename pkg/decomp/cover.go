package decomp

import (
	"slices"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// coverSearch enumerates selections of at most k boundary edges covering a
// connector, depth first with branch-and-bound pruning.
//
// Edges are sorted by the number of connector vertices they contain,
// largest first. weights[i] is the sum of those numbers over edges i..n-1,
// so weights[i]-weights[j] bounds what edges i..j-1 can still cover.
type coverSearch struct {
	k       int
	edges   []*hypergraph.Edge
	inComp  []bool
	weights []int
	target  hypergraph.VertexSet
	set     []int // positions of the current selection
}

// newCoverSearch prepares the search over bound, whose first compEnd edges
// belong to the component.
func newCoverSearch(k int, bound []*hypergraph.Edge, compEnd int, target hypergraph.VertexSet) *coverSearch {
	type item struct {
		e      *hypergraph.Edge
		inComp bool
		cov    int
	}
	items := make([]item, len(bound))
	for i, e := range bound {
		cov := 0
		for _, v := range e.Vertices {
			if target.Has(v) {
				cov++
			}
		}
		items[i] = item{e: e, inComp: i < compEnd, cov: cov}
	}
	slices.SortStableFunc(items, func(a, b item) int { return b.cov - a.cov })

	c := &coverSearch{
		k:       k,
		edges:   make([]*hypergraph.Edge, len(items)),
		inComp:  make([]bool, len(items)),
		weights: make([]int, len(items)),
		target:  target,
	}
	sum := 0
	for i := len(items) - 1; i >= 0; i-- {
		sum += items[i].cov
		c.edges[i], c.inComp[i], c.weights[i] = items[i].e, items[i].inComp, sum
	}
	return c
}

// first selects the first cover and returns its size, or -1 if the target
// cannot be covered.
func (c *coverSearch) first() int { return c.cover(false) }

// next resumes the search after the current selection. It rebuilds the
// search state from the selection, so the sequence of covers matches a
// single uninterrupted depth-first search.
func (c *coverSearch) next() int { return c.cover(true) }

// selected returns the edges of the current selection.
func (c *coverSearch) selected() []*hypergraph.Edge {
	out := make([]*hypergraph.Edge, len(c.set))
	for i, p := range c.set {
		out[i] = c.edges[p]
	}
	return out
}

// selectsInComp reports whether the current selection holds a component
// edge.
func (c *coverSearch) selectsInComp() bool {
	return slices.ContainsFunc(c.set, func(p int) bool { return c.inComp[p] })
}

func (c *coverSearch) cover(resume bool) int {
	count := make(map[int]int, c.target.Len())
	uncovered := c.target.Len()
	var sel []int
	inSel := 0

	take := func(p int) {
		sel = append(sel, p)
		if c.inComp[p] {
			inSel++
		}
		for _, v := range c.edges[p].Vertices {
			if c.target.Has(v) {
				if count[v.ID] == 0 {
					uncovered--
				}
				count[v.ID]++
			}
		}
	}
	drop := func() int {
		p := sel[len(sel)-1]
		sel = sel[:len(sel)-1]
		if c.inComp[p] {
			inSel--
		}
		for _, v := range c.edges[p].Vertices {
			if c.target.Has(v) {
				count[v.ID]--
				if count[v.ID] == 0 {
					uncovered++
				}
			}
		}
		return p
	}
	opens := func(p int) bool {
		for _, v := range c.edges[p].Vertices {
			if c.target.Has(v) && count[v.ID] == 0 {
				return true
			}
		}
		return false
	}

	pos := 0
	if resume {
		if len(c.set) == 0 {
			return -1
		}
		for _, p := range c.set[:len(c.set)-1] {
			take(p)
		}
		pos = c.set[len(c.set)-1] + 1
	} else if uncovered == 0 {
		c.set = nil
		return 0
	}

	n := len(c.edges)
	for {
		back := false
		for ; uncovered > 0; pos++ {
			var reach int
			switch i := pos + c.k - len(sel); {
			case i < n:
				reach = c.weights[pos] - c.weights[i]
			case pos < n:
				reach = c.weights[pos]
			}
			if reach < uncovered || reach == 0 {
				back = true
				break
			}
			// The last slot is reserved for a component edge.
			if (c.inComp[pos] || inSel > 0 || len(sel) < c.k-1) && opens(pos) {
				take(pos)
			}
		}
		if !back {
			break
		}
		if len(sel) == 0 {
			c.set = nil
			return -1
		}
		pos = drop() + 1
	}
	c.set = sel
	return len(sel)
}
