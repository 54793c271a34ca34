package decomp

import "github.com/matzehuels/htdecomp/pkg/hypergraph"

// SubedgeSeparators enumerates the separators obtained from a failed
// separator by replacing some of its edges with their subedges.
//
// Position i of every produced separator holds either the i-th separator
// edge or one of its subedges that touches the component. The enumeration
// counts like an odometer with the first position varying fastest and
// skips the failed separator itself.
type SubedgeSeparators struct {
	options [][]*hypergraph.Edge
	state   []int
	done    bool
}

// NewSubedgeSeparators prepares the enumeration for sep over the component
// edges comp.
func NewSubedgeSeparators(r *Registry, comp, sep []*hypergraph.Edge) *SubedgeSeparators {
	verts := hypergraph.VerticesOf(comp...)
	f := &SubedgeSeparators{
		options: make([][]*hypergraph.Edge, len(sep)),
		state:   make([]int, len(sep)),
	}
	for i, e := range sep {
		opts := []*hypergraph.Edge{e}
		for _, sub := range r.Subedges(e) {
			if touches(sub, verts) {
				opts = append(opts, sub)
			}
		}
		f.options[i] = opts
	}
	return f
}

// Next returns the next separator, or nil when every combination has been
// produced.
func (f *SubedgeSeparators) Next() []*hypergraph.Edge {
	if f.done {
		return nil
	}
	for i := range f.state {
		f.state[i]++
		if f.state[i] < len(f.options[i]) {
			sep := make([]*hypergraph.Edge, len(f.state))
			for j, s := range f.state {
				sep[j] = f.options[j][s]
			}
			return sep
		}
		f.state[i] = 0
	}
	f.done = true
	return nil
}

func touches(e *hypergraph.Edge, vs hypergraph.VertexSet) bool {
	for _, v := range e.Vertices {
		if vs.Has(v) {
			return true
		}
	}
	return false
}
