package decomp

import (
	"fmt"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Registry owns the synthetic edges of one decomposition run. Superedges and
// subedges are deduplicated by vertex set, and every synthetic edge gets an
// ID above the IDs of the input hypergraph.
type Registry struct {
	root   *hypergraph.Hypergraph
	k      int
	nextID int

	supers  map[string]*hypergraph.Edge // vertex key -> superedge
	subKeys map[string]*hypergraph.Edge // vertex key -> subedge
	subs    map[int][]*hypergraph.Edge  // edge ID -> its subedges
	nsub    int
}

// NewRegistry creates the registry for a run over root with width k.
func NewRegistry(root *hypergraph.Hypergraph, k int) *Registry {
	return &Registry{
		root:    root,
		k:       k,
		nextID:  root.MaxEdgeID() + 1,
		supers:  make(map[string]*hypergraph.Edge),
		subKeys: make(map[string]*hypergraph.Edge),
		subs:    make(map[int][]*hypergraph.Edge),
	}
}

func (r *Registry) allocID() int {
	id := r.nextID
	r.nextID++
	return id
}

// Superedge returns the superedge standing for sep inside a subproblem over
// the vertices comp. Its vertices are the separator vertices within comp.
// Separators that meet comp in the same vertices share one superedge.
func (r *Registry) Superedge(sep []*hypergraph.Edge, comp hypergraph.VertexSet) (*hypergraph.Edge, error) {
	vs := hypergraph.VerticesOf(sep...).Intersect(comp)
	if vs.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "separator %s does not touch its component", hypergraph.EdgesKey(sep))
	}
	key := vs.Key()
	if se, ok := r.supers[key]; ok {
		return se, nil
	}
	se := hypergraph.NewSuperedge(r.allocID(), fmt.Sprintf("SE%d", len(r.supers)+1), vs.Sorted(), sep)
	r.supers[key] = se
	return se, nil
}

// SuperedgeCount returns the number of distinct superedges created so far.
func (r *Registry) SuperedgeCount() int { return len(r.supers) }
