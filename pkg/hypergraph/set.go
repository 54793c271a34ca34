package hypergraph

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

type identified interface {
	comparable
	identity() int
}

// Set is an id-keyed set of vertices or edges.
type Set[T identified] map[int]T

// VertexSet is a set of vertices.
type VertexSet = Set[*Vertex]

// EdgeSet is a set of edges.
type EdgeSet = Set[*Edge]

// NewVertexSet returns a set holding vs.
func NewVertexSet(vs ...*Vertex) VertexSet {
	s := make(VertexSet, len(vs))
	s.Add(vs...)
	return s
}

// NewEdgeSet returns a set holding es.
func NewEdgeSet(es ...*Edge) EdgeSet {
	s := make(EdgeSet, len(es))
	s.Add(es...)
	return s
}

// Add inserts xs.
func (s Set[T]) Add(xs ...T) {
	for _, x := range xs {
		s[x.identity()] = x
	}
}

// Remove deletes xs.
func (s Set[T]) Remove(xs ...T) {
	for _, x := range xs {
		delete(s, x.identity())
	}
}

// Has reports membership.
func (s Set[T]) Has(x T) bool {
	_, ok := s[x.identity()]
	return ok
}

// Len returns the number of members.
func (s Set[T]) Len() int { return len(s) }

// Sorted returns the members ordered by id.
func (s Set[T]) Sorted() []T {
	ids := slices.Sorted(maps.Keys(s))
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = s[id]
	}
	return out
}

// Clone returns an independent copy.
func (s Set[T]) Clone() Set[T] {
	out := make(Set[T], len(s))
	maps.Copy(out, s)
	return out
}

// SubsetOf reports whether every member of s is in o.
func (s Set[T]) SubsetOf(o Set[T]) bool {
	if len(s) > len(o) {
		return false
	}
	for id := range s {
		if _, ok := o[id]; !ok {
			return false
		}
	}
	return true
}

// Equal reports set equality.
func (s Set[T]) Equal(o Set[T]) bool {
	return len(s) == len(o) && s.SubsetOf(o)
}

// Intersects reports whether s and o share a member.
func (s Set[T]) Intersects(o Set[T]) bool {
	if len(o) < len(s) {
		s, o = o, s
	}
	for id := range s {
		if _, ok := o[id]; ok {
			return true
		}
	}
	return false
}

// Intersect returns the members of s that are also in o.
func (s Set[T]) Intersect(o Set[T]) Set[T] {
	out := make(Set[T])
	for id, x := range s {
		if _, ok := o[id]; ok {
			out[id] = x
		}
	}
	return out
}

// Union returns the members of s and o.
func (s Set[T]) Union(o Set[T]) Set[T] {
	out := s.Clone()
	maps.Copy(out, o)
	return out
}

// Minus returns the members of s not in o.
func (s Set[T]) Minus(o Set[T]) Set[T] {
	out := make(Set[T])
	for id, x := range s {
		if _, ok := o[id]; !ok {
			out[id] = x
		}
	}
	return out
}

// Key is an order-independent signature: equal sets have equal keys.
func (s Set[T]) Key() string {
	return idKey(slices.Sorted(maps.Keys(s)))
}

// EdgesKey is the signature of the set of edges in es. Duplicates and order
// are ignored.
func EdgesKey(es []*Edge) string {
	ids := make([]int, len(es))
	for i, e := range es {
		ids[i] = e.ID
	}
	slices.Sort(ids)
	return idKey(slices.Compact(ids))
}

func idKey(ids []int) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// VerticesOf returns the union of the vertices of es.
func VerticesOf(es ...*Edge) VertexSet {
	s := make(VertexSet)
	for _, e := range es {
		s.Add(e.Vertices...)
	}
	return s
}

// Names returns the member names, sorted by id.
func Names[T interface {
	identified
	name() string
}](s Set[T]) []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, x := range sorted {
		out[i] = x.name()
	}
	return out
}

func (v *Vertex) name() string { return v.Name }
func (e *Edge) name() string   { return e.Name }
