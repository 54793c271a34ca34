package decomp

import (
	"context"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/fec"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/observability"
)

// Algorithm names accepted by [New].
const (
	NameDetK      = "detk"
	NameBalK      = "balsep"
	NameFrac      = "frac"
	NameGlobalBIP = "globalbip"
	NameRankFH    = "rankfh"
)

// Algorithm computes hypertree decompositions of width at most K.
// RankFHDecomp bounds the fractional width instead.
type Algorithm interface {
	Name() string
	SetWidth(k int)
	// FindDecomp returns a decomposition of h, or nil if none of the
	// configured width exists.
	FindDecomp(ctx context.Context, h *hypergraph.Hypergraph) (*hypertree.Tree, error)
}

// Options configures a search.
type Options struct {
	// K is the width bound.
	K int

	// MaxRecursion bounds the balanced-separator recursion depth. Deeper
	// subproblems are handed to DetKDecomp. Zero means no bound.
	MaxRecursion int

	// BIP retries failed separators with subedge separators.
	BIP bool

	// MinImprovement is how far below K every fractional bag cover must stay
	// (FracImproveDecomp only).
	MinImprovement float64

	// FEC computes fractional edge covers. Defaults to fec.LPProvider.
	FEC fec.Provider

	// Rand drives the edge orderings. Nil uses a fixed seed.
	Rand *rand.Rand

	Hooks  observability.SearchHooks
	Logger *log.Logger
}

func (o Options) hooks() observability.SearchHooks {
	if o.Hooks != nil {
		return o.Hooks
	}
	return observability.Search()
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

func (o Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewPCG(1, 1))
}

func (o Options) provider() fec.Provider {
	if o.FEC != nil {
		return o.FEC
	}
	return fec.LPProvider{}
}

var constructors = map[string]func(Options) Algorithm{
	NameDetK:      func(o Options) Algorithm { return &DetKDecomp{Options: o} },
	NameBalK:      func(o Options) Algorithm { return &BalKDecomp{Options: o} },
	NameFrac:      func(o Options) Algorithm { return &FracImproveDecomp{Options: o} },
	NameGlobalBIP: func(o Options) Algorithm { return &GlobalBIPDecomp{Options: o} },
	NameRankFH:    func(o Options) Algorithm { return &RankFHDecomp{Options: o} },
}

// Names lists the registered algorithm names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// New returns the algorithm registered under name.
func New(name string, opts Options) (Algorithm, error) {
	if err := errors.ValidateAlgorithm(name, Names()); err != nil {
		return nil, err
	}
	return constructors[name](opts), nil
}

// prepare validates the common preconditions of FindDecomp.
func prepare(ctx context.Context, h *hypergraph.Hypergraph, k int) error {
	if err := errors.ValidateWidth(k); err != nil {
		return err
	}
	if h == nil || h.EdgeCount() == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "hypergraph has no edges")
	}
	return ctx.Err()
}

// finish compacts the arena into the result tree and rewrites synthetic
// edges in terms of input edges.
func finish(t *hypertree.Tree, root hypertree.Handle) *hypertree.Tree {
	out := t.Extract(root)
	out.ResolveEdges()
	return out
}
