// Package decomp searches for hypertree decompositions of bounded width.
//
// # Algorithms
//
// Five strategies implement [Algorithm]:
//
//   - [DetKDecomp] ("detk"): cover-based backtracking. Each subproblem is a
//     component plus the connector vertices it shares with its parent
//     separator. The search enumerates edge sets covering the connector,
//     pruning branches that can no longer cover it, and recurses into the
//     components each separator leaves.
//   - [BalKDecomp] ("balsep"): balanced separators. Each subproblem is split
//     by k edges into components of at most half its size. The separator is
//     folded into a superedge so that each child hypergraph remembers where
//     its decomposition has to be attached.
//   - [FracImproveDecomp] ("frac"): DetKDecomp restricted to bags whose
//     fractional edge cover weight stays below a threshold.
//   - [GlobalBIPDecomp] ("globalbip"): DetKDecomp over the input extended
//     by all subedges up front instead of retrying failed separators.
//   - [RankFHDecomp] ("rankfh"): fractional hypertree decompositions built
//     from vertex separators. Bags grow one vertex at a time and are
//     accepted when their fractional cover weighs at most K.
//
// All strategies return a nil tree and a nil error when no decomposition of
// the requested width exists. Errors signal cancellation, invalid input or a
// broken internal invariant.
//
// # Run State
//
// Everything a search creates lives in the state of one FindDecomp call: the
// [Registry] of synthetic superedges and subedges, the memo tables and the
// node arena. Algorithm values hold only options and may be reused.
//
// # Bounded Intersections
//
// When BIP is enabled, a separator that fails is retried with some of its
// edges replaced by subedges: intersections of an edge with up to k of its
// neighbours. See [Registry.Subedges] and [SubedgeSeparators].
package decomp
