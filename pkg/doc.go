// Package pkg provides the libraries behind htdecomp, a search engine for
// hypertree decompositions of bounded width.
//
// # Overview
//
// A hypertree decomposition arranges the edges of a hypergraph, for example
// the query hypergraph of a conjunctive query, in a tree of bags. Its width
// bounds the cost of evaluating the query. The pkg directory is organized
// into four areas:
//
//  1. Model: [hypergraph] and [hypertree], with the set cover helpers in
//     [setcover] and fractional edge covers in [fec]
//  2. Search: [decomp] holds the det-k-decomp, balanced-separator and
//     fractional-improvement algorithms
//  3. Orchestration: [pipeline] runs parse, decompose, verify and render,
//     [graph] serializes inputs and results, [render] draws them
//  4. Infrastructure: [cache], [store], [config], [errors] and
//     [observability]
//
// # Architecture
//
// The typical data flow:
//
//	HyperBench / JSON input
//	         ↓
//	    [graph] package (parse into a hypergraph)
//	         ↓
//	    [decomp] package (search a decomposition of width ≤ k)
//	         ↓
//	    [hypertree] package (post-process and verify)
//	         ↓
//	    [render] package (DOT, SVG, PNG, PDF)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/htdecomp/pkg/decomp"
//	    "github.com/matzehuels/htdecomp/pkg/graph"
//	)
//
//	h, _ := graph.ParseFile("query.hg")
//	alg, _ := decomp.New(decomp.NameDetK, decomp.Options{K: 2})
//	tree, _ := alg.FindDecomp(ctx, h)
//	if tree != nil {
//	    report := tree.Verify(h, true)
//	    fmt.Println(tree.Width(), report.OK())
//	}
//
// [hypergraph]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/hypergraph
// [hypertree]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/hypertree
// [setcover]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/setcover
// [fec]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/fec
// [decomp]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/decomp
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/htdecomp/pkg/observability
package pkg
