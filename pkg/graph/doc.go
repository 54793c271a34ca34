// Package graph provides the JSON serialization of hypergraphs and
// hypertree decompositions.
//
// This package defines the wire format used for input files, API requests
// and responses, cached decompositions and stored runs.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory
// model and external formats:
//
//   - [Hypergraph], [Tree]: serialization types (this package)
//   - pkg/hypergraph.Hypergraph: internal hypergraph
//   - pkg/hypertree.Tree: internal decomposition arena
//
// Use [FromHypergraph]/[ToHypergraph] and [FromTree]/[ToTree] to convert
// between them.
//
// # Hypergraph Serialization
//
// Hypergraphs list their vertices and named edges:
//
//	{
//	  "vertices": ["a", "b", "c"],
//	  "edges": [
//	    {"name": "r", "vertices": ["a", "b"]},
//	    {"name": "s", "vertices": ["b", "c"]}
//	  ]
//	}
//
// The vertex list is optional. Vertices first seen in an edge are appended
// in order of appearance.
//
// # Tree Serialization
//
// Decompositions use a node-link format. Node IDs are pre-order positions,
// so the root is node 0:
//
//	{
//	  "width": 1,
//	  "nodes": [
//	    {"id": 0, "lambda": ["r"], "chi": ["a", "b"]},
//	    {"id": 1, "lambda": ["s"], "chi": ["b", "c"]}
//	  ],
//	  "edges": [{"from": 0, "to": 1}]
//	}
//
// Lambda and chi refer to the hypergraph by name, so [ToTree] needs the
// hypergraph the tree decomposes.
//
// # Loading Input
//
// [ParseFile] and [Load] read either format: HyperBench text or JSON.
//
//	h, err := graph.ParseFile("query.hg")
//	h, err := graph.Load(r, graph.FormatJSON)
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
