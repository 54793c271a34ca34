package graph_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

func ExampleWriteHypergraph() {
	h, _ := hypergraph.ParseHyperBench(strings.NewReader("r(x,y), s(y,z)."))
	_ = graph.WriteHypergraph(h, os.Stdout)
	// Output:
	// {
	//   "vertices": [
	//     "x",
	//     "y",
	//     "z"
	//   ],
	//   "edges": [
	//     {
	//       "name": "r",
	//       "vertices": [
	//         "x",
	//         "y"
	//       ]
	//     },
	//     {
	//       "name": "s",
	//       "vertices": [
	//         "y",
	//         "z"
	//       ]
	//     }
	//   ]
	// }
}

func ExampleLoad() {
	h, err := graph.Load(strings.NewReader(`{"edges": [{"name": "r", "vertices": ["a", "b"]}]}`), graph.FormatJSON)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Edges:", h.EdgeCount())
	fmt.Println("Vertices:", h.VertexCount())
	// Output:
	// Edges: 1
	// Vertices: 2
}
