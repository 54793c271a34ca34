// Package hypertree provides the result type of a decomposition: a rooted
// tree whose nodes carry a vertex bag (chi) and a covering edge set (lambda).
//
// # Arena
//
// Nodes live in a [Tree] arena and are addressed by [Handle]. Parent links
// are handles, not pointers, so subtrees can be detached, rerooted and
// spliced without ownership bookkeeping. A decomposition run builds all of
// its nodes in one arena and finally calls [Tree.Extract] to obtain a
// compact tree holding only the nodes reachable from the result root.
//
// # Cut Nodes
//
// A cut node is a placeholder for a subproblem that is known to be solvable
// but has not been expanded yet. It records the recursion depth in
// [Node.Label] and a lookup key in [Node.Anchor]. Search strategies replace
// every cut node before returning a tree.
//
// # Rewrites
//
// [Tree.Shrink], [Tree.ReduceLambda], [Tree.ElimCovEdges], [Tree.SetLambda]
// and [Tree.ResetLambda] are independent tree rewrites used after search.
// None of them changes a chi bag except Shrink, which contracts tree edges.
//
// # Verification
//
// [Tree.Verify] checks the four hypertree conditions against the input
// hypergraph and returns a [Report] with a witness for every violated
// condition. It never mutates the tree.
package hypertree
