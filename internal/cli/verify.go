package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
)

// verifyCommand creates the verify command for checking a stored
// decomposition against its hypergraph.
func (c *CLI) verifyCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "verify [hypergraph] [tree.json]",
		Short: "Check a decomposition against the hypertree conditions",
		Long: `Check a decomposition written by "htdecomp decompose" against its hypergraph.

Conditions 1 to 3 (edge covering, connectedness, lambda covers chi) are
always checked. The special condition is only checked with --strict.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, t, err := loadDecomposition(args[0], args[1])
			if err != nil {
				return err
			}
			strict = strict || c.cfg.Decompose.Strict
			loggerFromContext(cmd.Context()).Debug("verifying", "nodes", t.Size(), "strict", strict)

			report := graph.FromReport(pipeline.Verify(t, h, strict))
			printReport(report)
			if !report.OK {
				return errors.New(errors.ErrCodeVerifyFailed, "%s violates the hypertree conditions", args[1])
			}
			printSuccess("Valid decomposition of width %d", t.Width())
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also check the special condition")
	return cmd
}

// loadDecomposition reads a hypergraph and a tree over its edges.
func loadDecomposition(graphPath, treePath string) (*hypergraph.Hypergraph, *hypertree.Tree, error) {
	h, err := graph.ParseFile(graphPath)
	if err != nil {
		return nil, nil, err
	}
	t, err := graph.ReadTreeFile(treePath, h)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", treePath, err)
	}
	return h, t, nil
}
