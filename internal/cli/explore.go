package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// exploreCommand creates the explore command, an interactive browser over
// the nodes of a stored decomposition.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [hypergraph] [tree.json]",
		Short: "Browse a decomposition in the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := loadDecomposition(args[0], args[1])
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewTreeModel(t), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
