package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/htdecomp/pkg/store"
)

// runsCommand creates the runs command for inspecting the runs recorded
// by the HTTP server.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect runs recorded by the server",
		Long: `Inspect the runs recorded by "htdecomp serve".

Only a persistent store (store.backend = "mongo") holds runs across
processes.`,
	}
	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsDeleteCommand())
	return cmd
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				runs, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No runs recorded")
					return nil
				}
				fmt.Println(formatRuns(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs (0 = all)")
	return cmd
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted run %s", args[0])
				return nil
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	sc := c.cfg.Store
	if sc.Backend == store.BackendMemory {
		printWarning("store.backend is memory; runs are not kept between processes")
	}
	st, err := store.New(ctx, sc.Backend, sc.MongoURI, sc.Database)
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return fn(st)
}

// formatRuns renders runs as a table, newest first.
func formatRuns(runs []*store.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		width := "—"
		if r.Status == store.StatusDecomposed {
			width = fmt.Sprint(r.Width)
		}
		rows = append(rows, []string{
			r.ID,
			r.Params.Algorithm,
			fmt.Sprint(r.Params.Width),
			string(r.Status),
			width,
			fmt.Sprintf("%dms", r.DurationMS),
			formatRelativeTime(r.CreatedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Algorithm", "k", "Status", "Width", "Time", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch runs[row].Status {
			case store.StatusDecomposed:
				if col == 3 || col == 4 {
					return lipgloss.NewStyle().Foreground(colorGreen)
				}
			case store.StatusFailed:
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			if col == 0 || col == 6 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
