package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/htdecomp/pkg/pipeline"
)

// renderCommand creates the render command for drawing a stored
// decomposition.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formats  string
		output   string
		detailed bool
		scale    float64
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "render [hypergraph] [tree.json]",
		Short: "Draw a decomposition as DOT, SVG, PNG or PDF",
		Long: `Draw a decomposition written by "htdecomp decompose".

Each node is drawn as a box holding its lambda edges above its chi
vertices. SVG, PNG and PDF output is produced by Graphviz.`,
		Example: `  htdecomp render query.hg query.json -f svg,pdf`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, t, err := loadDecomposition(args[0], args[1])
			if err != nil {
				return err
			}

			opts := pipeline.Options{
				Formats:  parseFormats(formats),
				Detailed: detailed,
				Scale:    scale,
			}
			if len(opts.Formats) == 0 {
				opts.Formats = []string{pipeline.FormatSVG}
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSearchSpinner(ctx, os.Stderr, fmt.Sprintf("Drawing %d node(s)...", t.Size()), nil)
			spinner.Start()
			artifacts, hit, err := runner.RenderWithCacheInfo(ctx, t, opts)
			if err != nil {
				spinner.StopWithError("Drawing failed")
				return err
			}
			spinner.Stop()
			loggerFromContext(ctx).Debug("rendered", "formats", opts.Formats, "cached", hit)

			base := basePath(output, args[1])
			printSuccess("Rendered %d node(s)", t.Size())
			for _, format := range slices.Sorted(maps.Keys(artifacts)) {
				if format == pipeline.FormatJSON {
					continue
				}
				path := base + "." + format
				if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "format", "f", "", "output formats: dot, svg, png, pdf (default svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file base path (default: tree file name)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add node details to labels")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
