package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/observability"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
)

// decomposeFlags holds the command-line flags of the decompose command.
type decomposeFlags struct {
	width          int
	algorithm      string
	seed           uint64
	maxRecursion   int
	bip            bool
	minImprovement float64
	strict         bool
	shrink         bool
	reduce         bool
	auto           bool
	formats        string
	output         string
	inputFormat    string
	detailed       bool
	scale          float64
	noCache        bool
	refresh        bool
}

// decomposeCommand creates the decompose command for searching a hypertree
// decomposition of a hypergraph file.
func (c *CLI) decomposeCommand() *cobra.Command {
	var flags decomposeFlags

	cmd := &cobra.Command{
		Use:   "decompose [file]",
		Short: "Search a hypertree decomposition of bounded width",
		Long: `Search a hypertree decomposition of width at most k for a hypergraph.

The input is a HyperBench file (atom(var, ...) list) or a JSON hypergraph.
Results are cached; use --refresh to recompute or --no-cache to bypass the
cache entirely. Flags override values from the config file.

Algorithms:
  detk     cover-based backtracking (det-k-decomp)
  balsep   balanced separators with det-k-decomp below --max-recursion
  frac     det-k-decomp restricted to bags of fractional cover weight
           at most k - --min-improvement
  globalbip  det-k-decomp over the input plus all subedges, added up front
  rankfh   vertex separators bounding the fractional width by k`,
		Example: `  # Decompose with width 2, write query.json
  htdecomp decompose query.hg -k 2

  # Search the smallest width starting from 4 and draw it
  htdecomp decompose query.hg -k 4 --auto -f json,svg

  # Balanced separators with two levels of recursion
  htdecomp decompose query.hg -a balsep --max-recursion 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.decomposeOptions(cmd, flags)
			opts.Source = args[0]
			return c.runDecompose(cmd, opts, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.width, "width", "k", pipeline.DefaultWidth, "width bound")
	cmd.Flags().StringVarP(&flags.algorithm, "algorithm", "a", pipeline.DefaultAlgorithm, "search algorithm: detk, balsep, frac, globalbip, rankfh")
	cmd.Flags().Uint64Var(&flags.seed, "seed", pipeline.DefaultSeed, "seed for randomized edge ordering")
	cmd.Flags().IntVar(&flags.maxRecursion, "max-recursion", 0, "balsep levels before falling back to detk (0 = unbounded)")
	cmd.Flags().BoolVar(&flags.bip, "bip", false, "also try subedge separators (bounded intersection property)")
	cmd.Flags().Float64Var(&flags.minImprovement, "min-improvement", 0, "frac: required fractional improvement over k")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "also verify the special condition")
	cmd.Flags().BoolVar(&flags.shrink, "shrink", false, "merge nodes whose bag is contained in a neighbor's")
	cmd.Flags().BoolVar(&flags.reduce, "reduce", false, "drop redundant lambda edges and covered edges")
	cmd.Flags().BoolVar(&flags.auto, "auto", false, "lower the width after every success and report the smallest")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output formats: json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file base path (default: input name)")
	cmd.Flags().StringVar(&flags.inputFormat, "input-format", "", "input format: hyperbench, json (default: by extension)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "add node details to drawn labels")
	cmd.Flags().Float64Var(&flags.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute cached results")

	return cmd
}

// decomposeOptions merges the config file's decompose section with the
// flags that were set explicitly.
func (c *CLI) decomposeOptions(cmd *cobra.Command, flags decomposeFlags) pipeline.Options {
	opts := c.cfg.Decompose.Options()
	set := cmd.Flags().Changed

	if set("width") || opts.Width == 0 {
		opts.Width = flags.width
	}
	if set("algorithm") || opts.Algorithm == "" {
		opts.Algorithm = flags.algorithm
	}
	if set("seed") || opts.Seed == 0 {
		opts.Seed = flags.seed
	}
	if set("max-recursion") {
		opts.MaxRecursion = flags.maxRecursion
	}
	if set("min-improvement") {
		opts.MinImprovement = flags.minImprovement
	}
	opts.BIP = opts.BIP || flags.bip
	opts.Strict = opts.Strict || flags.strict
	opts.Shrink = opts.Shrink || flags.shrink
	opts.Reduce = opts.Reduce || flags.reduce
	if formats := parseFormats(flags.formats); len(formats) > 0 {
		opts.Formats = formats
	}

	opts.Algorithm = strings.ToLower(opts.Algorithm)
	opts.Format = flags.inputFormat
	opts.Auto = flags.auto
	opts.Detailed = flags.detailed
	opts.Scale = flags.scale
	opts.Refresh = flags.refresh
	return opts
}

func (c *CLI) runDecompose(cmd *cobra.Command, opts pipeline.Options, flags decomposeFlags) error {
	ctx := cmd.Context()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	counter := &observability.SearchCounter{}
	opts.Search = counter

	var spinner *Spinner
	prog := newProgress(c.Logger)
	if c.Logger.GetLevel() > LogDebug {
		spinner = newSearchSpinner(ctx, os.Stderr, fmt.Sprintf("Decomposing %s (k=%d, %s)...", opts.Source, opts.Width, opts.Algorithm), counter)
		spinner.Start()
	}
	result, err := runner.Execute(ctx, opts)
	if spinner != nil {
		switch {
		case err == nil:
			spinner.Stop()
		case spinner.Cancelled():
			spinner.StopWithError("Cancelled")
		default:
			spinner.StopWithError("Decomposition failed")
		}
	}
	if err != nil {
		return err
	}
	if spinner == nil {
		prog.done(fmt.Sprintf("Searched %d separators", counter.Separators.Load()))
	}

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}
	printStats(result.Stats.Vertices, result.Stats.Edges, result.CacheInfo.DecomposeHit)

	if !result.Found() {
		printError("No decomposition of width at most %d", opts.Width)
		printDetail("%d attempt(s), %s", result.Stats.Attempts, result.Stats.DecomposeTime.Round(time.Millisecond))
		return nil
	}

	printSuccess("Decomposition of width %s", StyleNumber.Render(fmt.Sprint(result.Width)))
	printDetail("%d nodes, tree width %d", result.Stats.Nodes, result.Tree.TreeWidth())
	if fw, ok := result.Tree.FractionalWidth(); ok {
		printDetail("fractional width %.3g", fw)
	}
	if opts.Auto {
		printDetail("%d attempt(s)", result.Stats.Attempts)
	}
	printReport(graph.FromReport(*result.Report))

	base := basePath(flags.output, opts.Source)
	formats := slices.Sorted(maps.Keys(result.Artifacts))
	for _, format := range formats {
		path := outputPath(base, format, opts.Source)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	if slices.Contains(formats, pipeline.FormatJSON) && !slices.Contains(formats, pipeline.FormatSVG) {
		printNewline()
		printNextStep("Draw it", fmt.Sprintf("htdecomp render %s %s.json -f svg", opts.Source, base))
	}
	return nil
}

// outputPath names the artifact of the given format. A JSON hypergraph input
// is never overwritten by the JSON tree.
func outputPath(base, format, source string) string {
	path := base + "." + format
	if path == source {
		return base + ".tree." + format
	}
	return path
}
