// Package pipeline runs the decomposition pipeline shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: read a hypergraph from a file or inline text
//  2. Decompose: search for a hypertree decomposition of bounded width
//  3. Verify: check the four hypertree conditions on the result
//  4. Render: write the tree as JSON, DOT, SVG, PNG or PDF
//
// Decompositions and rendered artifacts are cached under content-derived
// keys, so repeated runs with identical input and options are served from
// the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:    "query.hg",
//	    Width:     2,
//	    Algorithm: "detk",
//	    Formats:   []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Tree == nil {
//	    fmt.Println("no decomposition of width 2")
//	}
package pipeline

import (
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/htdecomp/pkg/cache"
	"github.com/matzehuels/htdecomp/pkg/decomp"
	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
	"github.com/matzehuels/htdecomp/pkg/observability"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the width bound used when none is given.
	DefaultWidth = 2

	// DefaultAlgorithm is the search used when none is given.
	DefaultAlgorithm = decomp.NameDetK

	// DefaultSeed drives edge orderings and set-cover tie breaking.
	DefaultSeed = uint64(1)

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Output format constants.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options. Input holds inline text and takes precedence over the
	// Source path. An empty Format is detected from Source.
	Source string `json:"source,omitempty"`
	Input  string `json:"input,omitempty"`
	Format string `json:"format,omitempty"`

	// Decompose options
	Algorithm      string  `json:"algorithm,omitempty"`
	Width          int     `json:"width,omitempty"`
	Seed           uint64  `json:"seed,omitempty"`
	MaxRecursion   int     `json:"max_recursion,omitempty"`
	BIP            bool    `json:"bip,omitempty"`
	MinImprovement float64 `json:"min_improvement,omitempty"`
	Shrink         bool    `json:"shrink,omitempty"`
	Reduce         bool    `json:"reduce,omitempty"`
	// Auto lowers the width bound after every success and reports the
	// smallest width found.
	Auto bool `json:"auto,omitempty"`

	// Verify options
	Strict bool `json:"strict,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Refresh bypasses cached decompositions and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger                 `json:"-"`
	Hooks  observability.PipelineHooks `json:"-"`
	Search observability.SearchHooks   `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Hypergraph is the parsed input.
	Hypergraph *hypergraph.Hypergraph

	// GraphHash is the content hash of the input's JSON serialization.
	GraphHash string

	// Tree is the decomposition found, or nil.
	Tree *hypertree.Tree

	// Width is the hypertree width of Tree, or -1 without one.
	Width int

	// Report holds the verification of Tree.
	Report *hypertree.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings lists conditions worth reporting that did not stop the run.
	Warnings []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Found reports whether a decomposition was found.
func (r *Result) Found() bool { return r.Tree != nil }

// Stats contains pipeline execution statistics.
type Stats struct {
	Vertices      int
	Edges         int
	Nodes         int
	Attempts      int // width bounds tried (more than one with Auto)
	ParseTime     time.Duration
	DecomposeTime time.Duration
	VerifyTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DecomposeHit bool
	RenderHit    bool // every requested artifact came from the cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid output format %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForDecompose(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the input fields and detects the input format.
func (o *Options) ValidateForParse() error {
	if o.Input == "" && o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "an input file or inline hypergraph is required")
	}
	if o.Format == "" {
		o.Format = graph.FormatHyperBench
		if o.Input == "" {
			o.Format = graph.DetectFormat(o.Source)
		}
	}
	if !graph.ValidFormats[o.Format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid input format %q (must be hyperbench or json)", o.Format)
	}
	o.setLogger()
	return nil
}

// ValidateForDecompose applies search defaults and checks the bounds.
func (o *Options) ValidateForDecompose() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	o.setLogger()
	if err := errors.ValidateWidth(o.Width); err != nil {
		return err
	}
	if err := errors.ValidateAlgorithm(o.Algorithm, decomp.Names()); err != nil {
		return err
	}
	if o.MaxRecursion < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max recursion must not be negative, got %d", o.MaxRecursion)
	}
	return nil
}

// ValidateForRender applies render defaults and checks the formats.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

// discard is the logger of options without one. Runners replace it by
// their own.
var discard = log.NewWithOptions(io.Discard, log.Options{})

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = discard
	}
}

func (o *Options) hooks() observability.PipelineHooks {
	if o.Hooks != nil {
		return o.Hooks
	}
	return observability.Pipeline()
}

// rng returns a fresh generator for the configured seed. Every stage that
// draws random numbers gets its own, so cached and computed runs agree.
func (o *Options) rng() *rand.Rand {
	return rand.New(rand.NewPCG(o.Seed, o.Seed))
}

// DecompOptions returns the search options for width k.
func (o *Options) DecompOptions(k int) decomp.Options {
	return decomp.Options{
		K:              k,
		MaxRecursion:   o.MaxRecursion,
		BIP:            o.BIP,
		MinImprovement: o.MinImprovement,
		Rand:           o.rng(),
		Hooks:          o.Search,
		Logger:         o.Logger,
	}
}

// DecompKeyOpts returns cache key options for a decomposition.
func (o *Options) DecompKeyOpts() cache.DecompKeyOpts {
	opts := cache.DecompKeyOpts{
		Algorithm:    o.Algorithm,
		Width:        o.Width,
		Seed:         o.Seed,
		MaxRecursion: o.MaxRecursion,
		BIP:          o.BIP,
		Shrink:       o.Shrink,
		Reduce:       o.Reduce,
	}
	if o.Algorithm == decomp.NameFrac {
		opts.MinImprovement = o.MinImprovement
	}
	if o.Auto {
		opts.Algorithm += "+auto"
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
