package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/htdecomp/pkg/cache"
	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the lifetime of decomposition and artifact entries
	// when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// decompEntry is the cached outcome of a search. Failed searches are cached
// too, as Found false.
type decompEntry struct {
	Found    bool        `json:"found"`
	Attempts int         `json:"attempts"`
	Tree     *graph.Tree `json:"tree,omitempty"`
}

// Execute runs parse, decompose, verify and render with caching. A search
// without result is not an error: the result then has a nil Tree and no
// artifacts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	// Stage 1: Parse
	start := time.Now()
	h, err := Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result := &Result{Hypergraph: h, Width: -1, Artifacts: map[string][]byte{}}
	result.Stats.ParseTime = time.Since(start)
	result.Stats.Vertices = h.VertexCount()
	result.Stats.Edges = h.EdgeCount()
	result.Warnings = inputWarnings(h)
	for _, w := range result.Warnings {
		r.Logger.Warn(w)
	}
	r.Logger.Info("parsed hypergraph",
		"vertices", h.VertexCount(),
		"edges", h.EdgeCount(),
		"duration", result.Stats.ParseTime)

	data, err := graph.MarshalHypergraph(h)
	if err != nil {
		return nil, fmt.Errorf("hash hypergraph: %w", err)
	}
	result.GraphHash = cache.Hash(data)

	// Stage 2: Decompose
	start = time.Now()
	t, attempts, hit, err := r.DecomposeWithCacheInfo(ctx, h, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	result.Stats.DecomposeTime = time.Since(start)
	result.Stats.Attempts = attempts
	result.CacheInfo.DecomposeHit = hit
	if t == nil {
		r.Logger.Info("no decomposition found",
			"algorithm", opts.Algorithm,
			"width", opts.Width,
			"duration", result.Stats.DecomposeTime)
		return result, nil
	}
	result.Tree = t
	result.Width = t.Width()
	result.Stats.Nodes = t.Size()
	r.Logger.Info("decomposed",
		"width", result.Width,
		"nodes", result.Stats.Nodes,
		"cached", hit,
		"duration", result.Stats.DecomposeTime)

	// Stage 3: Verify
	start = time.Now()
	report := Verify(t, h, opts.Strict)
	result.Report = &report
	result.Stats.VerifyTime = time.Since(start)
	for _, c := range report.Failed() {
		r.Logger.Error("condition violated", "condition", c.Condition, "witness", c.Witness())
	}

	// Stage 4: Render
	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = renderHit
	r.Logger.Debug("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)

	return result, nil
}

// DecomposeWithCacheInfo runs Decompose through the cache and reports
// whether the outcome came from it. graphHash is the content hash of h.
func (r *Runner) DecomposeWithCacheInfo(ctx context.Context, h *hypergraph.Hypergraph, graphHash string, opts Options) (*hypertree.Tree, int, bool, error) {
	if err := opts.ValidateForDecompose(); err != nil {
		return nil, 0, false, err
	}
	r.applyLogger(&opts)
	key := r.Keyer.DecompKey(graphHash, opts.DecompKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var e decompEntry
			if err := json.Unmarshal(data, &e); err == nil {
				if !e.Found {
					return nil, e.Attempts, true, nil
				}
				if e.Tree != nil {
					if t, err := graph.ToTree(*e.Tree, h); err == nil {
						return t, e.Attempts, true, nil
					}
				}
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", key)
		}
	}

	t, attempts, err := Decompose(ctx, h, opts)
	if err != nil {
		return nil, attempts, false, err
	}

	e := decompEntry{Found: t != nil, Attempts: attempts}
	if t != nil {
		gt := graph.FromTree(t)
		e.Tree = &gt
	}
	if data, err := json.Marshal(e); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLDecomp)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return t, attempts, false, nil
}

// Decompose is a convenience wrapper that calls DecomposeWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Decompose(ctx context.Context, h *hypergraph.Hypergraph, opts Options) (*hypertree.Tree, error) {
	data, err := graph.MarshalHypergraph(h)
	if err != nil {
		return nil, err
	}
	t, _, _, err := r.DecomposeWithCacheInfo(ctx, h, cache.Hash(data), opts)
	return t, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *hypertree.Tree, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	treeData, err := graph.MarshalTree(t)
	if err != nil {
		return nil, false, fmt.Errorf("serialize tree for cache key: %w", err)
	}
	treeHash := cache.Hash(treeData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if format == FormatJSON {
			artifacts[format] = treeData
			continue
		}
		key := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	render := opts
	render.Formats = slices.Clone(missing)
	rendered, err := Render(ctx, t, render)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact))
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, t *hypertree.Tree, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, t, opts)
	return artifacts, err
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil || opts.Logger == discard {
		opts.Logger = r.Logger
	}
}
