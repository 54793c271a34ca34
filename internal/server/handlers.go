package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/htdecomp/pkg/buildinfo"
	"github.com/matzehuels/htdecomp/pkg/cache"
	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
	"github.com/matzehuels/htdecomp/pkg/store"
)

// decomposeRequest is the body of a submission. Fields left out keep the
// server defaults.
type decomposeRequest struct {
	// Hypergraph is the input text in Format.
	Hypergraph string `json:"hypergraph"`
	Format     string `json:"format"`

	Algorithm      string  `json:"algorithm"`
	Width          int     `json:"width"`
	Seed           uint64  `json:"seed"`
	MaxRecursion   int     `json:"max_recursion"`
	BIP            bool    `json:"bip"`
	MinImprovement float64 `json:"min_improvement"`
	Strict         bool    `json:"strict"`
	Shrink         bool    `json:"shrink"`
	Reduce         bool    `json:"reduce"`
	Auto           bool    `json:"auto"`
}

func (s *Server) newRequest() decomposeRequest {
	d := s.cfg.Defaults
	return decomposeRequest{
		Format:         hypergraphFormat(d.Format),
		Algorithm:      d.Algorithm,
		Width:          d.Width,
		Seed:           d.Seed,
		MaxRecursion:   d.MaxRecursion,
		BIP:            d.BIP,
		MinImprovement: d.MinImprovement,
		Strict:         d.Strict,
		Shrink:         d.Shrink,
		Reduce:         d.Reduce,
	}
}

func hypergraphFormat(f string) string {
	if f == "" {
		return graph.FormatHyperBench
	}
	return f
}

func (req decomposeRequest) options() pipeline.Options {
	return pipeline.Options{
		Input:          req.Hypergraph,
		Format:         req.Format,
		Algorithm:      req.Algorithm,
		Width:          req.Width,
		Seed:           req.Seed,
		MaxRecursion:   req.MaxRecursion,
		BIP:            req.BIP,
		MinImprovement: req.MinImprovement,
		Strict:         req.Strict,
		Shrink:         req.Shrink,
		Reduce:         req.Reduce,
		Auto:           req.Auto,
		Formats:        []string{pipeline.FormatJSON},
	}
}

func paramsOf(opts pipeline.Options) store.Params {
	return store.Params{
		Algorithm:      opts.Algorithm,
		Width:          opts.Width,
		Seed:           opts.Seed,
		MaxRecursion:   opts.MaxRecursion,
		BIP:            opts.BIP,
		MinImprovement: opts.MinImprovement,
		Strict:         opts.Strict,
		Shrink:         opts.Shrink,
		Reduce:         opts.Reduce,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// createRun decomposes the submitted hypergraph and stores the outcome.
// Invalid input is rejected without a record; a search that fails after
// parsing is stored with status failed.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	req := s.newRequest()
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Hypergraph == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "hypergraph is required"))
		return
	}

	opts := req.options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := pipeline.Parse(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	run := &store.Run{
		Params:     paramsOf(opts),
		Hypergraph: graph.FromHypergraph(h),
	}
	searchErr := s.decompose(r.Context(), run, h, opts)
	if err := s.store.Save(r.Context(), run); err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if searchErr != nil {
		s.hooks.OnError(r.Context(), r.Method, r.URL.Path, searchErr)
		status = statusFor(searchErr)
	}
	writeJSON(w, status, run)
}

// decompose runs the search with the server timeout and fills in the
// outcome fields of run. The returned error is also recorded in run.
func (s *Server) decompose(ctx context.Context, run *store.Run, h *hypergraph.Hypergraph, opts pipeline.Options) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() { run.DurationMS = time.Since(start).Milliseconds() }()

	data, err := graph.MarshalHypergraph(h)
	if err != nil {
		run.Status, run.Error = store.StatusFailed, err.Error()
		return err
	}
	t, _, _, err := s.runner.DecomposeWithCacheInfo(ctx, h, cache.Hash(data), opts)
	switch {
	case err != nil:
		run.Status, run.Error = store.StatusFailed, errors.UserMessage(err)
		s.logger.Warn("decomposition failed", "err", err)
		return err
	case t == nil:
		run.Status = store.StatusNoDecomposition
	default:
		run.Status = store.StatusDecomposed
		run.Width = t.Width()
		gt := graph.FromTree(t)
		report := graph.FromReport(pipeline.Verify(t, h, opts.Strict))
		run.Tree, run.Report = &gt, &report
	}
	return nil
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderRun draws the decomposition of a stored run in the format named by
// the last path segment.
func (s *Server) renderRun(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if run.Tree == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "run %s has no decomposition", run.ID))
		return
	}

	h, err := graph.ToHypergraph(run.Hypergraph)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "rebuild hypergraph"))
		return
	}
	t, err := graph.ToTree(*run.Tree, h)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "rebuild tree"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()
	opts := pipeline.Options{
		Formats:  []string{format},
		Detailed: r.URL.Query().Get("detailed") == "true",
	}
	artifacts, err := s.runner.Render(ctx, t, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}
