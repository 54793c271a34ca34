package observability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Logging Hooks
// =============================================================================

// LogHooks writes pipeline, cache and HTTP events to a logger at debug
// level. Failed stages are logged as warnings.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)

func (h *LogHooks) OnParseStart(_ context.Context, format, source string) {
	h.Logger.Debug("parse started", "format", format, "source", source)
}

func (h *LogHooks) OnParseComplete(_ context.Context, format, source string, edgeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("parse failed", "format", format, "source", source, "err", err)
		return
	}
	h.Logger.Debug("parse complete", "format", format, "edges", edgeCount, "duration", d)
}

func (h *LogHooks) OnDecomposeStart(_ context.Context, algorithm string, k, edgeCount int) {
	h.Logger.Debug("decompose started", "algorithm", algorithm, "k", k, "edges", edgeCount)
}

func (h *LogHooks) OnDecomposeComplete(_ context.Context, algorithm string, width int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("decompose failed", "algorithm", algorithm, "err", err)
		return
	}
	h.Logger.Debug("decompose complete", "algorithm", algorithm, "width", width, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render started", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.Logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Error("request failed", "method", method, "path", path, "err", err)
}

// =============================================================================
// Search Counters
// =============================================================================

// SearchCounter counts search events. It is safe for concurrent use.
type SearchCounter struct {
	Separators atomic.Int64
	MemoHits   atomic.Int64
	Fallbacks  atomic.Int64
}

var _ SearchHooks = (*SearchCounter)(nil)

func (c *SearchCounter) OnSeparator(context.Context, string, int, int) { c.Separators.Add(1) }
func (c *SearchCounter) OnMemoHit(context.Context, string, bool)       { c.MemoHits.Add(1) }
func (c *SearchCounter) OnFallback(context.Context, string, string, int) {
	c.Fallbacks.Add(1)
}
