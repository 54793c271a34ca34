package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnParseStart(ctx, "hyperbench", "query.hg")
	p.OnParseComplete(ctx, "hyperbench", "query.hg", 12, time.Second, nil)
	p.OnDecomposeStart(ctx, "detk", 2, 12)
	p.OnDecomposeComplete(ctx, "detk", 2, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Search hooks
	s := NoopSearchHooks{}
	s.OnSeparator(ctx, "balsep", 1, 2)
	s.OnMemoHit(ctx, "balsep", true)
	s.OnFallback(ctx, "balsep", "detk", 3)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "decomp")
	c.OnCacheMiss(ctx, "decomp")
	c.OnCacheSet(ctx, "decomp", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/decompositions")
	h.OnResponse(ctx, "POST", "/v1/decompositions", 201, time.Second)
	h.OnError(ctx, "POST", "/v1/decompositions", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Search().(NoopSearchHooks); !ok {
		t.Error("Search() should return NoopSearchHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customSearch := &testSearchHooks{}
	SetSearchHooks(customSearch)
	if Search() != customSearch {
		t.Error("SetSearchHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Search().(NoopSearchHooks); !ok {
		t.Error("Reset() should restore NoopSearchHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSearchHooks{}
	SetSearchHooks(custom)
	SetSearchHooks(nil)

	if Search() != custom {
		t.Error("SetSearchHooks(nil) should be ignored")
	}

	Reset()
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testSearchHooks struct{ NoopSearchHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf)
	l.SetLevel(log.DebugLevel)
	h := NewLogHooks(l)
	ctx := context.Background()

	h.OnParseComplete(ctx, "hyperbench", "q.hg", 3, time.Millisecond, nil)
	h.OnDecomposeComplete(ctx, "detk", -1, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "decomp")
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"parse complete", "decompose failed", "boom", "cache hit", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchCounter(t *testing.T) {
	var c SearchCounter
	ctx := context.Background()
	c.OnSeparator(ctx, "detk", 0, 2)
	c.OnSeparator(ctx, "detk", 1, 1)
	c.OnMemoHit(ctx, "detk", true)
	c.OnFallback(ctx, "balsep", "detk", 3)

	if got := c.Separators.Load(); got != 2 {
		t.Errorf("Separators = %d, want 2", got)
	}
	if got := c.MemoHits.Load(); got != 1 {
		t.Errorf("MemoHits = %d, want 1", got)
	}
	if got := c.Fallbacks.Load(); got != 1 {
		t.Errorf("Fallbacks = %d, want 1", got)
	}
}
