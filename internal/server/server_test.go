package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/htdecomp/pkg/cache"
	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
	"github.com/matzehuels/htdecomp/pkg/store"
)

const triangle = "e1(v1,v2), e2(v2,v3), e3(v3,v1)."

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
	srv := httptest.NewServer(New(runner, store.NewMemoryStore(), nil, cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body any) (*http.Response, []byte) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+"/v1/decompositions", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp, readBody(t, resp)
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeRun(t *testing.T, data []byte) store.Run {
	t.Helper()
	var run store.Run
	if err := json.Unmarshal(data, &run); err != nil {
		t.Fatalf("decode run: %v\n%s", err, data)
	}
	return run
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("body = %s", body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestCreateAndGetRun(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, body := post(t, srv, map[string]any{"hypergraph": triangle, "width": 2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, body)
	}
	run := decodeRun(t, body)
	if run.ID == "" {
		t.Fatal("run has no ID")
	}
	if run.Status != store.StatusDecomposed {
		t.Errorf("Status = %q, want %q", run.Status, store.StatusDecomposed)
	}
	if run.Width != 2 {
		t.Errorf("Width = %d, want 2", run.Width)
	}
	if run.Tree == nil || run.Report == nil || !run.Report.OK {
		t.Errorf("want a verified tree, got tree=%v report=%v", run.Tree, run.Report)
	}
	if run.Params.Algorithm != pipeline.DefaultAlgorithm {
		t.Errorf("Params.Algorithm = %q, want default", run.Params.Algorithm)
	}

	resp, body = get(t, srv.URL+"/v1/decompositions/"+run.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if got := decodeRun(t, body); got.ID != run.ID || got.Width != 2 {
		t.Errorf("get returned %+v", got)
	}
}

func TestCreateRunWithoutDecomposition(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, body := post(t, srv, map[string]any{"hypergraph": triangle, "width": 1})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	run := decodeRun(t, body)
	if run.Status != store.StatusNoDecomposition {
		t.Errorf("Status = %q, want %q", run.Status, store.StatusNoDecomposition)
	}
	if run.Tree != nil {
		t.Error("run without decomposition carries a tree")
	}

	resp, _ = get(t, srv.URL+"/v1/decompositions/"+run.ID+"/dot")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("render status = %d, want 404", resp.StatusCode)
	}
}

func TestServerDefaults(t *testing.T) {
	srv := newTestServer(t, Config{Defaults: pipeline.Options{Width: 1}})
	_, body := post(t, srv, map[string]any{"hypergraph": triangle})
	if run := decodeRun(t, body); run.Params.Width != 1 || run.Status != store.StatusNoDecomposition {
		t.Errorf("defaults not applied: %+v", run.Params)
	}
}

func TestCreateRunRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, Config{MaxBodyBytes: 256})

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"not json", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing hypergraph", `{"width": 2}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"syntax error", `{"hypergraph": "e1(v1,"}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad width", `{"hypergraph": "e1(v1).", "width": -2}`, http.StatusBadRequest, errors.ErrCodeInvalidWidth},
		{"bad algorithm", `{"hypergraph": "e1(v1).", "algorithm": "hinge"}`, http.StatusBadRequest, errors.ErrCodeInvalidAlgorithm},
		{"too large", `{"hypergraph": "` + strings.Repeat("x", 512) + `"}`, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/decompositions", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			var e errorBody
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatal(err)
			}
			if e.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Error.Code, tt.code)
			}
		})
	}

	resp, body := get(t, srv.URL+"/v1/decompositions")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("rejected input was stored: %s", body)
	}
}

func TestListAndDeleteRuns(t *testing.T) {
	srv := newTestServer(t, Config{})
	for range 3 {
		post(t, srv, map[string]any{"hypergraph": triangle})
	}

	_, body := get(t, srv.URL+"/v1/decompositions?limit=2")
	var runs []store.Run
	if err := json.Unmarshal(body, &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}

	resp, _ := get(t, srv.URL+"/v1/decompositions?limit=x")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/decompositions/"+runs[0].ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp, _ = get(t, srv.URL+"/v1/decompositions/"+runs[0].ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted run status = %d, want 404", resp.StatusCode)
	}
	resp, _ = get(t, srv.URL+"/v1/decompositions/not-a-uuid")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("bad id status = %d, want 404", resp.StatusCode)
	}
}

func TestRenderRun(t *testing.T) {
	srv := newTestServer(t, Config{})
	_, body := post(t, srv, map[string]any{"hypergraph": triangle, "width": 2})
	run := decodeRun(t, body)

	resp, dot := get(t, srv.URL+"/v1/decompositions/"+run.ID+"/dot")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, dot)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(string(dot), "digraph G {") {
		t.Errorf("not a DOT document: %s", dot)
	}

	resp, _ = get(t, srv.URL+"/v1/decompositions/"+run.ID+"/gml")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeRunNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeInvalidWidth, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusServiceUnavailable},
		{errors.New(errors.ErrCodeCutNodeUnsolved, "x"), http.StatusInternalServerError},
		{errors.Wrap(errors.ErrCodeInternal, contextDeadline(), "search"), http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func contextDeadline() error {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	return ctx.Err()
}
