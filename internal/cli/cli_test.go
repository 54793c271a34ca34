package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/htdecomp/pkg/decomp"
	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/graph"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
	"github.com/matzehuels/htdecomp/pkg/store"
)

const triangle = "e1(v1,v2), e2(v2,v3), e3(v3,v1)."

// writeFixture writes a hypergraph and a config without caching to a
// fresh directory.
func writeFixture(t *testing.T, hg, cfg string) (dir, hgPath, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	hgPath = filepath.Join(dir, "query.hg")
	cfgPath = filepath.Join(dir, "config.toml")
	if err := os.WriteFile(hgPath, []byte(hg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgPath, []byte("[cache]\nbackend = \"none\"\n"+cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, hgPath, cfgPath
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	var logs bytes.Buffer
	root := New(&logs, log.InfoLevel).RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"decompose", "verify", "render", "explore", "serve", "runs", "cache", "config", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"json", []string{"json"}},
		{"JSON, svg ,,pdf", []string{"json", "svg", "pdf"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	if got := basePath("", "data/q.hg"); got != "data/q" {
		t.Errorf("basePath from input = %q", got)
	}
	if got := basePath("out/tree.svg", "data/q.hg"); got != "out/tree" {
		t.Errorf("basePath from output = %q", got)
	}
}

func TestDecomposeOptionsPrecedence(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.cfg.Decompose.Width = 3
	c.cfg.Decompose.Algorithm = decomp.NameBalK
	c.cfg.Decompose.Shrink = true

	cmd := c.decomposeCommand()
	if err := cmd.ParseFlags([]string{"-k", "4", "--reduce", "-f", "json,dot"}); err != nil {
		t.Fatal(err)
	}
	var flags decomposeFlags
	flags.width, flags.algorithm, flags.reduce, flags.formats = 4, pipeline.DefaultAlgorithm, true, "json,dot"
	opts := c.decomposeOptions(cmd, flags)

	if opts.Width != 4 {
		t.Errorf("Width = %d, want flag value 4", opts.Width)
	}
	if opts.Algorithm != decomp.NameBalK {
		t.Errorf("Algorithm = %q, want config value", opts.Algorithm)
	}
	if !opts.Shrink || !opts.Reduce {
		t.Errorf("Shrink = %v, Reduce = %v, want both set", opts.Shrink, opts.Reduce)
	}
	if !slices.Equal(opts.Formats, []string{"json", "dot"}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
}

func TestDecomposeVerifyRender(t *testing.T) {
	dir, hg, cfg := writeFixture(t, triangle, "")
	out := filepath.Join(dir, "out", "tri")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "--config", cfg, "decompose", hg, "-k", "2", "-f", "json,dot", "-o", out); err != nil {
		t.Fatalf("decompose: %v", err)
	}
	for _, ext := range []string{".json", ".dot"} {
		if _, err := os.Stat(out + ext); err != nil {
			t.Errorf("missing output %s: %v", out+ext, err)
		}
	}

	h, err := graph.ParseFile(hg)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := graph.ReadTreeFile(out+".json", h)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Width() != 2 {
		t.Errorf("width = %d, want 2", tree.Width())
	}

	if err := run(t, "--config", cfg, "verify", hg, out+".json", "--strict"); err != nil {
		t.Errorf("verify: %v", err)
	}
	if err := run(t, "--config", cfg, "render", hg, out+".json", "-f", "dot", "-o", filepath.Join(dir, "drawn")); err != nil {
		t.Errorf("render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "drawn.dot")); err != nil {
		t.Errorf("render output missing: %v", err)
	}
}

func TestDecomposeWithoutResult(t *testing.T) {
	dir, hg, cfg := writeFixture(t, triangle, "")
	if err := run(t, "--config", cfg, "decompose", hg, "-k", "1"); err != nil {
		t.Fatalf("decompose: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "query.json")); !os.IsNotExist(err) {
		t.Errorf("no output expected without decomposition, stat err = %v", err)
	}
}

func TestVerifyRejectsBrokenTree(t *testing.T) {
	dir, hg, cfg := writeFixture(t, triangle, "")
	// A single node over e1 covers neither e2 nor e3.
	broken := `{"width":1,"nodes":[{"id":0,"lambda":["e1"],"chi":["v1","v2"]}],"edges":[]}`
	treePath := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(treePath, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}
	err := run(t, "--config", cfg, "verify", hg, treePath)
	if !errors.Is(err, errors.ErrCodeVerifyFailed) {
		t.Errorf("verify error = %v, want VERIFY_FAILED", err)
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, hg, _ := writeFixture(t, triangle, "")
	err := run(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "decompose", hg)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConfigShow(t *testing.T) {
	_, _, cfg := writeFixture(t, triangle, "[decompose]\nwidth = 5\n")
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"--config", cfg, "config", "show"})
	root.SetOut(&out)
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "width = 5") {
		t.Errorf("config show output:\n%s", out.String())
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := run(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	// The written defaults load and validate.
	if err := run(t, "--config", path, "config", "show"); err != nil {
		t.Errorf("show after init: %v", err)
	}
	if err := run(t, "--config", path, "config", "init"); err != nil {
		t.Errorf("second init should only warn: %v", err)
	}
}

func TestTreeModelNavigation(t *testing.T) {
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(t.Context(), pipeline.Options{
		Input: "a(x,y), b(y,z), c(z,w).",
		Width: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found() {
		t.Fatalf("want a width-1 decomposition of the path, found=%v", res.Found())
	}

	m := NewTreeModel(res.Tree)
	if len(m.Rows) != res.Tree.Size() {
		t.Fatalf("rows = %d, want %d", len(m.Rows), res.Tree.Size())
	}
	if m.Rows[0].depth != 0 {
		t.Errorf("first row depth = %d, want 0", m.Rows[0].depth)
	}

	key := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
	next, _ := m.Update(key("G"))
	m = next.(TreeModel)
	if m.Cursor != len(m.Rows)-1 {
		t.Errorf("cursor after G = %d, want last row", m.Cursor)
	}
	next, _ = m.Update(key("p"))
	m = next.(TreeModel)
	if m.Rows[m.Cursor].handle != res.Tree.Parent(m.Rows[len(m.Rows)-1].handle) {
		t.Error("p did not move to the parent")
	}
	next, _ = m.Update(key("g"))
	m = next.(TreeModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", m.Cursor)
	}

	view := m.View()
	for _, want := range []string{"Hypertree Decomposition", "lambda", "chi"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestFormatReport(t *testing.T) {
	r := graph.Report{OK: false, Checks: []graph.CheckResult{
		{Condition: "edge covering", Checked: true, Satisfied: false, Witness: "edge e2"},
		{Condition: "special condition", Checked: false},
	}}
	out := formatReport(r)
	for _, want := range []string{"edge covering", "edge e2", "skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatRuns(t *testing.T) {
	runs := []*store.Run{
		{ID: "a1", Params: store.Params{Algorithm: "detk", Width: 2}, Status: store.StatusDecomposed, Width: 2},
		{ID: "b2", Params: store.Params{Algorithm: "balsep", Width: 1}, Status: store.StatusNoDecomposition},
	}
	out := formatRuns(runs)
	for _, want := range []string{"a1", "balsep", "no_decomposition"} {
		if !strings.Contains(out, want) {
			t.Errorf("runs table missing %q:\n%s", want, out)
		}
	}
}
