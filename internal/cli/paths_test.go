package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/htdecomp/pkg/config"
)

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, "htdecomp"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", "htdecomp"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestFileCacheDirFromConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(&bytes.Buffer{}, LogInfo)

	def, err := c.fileCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want, _ := cacheDir(); def != want {
		t.Errorf("fileCacheDir() without config = %q, want %q", def, want)
	}

	c.cfg.Cache.Dir = filepath.Join(t.TempDir(), "results")
	dir, err := c.fileCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != c.cfg.Cache.Dir {
		t.Errorf("fileCacheDir() = %q, want configured %q", dir, c.cfg.Cache.Dir)
	}
}

func TestNewCacheCreatesConfiguredDir(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Cache.Backend = config.CacheFile
	c.cfg.Cache.Dir = filepath.Join(t.TempDir(), "nested", "results")

	backend, err := c.newCache(context.Background(), false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	defer backend.Close()
	if info, err := os.Stat(c.cfg.Cache.Dir); err != nil || !info.IsDir() {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestNoCacheSkipsDir(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Cache.Dir = filepath.Join(t.TempDir(), "unused")

	backend, err := c.newCache(context.Background(), true)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	defer backend.Close()
	if _, err := os.Stat(c.cfg.Cache.Dir); !os.IsNotExist(err) {
		t.Errorf("--no-cache created %s: %v", c.cfg.Cache.Dir, err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		base, format, source, want string
	}{
		{"out/q", "svg", "data/q.hg", "out/q.svg"},
		{"data/q", "json", "data/q.hg", "data/q.json"},
		{"data/q", "json", "data/q.json", "data/q.tree.json"},
		{"data/q", "dot", "data/q.json", "data/q.dot"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.base, tt.format, tt.source); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.base, tt.format, tt.source, got, tt.want)
		}
	}
}
