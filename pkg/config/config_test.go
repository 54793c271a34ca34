package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/htdecomp/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Decompose.Width)
	assert.Equal(t, "detk", cfg.Decompose.Algorithm)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[decompose]
width = 3
algorithm = "balsep"
max_recursion = 4
formats = ["json", "svg"]

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "1h"

[server]
timeout = "30s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Decompose.Width)
	assert.Equal(t, "balsep", cfg.Decompose.Algorithm)
	assert.Equal(t, 4, cfg.Decompose.MaxRecursion)
	assert.Equal(t, []string{"json", "svg"}, cfg.Decompose.Formats)
	assert.Equal(t, uint64(1), cfg.Decompose.Seed, "unset keys keep their defaults")
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL.Duration)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout.Duration)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err, "a missing default file is not an error")
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadDefaultLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "htdecomp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "htdecomp", "config.toml"), []byte("[decompose]\nwidth = 5\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Decompose.Width)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "[decompose]\nwidht = 3\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
	assert.Contains(t, err.Error(), "decompose.widht")
}

func TestLoadSyntaxError(t *testing.T) {
	_, err := Load(writeConfig(t, "[decompose\n"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestValidateAggregates(t *testing.T) {
	cfg := Default()
	cfg.Decompose.Width = 0
	cfg.Decompose.Algorithm = "hinge"
	cfg.Decompose.Formats = []string{"gml"}
	cfg.Cache.Backend = "redis"
	cfg.Store.Backend = "mongo"
	cfg.Server.Addr = ""

	err := cfg.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 6)
	assert.Contains(t, err.Error(), "decompose.width")
	assert.Contains(t, err.Error(), "store.mongo_uri")
}

func TestLoadValidates(t *testing.T) {
	_, err := Load(writeConfig(t, "[cache]\nbackend = \"s3\"\n"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 1)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Decompose.Width = 4
	cfg.Cache.TTL = Duration{90 * time.Minute}

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	assert.Contains(t, buf.String(), `ttl = "1h30m0s"`)

	back, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestDecomposeOptions(t *testing.T) {
	d := Default().Decompose
	d.BIP = true
	opts := d.Options()
	assert.Equal(t, d.Width, opts.Width)
	assert.Equal(t, d.Algorithm, opts.Algorithm)
	assert.True(t, opts.BIP)

	opts.Formats[0] = "svg"
	assert.Equal(t, "json", d.Formats[0], "formats are copied")
}
