// Package config loads htdecomp's TOML configuration file.
//
// Settings are layered: built-in defaults, then the file, then command-line
// flags (applied by the CLI). The file lives at
// $XDG_CONFIG_HOME/htdecomp/config.toml unless a path is given:
//
//	[decompose]
//	width = 3
//	algorithm = "balsep"
//	max_recursion = 4
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/htdecomp/pkg/cache"
	"github.com/matzehuels/htdecomp/pkg/decomp"
	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
	"github.com/matzehuels/htdecomp/pkg/store"
)

const appName = "htdecomp"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Decompose Decompose `toml:"decompose"`
	Cache     Cache     `toml:"cache"`
	Store     Store     `toml:"store"`
	Server    Server    `toml:"server"`
}

// Decompose holds the default search options.
type Decompose struct {
	Width          int      `toml:"width"`
	Algorithm      string   `toml:"algorithm"`
	Seed           uint64   `toml:"seed"`
	MaxRecursion   int      `toml:"max_recursion"`
	BIP            bool     `toml:"bip"`
	MinImprovement float64  `toml:"min_improvement"`
	Strict         bool     `toml:"strict"`
	Shrink         bool     `toml:"shrink"`
	Reduce         bool     `toml:"reduce"`
	Formats        []string `toml:"formats"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir,omitempty"` // empty: the XDG cache directory
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db,omitempty"`
	TTL           Duration `toml:"ttl"`
}

// Store selects where the server records runs.
type Store struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri,omitempty"`
	Database string `toml:"database,omitempty"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string   `toml:"addr"`
	Timeout      Duration `toml:"timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Decompose: Decompose{
			Width:     pipeline.DefaultWidth,
			Algorithm: pipeline.DefaultAlgorithm,
			Seed:      pipeline.DefaultSeed,
			Formats:   []string{pipeline.FormatJSON},
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     Duration{cache.TTLDecomp},
		},
		Store: Store{
			Backend:  store.BackendMemory,
			Database: store.DefaultDatabase,
		},
		Server: Server{
			Addr:         ":8080",
			Timeout:      Duration{2 * time.Minute},
			MaxBodyBytes: 4 << 20,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/htdecomp/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path reads the
// default location, where a missing file is not an error. Unknown keys are
// rejected so that typos do not pass silently.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) {
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ValidationError lists every invalid setting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var p []string
	add := func(format string, args ...any) { p = append(p, fmt.Sprintf(format, args...)) }

	d := c.Decompose
	if d.Width < 1 {
		add("decompose.width must be positive, got %d", d.Width)
	}
	if !slices.Contains(decomp.Names(), d.Algorithm) {
		add("decompose.algorithm %q is not one of %s", d.Algorithm, strings.Join(decomp.Names(), ", "))
	}
	if d.MaxRecursion < 0 {
		add("decompose.max_recursion must not be negative")
	}
	if d.MinImprovement < 0 {
		add("decompose.min_improvement must not be negative")
	}
	for _, f := range d.Formats {
		if !pipeline.ValidFormats[f] {
			add("decompose.formats: unknown format %q", f)
		}
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			add("cache.redis_addr is required for the redis backend")
		}
	default:
		add("cache.backend %q is not one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		add("cache.ttl must not be negative")
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendMongo:
		if c.Store.MongoURI == "" {
			add("store.mongo_uri is required for the mongo backend")
		}
	default:
		add("store.backend %q is not one of memory, mongo", c.Store.Backend)
	}

	if c.Server.Addr == "" {
		add("server.addr must not be empty")
	}
	if c.Server.Timeout.Duration <= 0 {
		add("server.timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		add("server.max_body_bytes must be positive")
	}

	if len(p) > 0 {
		return &ValidationError{Problems: p}
	}
	return nil
}

// Options returns pipeline options carrying the decompose defaults.
func (d Decompose) Options() pipeline.Options {
	return pipeline.Options{
		Width:          d.Width,
		Algorithm:      d.Algorithm,
		Seed:           d.Seed,
		MaxRecursion:   d.MaxRecursion,
		BIP:            d.BIP,
		MinImprovement: d.MinImprovement,
		Strict:         d.Strict,
		Shrink:         d.Shrink,
		Reduce:         d.Reduce,
		Formats:        slices.Clone(d.Formats),
	}
}
