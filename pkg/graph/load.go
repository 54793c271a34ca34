package graph

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
)

// Input formats.
const (
	FormatHyperBench = "hyperbench"
	FormatJSON       = "json"
)

// ValidFormats is the set of supported input formats.
var ValidFormats = map[string]bool{
	FormatHyperBench: true,
	FormatJSON:       true,
}

// DetectFormat picks the input format from a file extension: ".json" is
// JSON, anything else HyperBench.
func DetectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatHyperBench
}

// Load reads a hypergraph in the given format. An empty format means
// HyperBench.
func Load(r io.Reader, format string) (*hypergraph.Hypergraph, error) {
	switch format {
	case FormatJSON:
		return ReadHypergraph(r)
	case FormatHyperBench, "":
		return hypergraph.ParseHyperBench(r)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q (valid: hyperbench, json)", format)
	}
}

// ParseFile reads the hypergraph stored at path, choosing the parser by
// extension.
func ParseFile(path string) (*hypergraph.Hypergraph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Load(f, DetectFormat(path))
}
