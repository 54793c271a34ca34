package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// =============================================================================
// Hypergraph Serialization API
// =============================================================================

// MarshalHypergraph converts a hypergraph to JSON bytes.
func MarshalHypergraph(h *hypergraph.Hypergraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(FromHypergraph(h), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHypergraph writes a hypergraph as JSON to w.
func WriteHypergraph(h *hypergraph.Hypergraph, w io.Writer) error {
	return encode(FromHypergraph(h), w)
}

// ReadHypergraph decodes a JSON hypergraph from r.
func ReadHypergraph(r io.Reader) (*hypergraph.Hypergraph, error) {
	var data Hypergraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode hypergraph")
	}
	return ToHypergraph(data)
}

// =============================================================================
// Tree Serialization API
// =============================================================================

// MarshalTree converts a decomposition to JSON bytes.
func MarshalTree(t *hypertree.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(FromTree(t), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTree writes a decomposition as JSON to w.
func WriteTree(t *hypertree.Tree, w io.Writer) error {
	return encode(FromTree(t), w)
}

// WriteTreeFile writes a decomposition to a JSON file.
func WriteTreeFile(t *hypertree.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return encode(FromTree(t), f)
}

// UnmarshalTree decodes JSON bytes into a decomposition of h.
func UnmarshalTree(data []byte, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	return ReadTree(bytes.NewReader(data), h)
}

// ReadTree decodes a JSON decomposition of h from r.
func ReadTree(r io.Reader, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	var data Tree
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}
	return ToTree(data, h)
}

// ReadTreeFile reads a JSON decomposition of h from path.
func ReadTreeFile(path string, h *hypergraph.Hypergraph) (*hypertree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadTree(f, h)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
