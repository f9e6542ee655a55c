package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/matzehuels/relgraph/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalResult converts a built (and possibly laid-out) graph to JSON bytes.
func MarshalResult(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteResult(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalResult decodes and validates JSON bytes produced by MarshalResult.
func UnmarshalResult(data []byte) (*Result, error) {
	return ReadResult(bytes.NewReader(data))
}

// WriteResult writes a graph as indented JSON to w.
func WriteResult(r *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadResult decodes a graph from r and checks that it is well formed:
// node ids are unique and every link references existing nodes.
func ReadResult(r io.Reader) (*Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	if err := Validate(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// WriteFile writes a graph to a JSON file.
func WriteFile(r *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(r, f)
}

// ReadFile reads a graph from a JSON file.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadResult(f)
}

// Validate checks node id uniqueness and link referential integrity.
func Validate(r *Result) error {
	seen := make(map[string]bool, len(r.Nodes))
	for _, n := range r.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "node without id")
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate node %q", n.ID)
		}
		seen[n.ID] = true
	}
	for _, l := range r.Links {
		if !seen[l.Source] || !seen[l.Target] {
			return errors.New(errors.ErrCodeInvalidFormat, "link %q references unknown node", l.ID)
		}
	}
	return nil
}
