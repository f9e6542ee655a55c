package records

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/relgraph/pkg/errors"
)

// Format identifies a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the dataset format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset file %q (want .json, .yaml or .yml)", filepath.Base(path))
	}
}

// Read decodes a dataset from r.
//
// The document must be an object with "profiles" and "relationships" arrays:
//
//	{
//	  "profiles": [{"id": "1", "name": "Ada", "company": "Acme"}],
//	  "relationships": [
//	    {"source_profile_id": "1", "target_profile_id": "2",
//	     "relationship_type": "colleague", "confidence_score": 85}
//	  ]
//	}
//
// Read does not validate references between records; dangling relations are
// the graph builder's concern. Read does not close r.
func Read(r io.Reader, format Format) (Dataset, error) {
	var ds Dataset
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&ds); err != nil {
			return Dataset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json dataset")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&ds); err != nil && err != io.EOF {
			return Dataset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml dataset")
		}
	default:
		return Dataset{}, errors.New(errors.ErrCodeInvalidFormat, "unknown dataset format %q", format)
	}
	return ds, nil
}

// Write encodes ds to w.
func Write(w io.Writer, ds Dataset, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown dataset format %q", format)
	}
}

// FileSource loads a dataset from a local file.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}
	format, err := FormatFromPath(s.Path)
	if err != nil {
		return Dataset{}, err
	}
	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		return Dataset{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", s.Path)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// String returns the file path.
func (s *FileSource) String() string { return s.Path }

var _ Source = (*FileSource)(nil)
