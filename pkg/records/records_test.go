package records

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/relgraph/pkg/errors"
)

const sampleJSON = `{
  "profiles": [
    {"id": "1", "name": "Ada Lovelace", "company": "Analytical"},
    {"id": "2", "name": "Charles Babbage", "company": "Analytical", "tags": ["inventor"]}
  ],
  "relationships": [
    {"source_profile_id": "1", "target_profile_id": "2", "relationship_type": "colleague",
     "relationship_strength": "strong", "confidence_score": 85, "status": "confirmed"},
    {"source_profile_id": "2", "target_profile_id": "1", "relationship_type": "friend",
     "confidence_score": "0.4"}
  ]
}`

const sampleYAML = `
profiles:
  - id: "1"
    name: Ada Lovelace
  - id: "2"
    name: Charles Babbage
relationships:
  - source_profile_id: "1"
    target_profile_id: "2"
    relationship_type: mentor
    confidence_score: 0.9
`

func TestRead(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		ds, err := Read(strings.NewReader(sampleJSON), FormatJSON)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if len(ds.Profiles) != 2 || len(ds.Relationships) != 2 {
			t.Fatalf("got %d profiles, %d relationships", len(ds.Profiles), len(ds.Relationships))
		}
		if got := ds.Relationships[0].ConfidenceScore; got != float64(85) {
			t.Errorf("confidence = %#v, want 85", got)
		}
		if got := ds.Relationships[1].ConfidenceScore; got != "0.4" {
			t.Errorf("confidence = %#v, want \"0.4\"", got)
		}
		if got := ds.Profiles[1].Tags; len(got) != 1 || got[0] != "inventor" {
			t.Errorf("tags = %v", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		ds, err := Read(strings.NewReader(sampleYAML), FormatYAML)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if len(ds.Profiles) != 2 || len(ds.Relationships) != 1 {
			t.Fatalf("got %d profiles, %d relationships", len(ds.Profiles), len(ds.Relationships))
		}
		if got := ds.Relationships[0].RelationshipType; got != "mentor" {
			t.Errorf("type = %q, want mentor", got)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Read(strings.NewReader("{"), FormatJSON)
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("err = %v, want INVALID_FORMAT", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Read(strings.NewReader("{}"), Format("xml"))
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("err = %v, want INVALID_FORMAT", err)
		}
	})
}

func TestWriteReadRoundTrip(t *testing.T) {
	in, err := Read(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	for _, format := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		if err := Write(&buf, in, format); err != nil {
			t.Fatalf("Write(%s): %v", format, err)
		}
		out, err := Read(&buf, format)
		if err != nil {
			t.Fatalf("Read(%s): %v", format, err)
		}
		if len(out.Profiles) != len(in.Profiles) || len(out.Relationships) != len(in.Relationships) {
			t.Errorf("%s: record counts changed", format)
		}
		if out.Profiles[0].Name != "Ada Lovelace" {
			t.Errorf("%s: name = %q", format, out.Profiles[0].Name)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"data.json", FormatJSON, false},
		{"data.YAML", FormatYAML, false},
		{"dir/data.yml", FormatYAML, false},
		{"data.csv", "", true},
		{"data", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) err = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0644); err != nil {
		t.Fatal(err)
	}

	ds, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p, ok := ds.Profile("2"); !ok || p.Name != "Charles Babbage" {
		t.Errorf("Profile(2) = %+v, %v", p, ok)
	}

	_, err = NewFileSource(filepath.Join(dir, "missing.json")).Load(context.Background())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileSource(path).Load(ctx); err == nil {
		t.Error("Load with cancelled context succeeded")
	}
}

func TestNewMongoSourceValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewMongoSource(ctx, MongoConfig{Database: "crm"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing uri err = %v", err)
	}
	if _, err := NewMongoSource(ctx, MongoConfig{URI: "mongodb://localhost"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing database err = %v", err)
	}
}
