// Package cache stores built graphs, layouts and rendered artifacts between
// runs.
//
// # Backends
//
//   - [FileCache]: one JSON envelope per key under the user cache directory
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are content addressed. The pipeline hashes the dataset to key the
// built graph, hashes the graph to key its layout and hashes the layout to
// key each artifact, so a change anywhere upstream invalidates everything
// downstream without explicit eviction. [Keyer] produces the keys;
// [ScopedKeyer] prefixes them for isolation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Entry lifetimes.
const (
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// =============================================================================
// Keys
// =============================================================================

// GraphKeyOpts are the build options that change a built graph.
type GraphKeyOpts struct {
	CenterNodeID  string  `json:"center"`
	MaxDepth      int     `json:"max_depth"`
	MinConfidence float64 `json:"min_confidence"`
}

// LayoutKeyOpts are the layout options that change node positions.
type LayoutKeyOpts struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Config is the serialized layout.Config.
	Config string `json:"config"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale"`
}

// Keyer derives cache keys.
type Keyer interface {
	GraphKey(datasetHash string, opts GraphKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the upstream content hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey returns the key of a built graph.
func (DefaultKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return hashKey("graph", datasetHash, opts)
}

// LayoutKey returns the key of a laid-out graph.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey returns the key of a rendered artifact.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// keyVersion is mixed into every key. Bump it when a cached payload changes
// shape so old entries stop matching.
const keyVersion = 2

// hashKey returns "kind:sha256(version, parts)".
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(append([]any{keyVersion}, parts...))
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. The pipeline uses it as the
// content hash of datasets, graphs and layouts.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// KeyType returns the kind of a key produced by a Keyer ("graph", "layout",
// "artifact"), ignoring any scope prefix.
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "other"
	}
	return parts[len(parts)-2]
}
