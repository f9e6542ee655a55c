// Package config loads the relgraph configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/relgraph/config.toml unless
// a path is given explicitly. Every table is optional; missing values keep
// their defaults, and command-line flags override whatever the file sets.
//
//	[graph]
//	center_node_id = "42"
//	max_depth = 2
//	min_confidence = 0.3
//
//	[layout]
//	type = "force"
//	width = 800
//	height = 600
//
//	[layout.force]
//	iterations = 300
//
//	[viewport]
//	max_scale = 2.5
//	tap_timeout = "300ms"
//
//	[render]
//	formats = ["svg", "png"]
//	scale = 2
//
//	[cache]
//	backend = "redis"        # file | redis | none
//	redis_addr = "localhost:6379"
//
//	[source]
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "crm"
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/records"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the complete configuration file.
type Config struct {
	Graph    GraphConfig     `toml:"graph"`
	Layout   LayoutConfig    `toml:"layout"`
	Viewport viewport.Config `toml:"viewport"`
	Render   RenderConfig    `toml:"render"`
	Cache    CacheConfig     `toml:"cache"`
	Source   SourceConfig    `toml:"source"`
}

// GraphConfig holds build defaults.
type GraphConfig struct {
	CenterNodeID  string  `toml:"center_node_id"`
	MaxDepth      int     `toml:"max_depth"`
	MinConfidence float64 `toml:"min_confidence"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	Type   string        `toml:"type"`
	Width  float64       `toml:"width"`
	Height float64       `toml:"height"`
	Force  layout.Config `toml:"force"`
}

// RenderConfig holds output defaults.
type RenderConfig struct {
	Formats []string `toml:"formats"`
	Scale   float64  `toml:"scale"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	// RedisPassword is usually better left to RELGRAPH_REDIS_PASSWORD.
	RedisPassword string `toml:"redis_password"`
	KeyPrefix     string `toml:"key_prefix"`
}

// SourceConfig configures the MongoDB record source.
type SourceConfig struct {
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			MaxDepth:      pipeline.DefaultMaxDepth,
			MinConfidence: pipeline.DefaultMinConfidence,
		},
		Layout: LayoutConfig{
			Type:   pipeline.DefaultLayoutType,
			Width:  pipeline.DefaultWidth,
			Height: pipeline.DefaultHeight,
			Force:  layout.DefaultConfig(),
		},
		Viewport: viewport.DefaultConfig(),
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
			Scale:   pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: cache.DefaultRedisConfig().Addr,
			KeyPrefix: cache.DefaultRedisConfig().KeyPrefix,
		},
	}
}

// Dir returns the relgraph config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "relgraph")
}

// DefaultPath returns the path Load reads when given no path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the configuration at path over the defaults. An empty path
// reads DefaultPath and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no meaningful default.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Graph.MinConfidence < 0 || c.Graph.MinConfidence > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "graph.min_confidence must be in [0, 1], got %v", c.Graph.MinConfidence)
	}
	if c.Layout.Type != "" {
		if err := layout.ValidateType(c.Layout.Type); err != nil {
			return err
		}
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	vp := c.Viewport
	vp.SetDefaults()
	return vp.Validate()
}

// Apply copies the file's values into opts wherever opts is still unset.
// Callers apply flags first, so flags win.
func (c *Config) Apply(opts *pipeline.Options) {
	if opts.CenterNodeID == "" {
		opts.CenterNodeID = c.Graph.CenterNodeID
	}
	if opts.MaxDepth == nil {
		opts.MaxDepth = pipeline.Ptr(c.Graph.MaxDepth)
	}
	if opts.MinConfidence == nil {
		opts.MinConfidence = pipeline.Ptr(c.Graph.MinConfidence)
	}
	if opts.LayoutType == "" {
		opts.LayoutType = c.Layout.Type
	}
	if opts.Width == 0 {
		opts.Width = c.Layout.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Layout.Height
	}
	opts.Layout.SetDefaultsFrom(c.Layout.Force)
	if len(opts.Formats) == 0 {
		opts.Formats = append([]string(nil), c.Render.Formats...)
	}
	if opts.Scale == 0 {
		opts.Scale = c.Render.Scale
	}
}

// OpenCache creates the configured cache backend. A redis backend that
// cannot be reached is an error; callers decide whether to fall back.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc := cache.DefaultRedisConfig()
		if c.Cache.RedisAddr != "" {
			rc.Addr = c.Cache.RedisAddr
		}
		if c.Cache.KeyPrefix != "" {
			rc.KeyPrefix = c.Cache.KeyPrefix
		}
		rc.DB = c.Cache.RedisDB
		rc.Password = c.Cache.RedisPassword
		if pw := os.Getenv("RELGRAPH_REDIS_PASSWORD"); pw != "" {
			rc.Password = pw
		}
		return cache.NewRedisCache(ctx, rc)
	default:
		dir := c.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	}
}

// OpenSource returns the record source for a data argument. A mongodb://
// or mongodb+srv:// URI, or an empty argument with [source] configured,
// selects MongoDB; anything else is a file path.
func (c *Config) OpenSource(ctx context.Context, arg string) (records.Source, func() error, error) {
	uri := c.Source.MongoURI
	if isMongoURI(arg) {
		uri = arg
	} else if arg != "" {
		if err := errors.ValidatePath(arg); err != nil {
			return nil, nil, err
		}
		return records.NewFileSource(arg), func() error { return nil }, nil
	}
	if uri == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no data file given and no [source] mongo_uri configured")
	}
	src, err := records.NewMongoSource(ctx, records.MongoConfig{URI: uri, Database: c.Source.MongoDatabase})
	if err != nil {
		return nil, nil, err
	}
	return src, src.Close, nil
}

func isMongoURI(s string) bool {
	return strings.HasPrefix(s, "mongodb://") || strings.HasPrefix(s, "mongodb+srv://")
}
