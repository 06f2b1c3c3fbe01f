// Package config loads .javagraph.yaml settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/DeusData/javagraph/internal/export"
)

// FileName is the config file picked up from the analyzed root.
const FileName = ".javagraph.yaml"

const (
	DefaultOutputDir        = "neo4j-import"
	DefaultNeo4jConcurrency = 4
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds user-overridable settings. Zero values mean "use the default";
// pointer fields distinguish an explicit false from unset.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	// Workers bounds the extraction pool. 0 means runtime.NumCPU().
	Workers  int    `yaml:"workers"`
	Database string `yaml:"database"`
	// Ignore holds extra glob patterns for paths to skip during discovery.
	Ignore               []string `yaml:"ignore"`
	RespectGitignore     *bool    `yaml:"respect_gitignore"`
	TolerateSyntaxErrors bool     `yaml:"tolerate_syntax_errors"`
	RelationshipLayout   string   `yaml:"relationship_layout"`
	LegacyEdgesFile      bool     `yaml:"legacy_edges_file"`
	SQLitePath           string   `yaml:"sqlite_path"`

	Neo4j Neo4jConfig `yaml:"neo4j"`
}

// Neo4jConfig configures the optional direct load into a running Neo4j.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// Concurrency bounds the number of in-flight write queries.
	Concurrency int `yaml:"concurrency"`
	// Reset deletes existing Package, Class, Method and Field nodes first.
	Reset bool `yaml:"reset"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{}
}

// Load reads FileName from dir. A missing file yields the defaults; a file
// that cannot be parsed is an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnv()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads an explicit config file, then applies environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the Neo4j connection settings from NEO4J_URI,
// NEO4J_USERNAME and NEO4J_PASSWORD when they are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		c.Neo4j.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Neo4j.Password = v
	}
}

// Validate checks enumerated and numeric fields.
func (c *Config) Validate() error {
	switch export.Layout(c.RelationshipLayout) {
	case "", export.LayoutByType, export.LayoutByIDSpace:
	default:
		return fmt.Errorf("%w: relationship_layout %q (want %s or %s)",
			ErrInvalid, c.RelationshipLayout, export.LayoutByType, export.LayoutByIDSpace)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if c.Neo4j.Concurrency < 0 {
		return fmt.Errorf("%w: neo4j.concurrency %d", ErrInvalid, c.Neo4j.Concurrency)
	}
	return nil
}

// EffectiveOutputDir returns the configured output directory or "neo4j-import".
func (c *Config) EffectiveOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return DefaultOutputDir
}

// EffectiveWorkers returns the configured pool size or runtime.NumCPU().
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c *Config) EffectiveDatabase() string {
	if c.Database != "" {
		return c.Database
	}
	return export.DefaultDatabase
}

// EffectiveRespectGitignore defaults to true.
func (c *Config) EffectiveRespectGitignore() bool {
	if c.RespectGitignore != nil {
		return *c.RespectGitignore
	}
	return true
}

func (c *Config) EffectiveLayout() export.Layout {
	if c.RelationshipLayout != "" {
		return export.Layout(c.RelationshipLayout)
	}
	return export.LayoutByType
}

// EffectiveNeo4jDatabase falls back to the bulk-import database name.
func (c *Config) EffectiveNeo4jDatabase() string {
	if c.Neo4j.Database != "" {
		return c.Neo4j.Database
	}
	return c.EffectiveDatabase()
}

func (c *Config) EffectiveNeo4jConcurrency() int {
	if c.Neo4j.Concurrency > 0 {
		return c.Neo4j.Concurrency
	}
	return DefaultNeo4jConcurrency
}
