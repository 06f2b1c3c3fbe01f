package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/javagraph/internal/export"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "neo4j-import", cfg.EffectiveOutputDir())
	assert.Equal(t, runtime.NumCPU(), cfg.EffectiveWorkers())
	assert.Equal(t, "java-knowledge", cfg.EffectiveDatabase())
	assert.True(t, cfg.EffectiveRespectGitignore())
	assert.False(t, cfg.TolerateSyntaxErrors)
	assert.Equal(t, export.LayoutByType, cfg.EffectiveLayout())
	assert.Equal(t, "java-knowledge", cfg.EffectiveNeo4jDatabase())
	assert.Equal(t, 4, cfg.EffectiveNeo4jConcurrency())
	assert.False(t, cfg.Neo4j.Reset)
	assert.Empty(t, cfg.SQLitePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
output_dir: out/graph
workers: 3
database: kb
ignore:
  - generated
  - "*.gen.java"
respect_gitignore: false
tolerate_syntax_errors: true
relationship_layout: by_id_space
legacy_edges_file: true
sqlite_path: graph.db
neo4j:
  uri: bolt://localhost:7687
  username: neo4j
  database: graphdb
  concurrency: 8
  reset: true
`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "out/graph", cfg.EffectiveOutputDir())
	assert.Equal(t, 3, cfg.EffectiveWorkers())
	assert.Equal(t, "kb", cfg.EffectiveDatabase())
	assert.Equal(t, []string{"generated", "*.gen.java"}, cfg.Ignore)
	assert.False(t, cfg.EffectiveRespectGitignore())
	assert.True(t, cfg.TolerateSyntaxErrors)
	assert.Equal(t, export.LayoutByIDSpace, cfg.EffectiveLayout())
	assert.True(t, cfg.LegacyEdgesFile)
	assert.Equal(t, "graph.db", cfg.SQLitePath)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "graphdb", cfg.EffectiveNeo4jDatabase())
	assert.Equal(t, 8, cfg.EffectiveNeo4jConcurrency())
	assert.True(t, cfg.Neo4j.Reset)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "not: [valid: yaml")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadInvalidLayout(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "relationship_layout: sideways\n")
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"zero", Config{}, true},
		{"by type", Config{RelationshipLayout: "by_type"}, true},
		{"negative workers", Config{Workers: -1}, false},
		{"negative concurrency", Config{Neo4j: Neo4jConfig{Concurrency: -5}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://env:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")
	dir := t.TempDir()
	writeConfig(t, dir, "neo4j:\n  uri: bolt://file:7687\n  username: file-user\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://env:7687", cfg.Neo4j.URI)
	assert.Equal(t, "file-user", cfg.Neo4j.Username)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
}
