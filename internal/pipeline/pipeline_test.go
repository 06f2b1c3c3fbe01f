package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/javagraph/internal/config"
	"github.com/DeusData/javagraph/internal/graph"
	"github.com/DeusData/javagraph/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupTestRepo writes two classes in package a.b. C extends x.Base, which
// is never declared.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a", "b", "C.java"), `package a.b;
import x.Base;
public class C extends Base {
    void m(int a) {}
    String f;
}
`)
	writeFile(t, filepath.Join(dir, "src", "a", "b", "D.java"), "\ufeffpackage a.b;\nclass D extends C {}\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# not java\n")
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Workers = 2
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunEndToEnd(t *testing.T) {
	repo := setupTestRepo(t)
	cfg := testConfig(t)

	res, err := New(context.Background(), cfg, repo).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, map[string]int{"Package": 1, "Class": 2, "Method": 1, "Field": 1}, res.Nodes)
	assert.Equal(t, 7, res.Edges)
	assert.Nil(t, res.Neo4j)
	assert.Empty(t, res.SQLite)

	classes := readCSV(t, filepath.Join(cfg.OutputDir, "classes.csv"))
	require.Len(t, classes, 3)
	assert.Equal(t, []string{"nodeId:ID(Class)", "name", "endLine", "signature", "startLine", ":LABEL"}, classes[0])
	assert.Equal(t, []string{"a.b.C", "a.b.C", "6", "public class C extends Base", "3", "Class"}, classes[1])
	assert.Equal(t, "a.b.D", classes[2][0])
	assert.Equal(t, "class D extends C", classes[2][3])

	// The dangling x.Base target is filtered from the import files.
	extends := readCSV(t, filepath.Join(cfg.OutputDir, "extends_rels.csv"))
	assert.Equal(t, [][]string{
		{":START_ID", ":END_ID", ":TYPE"},
		{"a.b.D", "a.b.C", "EXTENDS"},
	}, extends)

	for _, name := range res.Manifest.Files() {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunIsolatesBrokenFile(t *testing.T) {
	repo := setupTestRepo(t)
	writeFile(t, filepath.Join(repo, "src", "a", "b", "Broken.java"), "package a.b;\nclass Broken { void m( }\n")

	p := New(context.Background(), testConfig(t), repo)
	res, err := p.Run()
	require.NoError(t, err)

	assert.Equal(t, 3, res.Files)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Nodes["Class"])
	_, ok := p.Graph.Classify("a.b.Broken")
	assert.False(t, ok)
}

func TestRunEmptyRepo(t *testing.T) {
	cfg := testConfig(t)
	res, err := New(context.Background(), cfg, t.TempDir()).Run()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Files)
	assert.Equal(t, 0, res.Edges)

	packages := readCSV(t, filepath.Join(cfg.OutputDir, "packages.csv"))
	assert.Equal(t, [][]string{{"nodeId:ID(Package)", "name", ":LABEL"}}, packages)
}

func TestRunMissingRoot(t *testing.T) {
	_, err := New(context.Background(), testConfig(t), filepath.Join(t.TempDir(), "nope")).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover")
	assert.NotErrorIs(t, err, ErrExport)
}

func TestRunExportFailure(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.OutputDir, "classes.csv"), 0o755))

	res, err := New(context.Background(), cfg, setupTestRepo(t)).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExport)
	require.NotNil(t, res)
	require.NotNil(t, res.Manifest)
	assert.Equal(t, []string{"packages.csv"}, res.Manifest.NodeFiles)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ctx, testConfig(t), setupTestRepo(t)).Run()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunNilConfig(t *testing.T) {
	p := New(context.Background(), nil, t.TempDir())
	require.NotNil(t, p.cfg)
	assert.Equal(t, config.DefaultOutputDir, p.cfg.EffectiveOutputDir())
	assert.False(t, p.Graph.Frozen())
}

func TestRunWritesSQLiteSnapshot(t *testing.T) {
	repo := setupTestRepo(t)
	cfg := testConfig(t)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "db", "graph.db")

	res, err := New(context.Background(), cfg, repo).Run()
	require.NoError(t, err)
	assert.Equal(t, cfg.SQLitePath, res.SQLite)

	s, err := store.OpenPath(cfg.SQLitePath)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.CountNodes()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	e, err := s.CountEdges()
	require.NoError(t, err)
	assert.Equal(t, 7, e)

	node, err := s.FindNodeByQN("a.b.C.m")
	require.NoError(t, err)
	assert.Equal(t, "Method", node.Kind)
	assert.Equal(t, "void m(int a)", node.Properties["signature"])
}

type countingRunner struct {
	mu      sync.Mutex
	queries []string
	fail    bool
}

func (r *countingRunner) Run(_ context.Context, query string, _ map[string]interface{}) (*neo4j.EagerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.fail {
		return nil, errors.New("connection refused")
	}
	return &neo4j.EagerResult{}, nil
}

func TestRunLoadsNeo4j(t *testing.T) {
	runner := &countingRunner{}
	res, err := New(context.Background(), testConfig(t), setupTestRepo(t)).
		WithNeo4jRunner(runner).
		Run()
	require.NoError(t, err)
	require.NotNil(t, res.Neo4j)
	assert.Equal(t, 5, res.Neo4j.Nodes)
	assert.Equal(t, 5, res.Neo4j.Relationships)
	assert.Equal(t, 2, res.Neo4j.Skipped)
	assert.Len(t, runner.queries, 14)
}

func TestRunNeo4jFailureKeepsCSV(t *testing.T) {
	cfg := testConfig(t)
	res, err := New(context.Background(), cfg, setupTestRepo(t)).
		WithNeo4jRunner(&countingRunner{fail: true}).
		Run()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "neo4j load:"), err.Error())
	assert.NotErrorIs(t, err, ErrExport)
	require.NotNil(t, res)
	require.NotNil(t, res.Manifest)

	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "classes.csv"))
	assert.NoError(t, statErr)
}

func TestExtractFileStripsBOM(t *testing.T) {
	repo := setupTestRepo(t)
	p := New(context.Background(), testConfig(t), repo)
	_, err := p.Run()
	require.NoError(t, err)

	kind, ok := p.Graph.Classify("a.b.D")
	require.True(t, ok)
	assert.Equal(t, graph.KindClass, kind)
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, []byte("x"), stripBOM([]byte("\xEF\xBB\xBFx")))
	assert.Equal(t, []byte("x"), stripBOM([]byte("x")))
	assert.Empty(t, stripBOM(nil))
}
