package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeusData/javagraph/internal/config"
	"github.com/DeusData/javagraph/internal/discover"
	"github.com/DeusData/javagraph/internal/export"
	"github.com/DeusData/javagraph/internal/extract"
	"github.com/DeusData/javagraph/internal/graph"
	"github.com/DeusData/javagraph/internal/neo4jload"
	"github.com/DeusData/javagraph/internal/parser"
	"github.com/DeusData/javagraph/internal/store"
)

// ErrExport marks a failed CSV export. The Result may still carry the
// partial Manifest of the files written before the failure.
var ErrExport = errors.New("export")

// Pipeline runs one export of a repository: discover, extract in parallel
// into a fresh graph, freeze, then write the outputs.
type Pipeline struct {
	ctx      context.Context
	cfg      *config.Config
	RepoPath string
	Graph    *graph.Store
	// runner overrides the Neo4j runner built from cfg.Neo4j.
	runner neo4jload.DBRunner
}

// Result summarizes a run.
type Result struct {
	RepoPath string           `json:"repo_path"`
	Files    int              `json:"files"`
	Failed   int              `json:"failed"`
	Nodes    map[string]int   `json:"nodes"`
	Edges    int              `json:"edges"`
	Manifest *export.Manifest `json:"manifest"`
	SQLite   string           `json:"sqlite,omitempty"`
	Neo4j    *neo4jload.Stats `json:"neo4j,omitempty"`
	Elapsed  time.Duration    `json:"elapsed_ns"`
}

// New creates a Pipeline. A nil cfg means defaults.
func New(ctx context.Context, cfg *config.Config, repoPath string) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{
		ctx:      ctx,
		cfg:      cfg,
		RepoPath: repoPath,
		Graph:    graph.New(),
	}
}

// WithNeo4jRunner makes the run load into r, regardless of cfg.Neo4j.URI.
func (p *Pipeline) WithNeo4jRunner(r neo4jload.DBRunner) *Pipeline {
	p.runner = r
	return p
}

// Run executes the pipeline. Discovery and CSV export errors abort the run.
// Per-file failures are logged and counted. Snapshot and Neo4j failures are
// returned after the CSV export has been written.
func (p *Pipeline) Run() (*Result, error) {
	start := time.Now()
	slog.Info("pipeline.start", "path", p.RepoPath, "workers", p.cfg.EffectiveWorkers())

	if err := p.ctx.Err(); err != nil {
		return nil, err
	}

	files, err := discover.Discover(p.ctx, p.RepoPath, &discover.Options{
		ExtraIgnore:      p.cfg.Ignore,
		RespectGitignore: p.cfg.EffectiveRespectGitignore(),
	})
	if err != nil {
		slog.Error("pipeline.discover.err", "path", p.RepoPath, "err", err)
		return nil, fmt.Errorf("discover: %w", err)
	}
	slog.Info("pipeline.discovered", "files", len(files))

	failed, err := p.passExtract(files)
	if err != nil {
		return nil, err
	}
	p.Graph.Freeze()

	res := &Result{
		RepoPath: p.RepoPath,
		Files:    len(files),
		Failed:   failed,
		Nodes:    make(map[string]int, len(graph.AllKinds)),
		Edges:    p.Graph.EdgeCount(),
	}
	for _, k := range graph.AllKinds {
		res.Nodes[k.Label()] = p.Graph.NodeCount(k)
	}
	slog.Info("pipeline.extracted",
		"packages", res.Nodes["Package"], "classes", res.Nodes["Class"],
		"methods", res.Nodes["Method"], "fields", res.Nodes["Field"],
		"edges", res.Edges, "failed", failed)

	exp := &export.Exporter{
		Dir:         p.cfg.EffectiveOutputDir(),
		Database:    p.cfg.EffectiveDatabase(),
		Layout:      p.cfg.EffectiveLayout(),
		LegacyEdges: p.cfg.LegacyEdgesFile,
	}
	res.Manifest, err = exp.Write(p.Graph)
	if err != nil {
		slog.Error("export.err", "dir", exp.Dir, "err", err)
		return res, fmt.Errorf("%w: %w", ErrExport, err)
	}

	var sinkErrs []error
	if p.cfg.SQLitePath != "" {
		if err := p.writeSnapshot(); err != nil {
			slog.Error("snapshot.err", "path", p.cfg.SQLitePath, "err", err)
			sinkErrs = append(sinkErrs, fmt.Errorf("sqlite snapshot: %w", err))
		} else {
			res.SQLite = p.cfg.SQLitePath
		}
	}
	if p.runner != nil || p.cfg.Neo4j.URI != "" {
		stats, err := p.loadNeo4j()
		if err != nil {
			slog.Error("neo4j.err", "uri", p.cfg.Neo4j.URI, "err", err)
			sinkErrs = append(sinkErrs, fmt.Errorf("neo4j load: %w", err))
		}
		res.Neo4j = stats
	}

	res.Elapsed = time.Since(start)
	slog.Info("pipeline.done", "files", res.Files, "failed", res.Failed, "elapsed", res.Elapsed)
	return res, errors.Join(sinkErrs...)
}

// fileResult is the outcome of one worker.
type fileResult struct {
	File  discover.FileInfo
	Facts *extract.Facts
	Err   error
}

// passExtract parses and extracts every file on a bounded worker pool. Each
// worker applies its file's facts to the shared graph only once the whole
// file succeeded, so a failing file contributes nothing.
func (p *Pipeline) passExtract(files []discover.FileInfo) (int, error) {
	slog.Info("pass.extract", "files", len(files))

	results := make([]fileResult, len(files))
	numWorkers := min(p.cfg.EffectiveWorkers(), max(len(files), 1))

	g, gctx := errgroup.WithContext(p.ctx)
	g.SetLimit(numWorkers)
	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			facts, err := extractFile(f, p.cfg.TolerateSyntaxErrors)
			results[i] = fileResult{File: f, Facts: facts, Err: err}
			if err == nil {
				facts.Apply(p.Graph)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Warn("extract.file.err", "path", r.File.RelPath, "err", r.Err)
		}
	}
	return failed, nil
}

// extractFile reads, parses and extracts one file without touching shared state.
func extractFile(f discover.FileInfo, tolerate bool) (*extract.Facts, error) {
	source, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	u, err := parser.ParseUnit(stripBOM(source), &parser.UnitOptions{TolerateSyntaxErrors: tolerate})
	if err != nil {
		return nil, err
	}
	return extract.Extract(u), nil
}

func (p *Pipeline) writeSnapshot() error {
	path := p.cfg.SQLitePath
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	s, err := store.OpenPath(path)
	if err != nil {
		return err
	}
	defer s.Close()

	abs, err := filepath.Abs(p.RepoPath)
	if err != nil {
		abs = p.RepoPath
	}
	if err := s.WriteSnapshot(abs, p.Graph); err != nil {
		return err
	}
	slog.Info("snapshot.written", "path", path)
	return nil
}

func (p *Pipeline) loadNeo4j() (*neo4jload.Stats, error) {
	runner := p.runner
	if runner == nil {
		exec, err := neo4jload.NewNeo4jExecutor(p.cfg.Neo4j.URI, p.cfg.Neo4j.Username,
			p.cfg.Neo4j.Password, p.cfg.EffectiveNeo4jDatabase())
		if err != nil {
			return nil, err
		}
		defer exec.Close(p.ctx)
		if err := exec.Verify(p.ctx); err != nil {
			return nil, fmt.Errorf("verify connectivity: %w", err)
		}
		runner = exec
	}
	l := &neo4jload.Loader{
		Runner:      runner,
		Concurrency: p.cfg.EffectiveNeo4jConcurrency(),
		Reset:       p.cfg.Neo4j.Reset,
	}
	return l.Load(p.ctx, p.Graph)
}

func stripBOM(source []byte) []byte {
	if len(source) >= 3 && source[0] == 0xEF && source[1] == 0xBB && source[2] == 0xBF {
		return source[3:]
	}
	return source
}
