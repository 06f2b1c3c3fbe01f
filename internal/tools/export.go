package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/javagraph/internal/config"
	"github.com/DeusData/javagraph/internal/export"
	"github.com/DeusData/javagraph/internal/pipeline"
)

func (s *Server) handleExportGraph(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	repoPath := getStringArg(args, "repo_path")
	if repoPath == "" {
		return errResult("repo_path is required"), nil
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}

	cfg, err := s.configFor(absPath)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if out := getStringArg(args, "output_dir"); out != "" {
		cfg.OutputDir = out
	}
	if !filepath.IsAbs(cfg.EffectiveOutputDir()) {
		cfg.OutputDir = filepath.Join(absPath, cfg.EffectiveOutputDir())
	}
	if layout := getStringArg(args, "layout"); layout != "" {
		cfg.RelationshipLayout = layout
		if err := cfg.Validate(); err != nil {
			return errResult(err.Error()), nil
		}
	}

	s.exportMu.Lock()
	defer s.exportMu.Unlock()

	res, err := pipeline.New(ctx, cfg, absPath).Run()
	if err != nil && (res == nil || res.Manifest == nil || errors.Is(err, pipeline.ErrExport)) {
		return errResult(fmt.Sprintf("export failed: %v", err)), nil
	}

	out := map[string]any{
		"repo_path":      absPath,
		"output_dir":     res.Manifest.Dir,
		"files":          res.Files,
		"failed_files":   res.Failed,
		"nodes":          res.Manifest.NodeRows,
		"relationships":  res.Manifest.Relationships,
		"dropped":        res.Manifest.Dropped,
		"written":        res.Manifest.Files(),
		"import_command": filepath.Join(res.Manifest.Dir, export.ImportCommandFile),
	}
	if res.SQLite != "" {
		out["sqlite"] = res.SQLite
	}
	if res.Neo4j != nil {
		out["neo4j"] = res.Neo4j
	}
	if err != nil {
		out["sink_error"] = err.Error()
	}
	return jsonResult(out), nil
}

// configFor layers <repo>/.javagraph.yaml under the server's base settings.
func (s *Server) configFor(repoPath string) (*config.Config, error) {
	cfg, err := config.Load(repoPath)
	if err != nil {
		return nil, err
	}
	if s.base.OutputDir != "" {
		cfg.OutputDir = s.base.OutputDir
	}
	if s.base.Workers > 0 {
		cfg.Workers = s.base.Workers
	}
	if s.base.RelationshipLayout != "" {
		cfg.RelationshipLayout = s.base.RelationshipLayout
	}
	if s.base.SQLitePath != "" {
		cfg.SQLitePath = s.base.SQLitePath
	}
	if s.base.Neo4j.URI != "" {
		cfg.Neo4j = s.base.Neo4j
	}
	cfg.LegacyEdgesFile = cfg.LegacyEdgesFile || s.base.LegacyEdgesFile
	cfg.TolerateSyntaxErrors = cfg.TolerateSyntaxErrors || s.base.TolerateSyntaxErrors
	return cfg, nil
}
