package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DeusData/javagraph/internal/config"
	"github.com/DeusData/javagraph/internal/discover"
	"github.com/DeusData/javagraph/internal/export"
	"github.com/DeusData/javagraph/internal/pipeline"
	"github.com/DeusData/javagraph/internal/watcher"
)

// exportFlags are command-line overrides layered over the config file.
type exportFlags struct {
	configPath  string
	out         string
	workers     int
	layout      string
	legacyEdges bool
	sqlitePath  string
	neo4jURI    string
	tolerate    bool
	watch       bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "config file (default <root>/"+config.FileName+")")
	fl.StringVarP(&f.out, "out", "o", "", "output directory (default "+config.DefaultOutputDir+")")
	fl.IntVarP(&f.workers, "workers", "j", 0, "extraction workers (default number of CPUs)")
	fl.StringVar(&f.layout, "layout", "", "relationship file layout: by_type or by_id_space")
	fl.BoolVar(&f.legacyEdges, "legacy-edges", false, "also write graph.csv listing every edge")
	fl.StringVar(&f.sqlitePath, "sqlite", "", "also write a SQLite snapshot to this path")
	fl.StringVar(&f.neo4jURI, "neo4j-uri", "", "also load the graph into the Neo4j at this URI")
	fl.BoolVar(&f.tolerate, "tolerate-syntax-errors", false, "extract from files that contain syntax errors")
	fl.BoolVarP(&f.watch, "watch", "w", false, "re-export whenever the Java sources change")
}

// loadConfig reads the config file for root and applies explicitly set flags.
func (f *exportFlags) loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("out") {
		cfg.OutputDir = f.out
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("layout") {
		cfg.RelationshipLayout = f.layout
	}
	if fl.Changed("legacy-edges") {
		cfg.LegacyEdgesFile = f.legacyEdges
	}
	if fl.Changed("sqlite") {
		cfg.SQLitePath = f.sqlitePath
	}
	if fl.Changed("neo4j-uri") {
		cfg.Neo4j.URI = f.neo4jURI
	}
	if fl.Changed("tolerate-syntax-errors") {
		cfg.TolerateSyntaxErrors = f.tolerate
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runExport(cmd *cobra.Command, root string, flags *exportFlags) error {
	cfg, err := flags.loadConfig(cmd, root)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	res, err := pipeline.New(ctx, cfg, root).Run()
	if res != nil && res.Manifest != nil && !errors.Is(err, pipeline.ErrExport) {
		printSummary(cmd, res)
	}
	if err != nil {
		return err
	}
	if !flags.watch {
		return nil
	}

	opts := &discover.Options{ExtraIgnore: cfg.Ignore, RespectGitignore: cfg.EffectiveRespectGitignore()}
	slog.Info("watcher.start", "path", root)
	w := watcher.New(root, opts, func(ctx context.Context, rootPath string) error {
		res, err := pipeline.New(ctx, cfg, rootPath).Run()
		if res != nil && res.Manifest != nil && !errors.Is(err, pipeline.ErrExport) {
			printSummary(cmd, res)
		}
		return err
	})
	w.Run(ctx)
	return nil
}

func printSummary(cmd *cobra.Command, res *pipeline.Result) {
	out := cmd.OutOrStdout()
	m := res.Manifest
	fmt.Fprintf(out, "files: %d (%d failed)\n", res.Files, res.Failed)
	fmt.Fprintf(out, "nodes: %d packages, %d classes, %d methods, %d fields\n",
		m.NodeRows["Package"], m.NodeRows["Class"], m.NodeRows["Method"], m.NodeRows["Field"])
	total, dropped := 0, 0
	for _, n := range m.Relationships {
		total += n
	}
	for _, n := range m.Dropped {
		dropped += n
	}
	fmt.Fprintf(out, "relationships: %d (%d with undeclared endpoints dropped)\n", total, dropped)
	fmt.Fprintf(out, "output: %s\n", m.Dir)
	fmt.Fprintf(out, "import with: %s\n", filepath.Join(m.Dir, export.ImportCommandFile))
}
