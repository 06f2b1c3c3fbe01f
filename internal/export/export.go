// Package export writes a frozen graph as Neo4j bulk-import CSV files.
package export

import (
	"cmp"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/DeusData/javagraph/internal/graph"
)

// Layout selects how relationship files are partitioned.
type Layout string

const (
	// LayoutByType writes one <type>_rels.csv per relationship kind.
	LayoutByType Layout = "by_type"
	// LayoutByIDSpace writes one file per relationship kind and endpoint
	// id space pair, with id spaces named in the header.
	LayoutByIDSpace Layout = "by_id_space"
)

const (
	DefaultDatabase    = "java-knowledge"
	LegacyEdgesFile    = "graph.csv"
	ImportCommandFile  = "import-command.txt"
	CypherExamplesFile = "cypher-examples.txt"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Exporter writes the bulk-import directory.
type Exporter struct {
	Dir      string
	Database string
	Layout   Layout
	// LegacyEdges also writes graph.csv with every in-memory edge, unfiltered.
	LegacyEdges bool
}

// Manifest describes what Write produced. File names are relative to Dir.
type Manifest struct {
	Dir               string                `json:"dir"`
	NodeFiles         []string              `json:"node_files"`
	RelationshipFiles []string              `json:"relationship_files"`
	Companions        []string              `json:"companions"`
	NodeRows          map[string]int        `json:"node_rows"`
	Relationships     map[graph.RelType]int `json:"relationships"`
	Dropped           map[graph.RelType]int `json:"dropped"`
}

// Files returns every file written, in write order.
func (m *Manifest) Files() []string {
	out := make([]string, 0, len(m.NodeFiles)+len(m.RelationshipFiles)+len(m.Companions))
	out = append(out, m.NodeFiles...)
	out = append(out, m.RelationshipFiles...)
	out = append(out, m.Companions...)
	return out
}

// Write exports g, which must be frozen. On an I/O error the files written so
// far stay on disk.
func (e *Exporter) Write(g *graph.Store) (*Manifest, error) {
	if !g.Frozen() {
		return nil, graph.ErrNotFrozen
	}
	if e.Dir == "" {
		return nil, errors.New("export: output directory not set")
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	m := &Manifest{
		Dir:           e.Dir,
		NodeRows:      make(map[string]int),
		Relationships: make(map[graph.RelType]int),
		Dropped:       make(map[graph.RelType]int),
	}

	for _, kind := range graph.AllKinds {
		rows, err := e.writeNodes(g, kind)
		if err != nil {
			return m, err
		}
		m.NodeFiles = append(m.NodeFiles, kind.FileName())
		m.NodeRows[kind.Label()] = rows
		slog.Info("export.nodes", "kind", kind.Label(), "rows", rows, "file", kind.FileName())
	}

	var err error
	switch e.layout() {
	case LayoutByIDSpace:
		err = e.writeRelsByIDSpace(g, m)
	default:
		err = e.writeRelsByType(g, m)
	}
	if err != nil {
		return m, err
	}

	if e.LegacyEdges {
		if err := e.writeLegacyEdges(g); err != nil {
			return m, err
		}
		m.Companions = append(m.Companions, LegacyEdgesFile)
	}

	if err := e.writeCompanions(m); err != nil {
		return m, err
	}
	return m, nil
}

func (e *Exporter) layout() Layout {
	if e.Layout == "" {
		return LayoutByType
	}
	return e.Layout
}

func (e *Exporter) database() string {
	if e.Database == "" {
		return DefaultDatabase
	}
	return e.Database
}

func (e *Exporter) writeFile(name, content string) error {
	if err := os.WriteFile(filepath.Join(e.Dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// writeNodes writes one node file. The property columns are the sorted union
// of keys over the kind's nodes; a node lacking a key gets an empty cell.
func (e *Exporter) writeNodes(g *graph.Store, kind graph.NodeKind) (int, error) {
	keys := g.PropertyKeys(kind)
	nodes := g.Nodes(kind)

	var sb strings.Builder
	header := make([]string, 0, len(keys)+3)
	header = append(header, "nodeId:ID("+kind.IDSpace()+")", "name")
	header = append(header, keys...)
	header = append(header, ":LABEL")
	writeRow(&sb, header...)

	row := make([]string, len(header))
	for _, qn := range nodes {
		props := g.Properties(qn)
		row[0], row[1] = qn, qn
		for i, k := range keys {
			row[2+i] = props[k]
		}
		row[len(row)-1] = kind.Label()
		writeRow(&sb, row...)
	}
	return len(nodes), e.writeFile(kind.FileName(), sb.String())
}

// Endpoints classifies both ends of edge. ok is false when either end is not
// a node of the graph; such edges are left out of the relationship files.
func Endpoints(g *graph.Store, edge graph.Edge) (src, dst graph.NodeKind, ok bool) {
	src, ok = g.Classify(edge.Source)
	if !ok {
		return 0, 0, false
	}
	dst, ok = g.Classify(edge.Target)
	if !ok {
		return 0, 0, false
	}
	return src, dst, true
}

func relFileName(rel graph.RelType) string {
	return strings.ToLower(string(rel)) + "_rels.csv"
}

func (e *Exporter) writeRelsByType(g *graph.Store, m *Manifest) error {
	byType := g.EdgesByType()
	for _, rel := range graph.AllRelTypes() {
		edges, present := byType[rel]
		if !present {
			continue
		}
		var sb strings.Builder
		writeRow(&sb, ":START_ID", ":END_ID", ":TYPE")
		kept := 0
		for _, edge := range edges {
			if _, _, ok := Endpoints(g, edge); !ok {
				continue
			}
			writeRow(&sb, edge.Source, edge.Target, string(edge.Type))
			kept++
		}
		name := relFileName(rel)
		if err := e.writeFile(name, sb.String()); err != nil {
			return err
		}
		m.RelationshipFiles = append(m.RelationshipFiles, name)
		m.Relationships[rel] = kept
		m.Dropped[rel] = len(edges) - kept
		slog.Info("export.rels", "type", rel, "rows", kept, "dropped", len(edges)-kept, "file", name)
	}
	return nil
}

type spacePair struct {
	src, dst graph.NodeKind
}

func (e *Exporter) writeRelsByIDSpace(g *graph.Store, m *Manifest) error {
	byType := g.EdgesByType()
	for _, rel := range graph.AllRelTypes() {
		edges, present := byType[rel]
		if !present {
			continue
		}
		groups := make(map[spacePair][]graph.Edge)
		var order []spacePair
		kept := 0
		for _, edge := range edges {
			src, dst, ok := Endpoints(g, edge)
			if !ok {
				continue
			}
			p := spacePair{src, dst}
			if _, seen := groups[p]; !seen {
				order = append(order, p)
			}
			groups[p] = append(groups[p], edge)
			kept++
		}
		slices.SortFunc(order, comparePairs)

		for _, p := range order {
			var sb strings.Builder
			writeRow(&sb,
				":START_ID("+p.src.IDSpace()+")",
				":END_ID("+p.dst.IDSpace()+")",
				":TYPE")
			for _, edge := range groups[p] {
				writeRow(&sb, edge.Source, edge.Target, string(edge.Type))
			}
			name := fmt.Sprintf("%s_%s_to_%s.csv", strings.ToLower(string(rel)), p.src, p.dst)
			if err := e.writeFile(name, sb.String()); err != nil {
				return err
			}
			m.RelationshipFiles = append(m.RelationshipFiles, name)
		}
		m.Relationships[rel] = kept
		m.Dropped[rel] = len(edges) - kept
		slog.Info("export.rels", "type", rel, "rows", kept, "dropped", len(edges)-kept, "files", len(order))
	}
	return nil
}

func comparePairs(a, b spacePair) int {
	if c := cmp.Compare(a.src, b.src); c != 0 {
		return c
	}
	return cmp.Compare(a.dst, b.dst)
}

func (e *Exporter) writeLegacyEdges(g *graph.Store) error {
	var sb strings.Builder
	writeRow(&sb, "Source", "Target", "Type")
	for _, edge := range g.Edges() {
		writeRow(&sb, edge.Source, edge.Target, string(edge.Type))
	}
	return e.writeFile(LegacyEdgesFile, sb.String())
}

type companionData struct {
	Dir               string
	Database          string
	NodeFiles         []string
	RelationshipFiles []string
}

func (e *Exporter) writeCompanions(m *Manifest) error {
	data := companionData{Dir: e.Dir, Database: e.database()}
	for _, f := range m.NodeFiles {
		data.NodeFiles = append(data.NodeFiles, filepath.Join(e.Dir, f))
	}
	for _, f := range m.RelationshipFiles {
		data.RelationshipFiles = append(data.RelationshipFiles, filepath.Join(e.Dir, f))
	}

	for _, name := range []string{ImportCommandFile, CypherExamplesFile} {
		var sb strings.Builder
		if err := templates.ExecuteTemplate(&sb, name+".tmpl", data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := e.writeFile(name, sb.String()); err != nil {
			return err
		}
		m.Companions = append(m.Companions, name)
	}
	return nil
}
