package store

import (
	"fmt"

	"github.com/DeusData/javagraph/internal/export"
	"github.com/DeusData/javagraph/internal/graph"
)

// WriteSnapshot replaces the database contents with g in one transaction.
// Each qualified name is stored once under its classified kind.
func (s *Store) WriteSnapshot(rootPath string, g *graph.Store) error {
	if !g.Frozen() {
		return graph.ErrNotFrozen
	}

	var nodes []*Node
	for _, kind := range graph.AllKinds {
		for _, qn := range g.Nodes(kind) {
			if k, _ := g.Classify(qn); k != kind {
				continue
			}
			nodes = append(nodes, &Node{QualifiedName: qn, Kind: kind.Label(), Properties: g.Properties(qn)})
		}
	}

	var edges []*Edge
	for _, e := range g.Edges() {
		_, _, resolved := export.Endpoints(g, e)
		edges = append(edges, &Edge{Source: e.Source, Target: e.Target, Type: string(e.Type), Resolved: resolved})
	}

	return s.WithTransaction(func(tx *Store) error {
		if err := tx.DeleteEdges(); err != nil {
			return fmt.Errorf("clear edges: %w", err)
		}
		if err := tx.DeleteNodes(); err != nil {
			return fmt.Errorf("clear nodes: %w", err)
		}
		if _, err := tx.q.Exec(`
			INSERT INTO snapshot (id, root_path, created_at) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET root_path=excluded.root_path, created_at=excluded.created_at`,
			rootPath, Now()); err != nil {
			return fmt.Errorf("write snapshot row: %w", err)
		}
		if err := tx.UpsertNodeBatch(nodes); err != nil {
			return err
		}
		return tx.InsertEdgeBatch(edges)
	})
}
