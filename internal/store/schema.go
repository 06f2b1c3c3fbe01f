package store

import (
	"fmt"
)

// SchemaInfo summarizes a snapshot.
type SchemaInfo struct {
	RootPath          string       `json:"root_path"`
	CreatedAt         string       `json:"created_at"`
	NodeKinds         []LabelCount `json:"node_kinds"`
	RelationshipTypes []TypeCount  `json:"relationship_types"`
}

// LabelCount is a node kind with its count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TypeCount is a relationship type with its total and resolved counts.
type TypeCount struct {
	Type     string `json:"type"`
	Count    int    `json:"count"`
	Resolved int    `json:"resolved"`
}

// GetSchema returns the snapshot's metadata and per-kind counts.
func (s *Store) GetSchema() (*SchemaInfo, error) {
	info := &SchemaInfo{}
	err := s.q.QueryRow("SELECT root_path, created_at FROM snapshot WHERE id=1").Scan(&info.RootPath, &info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("schema snapshot: %w", err)
	}
	if info.NodeKinds, err = s.schemaNodeKinds(); err != nil {
		return nil, err
	}
	if info.RelationshipTypes, err = s.schemaEdgeTypes(); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Store) schemaNodeKinds() ([]LabelCount, error) {
	rows, err := s.q.Query("SELECT kind, COUNT(*) AS cnt FROM nodes GROUP BY kind ORDER BY kind")
	if err != nil {
		return nil, fmt.Errorf("schema kinds: %w", err)
	}
	defer rows.Close()
	var kinds []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		kinds = append(kinds, lc)
	}
	return kinds, rows.Err()
}

func (s *Store) schemaEdgeTypes() ([]TypeCount, error) {
	rows, err := s.q.Query("SELECT type, COUNT(*), SUM(resolved) FROM edges GROUP BY type ORDER BY type")
	if err != nil {
		return nil, fmt.Errorf("schema edge types: %w", err)
	}
	defer rows.Close()
	var types []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count, &tc.Resolved); err != nil {
			return nil, err
		}
		types = append(types, tc)
	}
	return types, rows.Err()
}
