package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// FindEdgesByType returns the edges of a relationship type ordered by source, target.
func (s *Store) FindEdgesByType(edgeType string) ([]*Edge, error) {
	rows, err := s.q.Query(`SELECT source, target, type, resolved
		FROM edges WHERE type=? ORDER BY source, target`, edgeType)
	if err != nil {
		return nil, fmt.Errorf("find edges by type: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// FindEdgesBySource returns the edges leaving a node.
func (s *Store) FindEdgesBySource(source string) ([]*Edge, error) {
	rows, err := s.q.Query(`SELECT source, target, type, resolved
		FROM edges WHERE source=? ORDER BY type, target`, source)
	if err != nil {
		return nil, fmt.Errorf("find edges by source: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// CountEdges returns the number of edges in the snapshot.
func (s *Store) CountEdges() (int, error) {
	var count int
	err := s.q.QueryRow("SELECT COUNT(*) FROM edges").Scan(&count)
	return count, err
}

// DeleteEdges removes every edge.
func (s *Store) DeleteEdges() error {
	_, err := s.q.Exec("DELETE FROM edges")
	return err
}

// edgesBatchSize is the max rows per batch INSERT for edges (4 cols × 240 = 960 vars < 999).
const edgesBatchSize = 240

// InsertEdgeBatch inserts edges in batched multi-row INSERTs.
func (s *Store) InsertEdgeBatch(edges []*Edge) error {
	for i := 0; i < len(edges); i += edgesBatchSize {
		end := min(i+edgesBatchSize, len(edges))
		if err := s.insertEdgeChunk(edges[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertEdgeChunk(batch []*Edge) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO edges (source, target, type, resolved) VALUES `)

	args := make([]any, 0, len(batch)*4)
	for i, e := range batch {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?)")
		args = append(args, e.Source, e.Target, e.Type, e.Resolved)
	}
	sb.WriteString(` ON CONFLICT(source, target, type) DO UPDATE SET resolved=excluded.resolved`)

	if _, err := s.q.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("insert edge batch: %w", err)
	}
	return nil
}

func scanEdges(rows *sql.Rows) ([]*Edge, error) {
	var result []*Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Type, &e.Resolved); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
