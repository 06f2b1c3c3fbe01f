package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FindNodeByQN returns the node with the given qualified name, or nil.
func (s *Store) FindNodeByQN(qualifiedName string) (*Node, error) {
	row := s.q.QueryRow(`SELECT qualified_name, kind, properties FROM nodes WHERE qualified_name=?`, qualifiedName)
	return scanNode(row)
}

// FindNodesByKind returns the nodes of a kind ordered by qualified name.
func (s *Store) FindNodesByKind(kind string) ([]*Node, error) {
	rows, err := s.q.Query(`SELECT qualified_name, kind, properties FROM nodes WHERE kind=? ORDER BY qualified_name`, kind)
	if err != nil {
		return nil, fmt.Errorf("find by kind: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// CountNodes returns the number of nodes in the snapshot.
func (s *Store) CountNodes() (int, error) {
	var count int
	err := s.q.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count)
	return count, err
}

// DeleteNodes removes every node.
func (s *Store) DeleteNodes() error {
	_, err := s.q.Exec("DELETE FROM nodes")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*Node, error) {
	var n Node
	var props string
	err := row.Scan(&n.QualifiedName, &n.Kind, &props)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.Properties = unmarshalProps(props)
	return &n, nil
}

func scanNodes(rows *sql.Rows) ([]*Node, error) {
	var result []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// Formula-derived batch size: SQLite has a 999 bind variable limit.
const numNodeCols = 3
const nodesBatchSize = 999 / numNodeCols // = 333

// UpsertNodeBatch inserts or updates nodes in batched multi-row INSERTs.
func (s *Store) UpsertNodeBatch(nodes []*Node) error {
	for i := 0; i < len(nodes); i += nodesBatchSize {
		end := min(i+nodesBatchSize, len(nodes))
		if err := s.upsertNodeChunk(nodes[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertNodeChunk(batch []*Node) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO nodes (qualified_name, kind, properties) VALUES `)

	args := make([]any, 0, len(batch)*numNodeCols)
	for i, n := range batch {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?)")
		args = append(args, n.QualifiedName, n.Kind, marshalProps(n.Properties))
	}
	sb.WriteString(` ON CONFLICT(qualified_name) DO UPDATE SET kind=excluded.kind, properties=excluded.properties`)

	if _, err := s.q.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("upsert node batch: %w", err)
	}
	return nil
}
