package neo4jload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"golang.org/x/sync/errgroup"

	"github.com/DeusData/javagraph/internal/export"
	"github.com/DeusData/javagraph/internal/graph"
)

// ErrNoDriver is returned by Load when the Loader has no runner.
var ErrNoDriver = errors.New("neo4jload: no runner configured")

// IDProperty is the node property holding the qualified name.
const IDProperty = "qualifiedName"

const resetQuery = "MATCH (n) WHERE n:Package OR n:Class OR n:Method OR n:Field DETACH DELETE n"

// Loader ensures a uniqueness constraint per label, then MERGEs nodes, then
// MERGEs relationships, so loading the same graph twice changes nothing.
// Edges whose endpoints are not nodes are skipped, as in the CSV export.
type Loader struct {
	Runner      DBRunner
	Concurrency int
	// Reset removes previously loaded graph nodes before loading.
	Reset bool
}

// Stats counts what Load wrote.
type Stats struct {
	Nodes         int `json:"nodes"`
	Relationships int `json:"relationships"`
	Skipped       int `json:"skipped"`
}

// NodeQuery builds the MERGE for one node.
func NodeQuery(kind graph.NodeKind, qn string, props map[string]string) (string, map[string]interface{}, error) {
	set := map[string]interface{}{"n.name": qn}
	for k, v := range props {
		set["n."+k] = v
	}
	return gocypher.NewQueryBuilder().
		Merge(gocypher.N("n", kind.Label()).WithProperties(map[string]interface{}{IDProperty: qn})).
		Set(set).
		Return("n").
		Build()
}

// ConstraintQuery builds the uniqueness constraint on the id property of kind's label.
func ConstraintQuery(kind graph.NodeKind) string {
	return fmt.Sprintf("CREATE CONSTRAINT javagraph_%s_qn IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		kind, kind.Label(), IDProperty)
}

// RelationshipQuery builds the MERGE for one edge between classified endpoints.
// Labels and the relationship type come from fixed enums; names are parameters.
func RelationshipQuery(e graph.Edge, src, dst graph.NodeKind) (string, map[string]interface{}) {
	q := fmt.Sprintf("MATCH (a:%s {%s: $src}) MATCH (b:%s {%s: $dst}) MERGE (a)-[r:%s]->(b)",
		src.Label(), IDProperty, dst.Label(), IDProperty, e.Type)
	return q, map[string]interface{}{"src": e.Source, "dst": e.Target}
}

type job struct {
	query  string
	params map[string]interface{}
}

// Load writes g, which must be frozen. All nodes are written before any
// relationship.
func (l *Loader) Load(ctx context.Context, g *graph.Store) (*Stats, error) {
	if l.Runner == nil {
		return nil, ErrNoDriver
	}
	if !g.Frozen() {
		return nil, graph.ErrNotFrozen
	}

	if l.Reset {
		if _, err := l.Runner.Run(ctx, resetQuery, nil); err != nil {
			return nil, fmt.Errorf("reset graph: %w", err)
		}
	}

	for _, kind := range graph.AllKinds {
		if _, err := l.Runner.Run(ctx, ConstraintQuery(kind), nil); err != nil {
			return nil, fmt.Errorf("create constraint %s: %w", kind.Label(), err)
		}
	}

	stats := &Stats{}
	var nodeJobs []job
	for _, kind := range graph.AllKinds {
		for _, qn := range g.Nodes(kind) {
			if k, _ := g.Classify(qn); k != kind {
				continue
			}
			q, p, err := NodeQuery(kind, qn, g.Properties(qn))
			if err != nil {
				return nil, fmt.Errorf("build node query %s: %w", qn, err)
			}
			nodeJobs = append(nodeJobs, job{q, p})
		}
	}
	if err := l.runAll(ctx, nodeJobs); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	stats.Nodes = len(nodeJobs)
	slog.Info("neo4j.nodes", "count", stats.Nodes)

	var relJobs []job
	for _, e := range g.Edges() {
		src, dst, ok := export.Endpoints(g, e)
		if !ok {
			stats.Skipped++
			continue
		}
		q, p := RelationshipQuery(e, src, dst)
		relJobs = append(relJobs, job{q, p})
	}
	if err := l.runAll(ctx, relJobs); err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}
	stats.Relationships = len(relJobs)
	slog.Info("neo4j.rels", "count", stats.Relationships, "skipped", stats.Skipped)
	return stats, nil
}

func (l *Loader) runAll(ctx context.Context, jobs []job) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Concurrency, 1))
	for _, j := range jobs {
		g.Go(func() error {
			_, err := l.Runner.Run(gctx, j.query, j.params)
			return err
		})
	}
	return g.Wait()
}
