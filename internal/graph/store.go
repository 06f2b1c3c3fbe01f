package graph

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// ErrNotFrozen is returned by readers that require the extraction barrier.
var ErrNotFrozen = errors.New("graph: store not frozen")

const shardCount = 64

type node struct {
	kinds NodeKind
	props map[string]string
}

type shard struct {
	mu    sync.Mutex
	nodes map[string]*node
	edges map[Edge]struct{}
}

// Store accumulates nodes, edges and properties from concurrent extractors.
// Qualified names and edges are spread over independently locked shards.
// After Freeze the store is read-only and any mutation panics.
type Store struct {
	shards [shardCount]shard
	frozen atomic.Bool
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].nodes = make(map[string]*node)
		s.shards[i].edges = make(map[Edge]struct{})
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	return &s.shards[xxh3.HashString(key)%shardCount]
}

func (s *Store) mustBeMutable() {
	if s.frozen.Load() {
		panic("graph: mutation after Freeze")
	}
}

// nodeLocked returns the entry for qn, creating it. Caller holds sh.mu.
func (sh *shard) nodeLocked(qn string) *node {
	n := sh.nodes[qn]
	if n == nil {
		n = &node{}
		sh.nodes[qn] = n
	}
	return n
}

// AddNode registers qn in the kind set. Idempotent.
func (s *Store) AddNode(kind NodeKind, qn string) {
	s.mustBeMutable()
	sh := s.shardFor(qn)
	sh.mu.Lock()
	sh.nodeLocked(qn).kinds |= kind
	sh.mu.Unlock()
}

// AddEdge inserts e into the edge set. Idempotent.
func (s *Store) AddEdge(e Edge) {
	s.mustBeMutable()
	sh := s.shardFor(e.key())
	sh.mu.Lock()
	sh.edges[e] = struct{}{}
	sh.mu.Unlock()
}

// SetProperty upserts key on qn's property map. Last write wins.
func (s *Store) SetProperty(qn, key, value string) {
	s.mustBeMutable()
	sh := s.shardFor(qn)
	sh.mu.Lock()
	n := sh.nodeLocked(qn)
	if n.props == nil {
		n.props = make(map[string]string)
	}
	n.props[key] = value
	sh.mu.Unlock()
}

// Freeze ends the accumulation phase.
func (s *Store) Freeze() { s.frozen.Store(true) }

// Frozen reports whether Freeze has been called.
func (s *Store) Frozen() bool { return s.frozen.Load() }

func (s *Store) lookup(qn string) (NodeKind, map[string]string) {
	sh := s.shardFor(qn)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	n := sh.nodes[qn]
	if n == nil {
		return 0, nil
	}
	return n.kinds, maps.Clone(n.props)
}

// Nodes returns the sorted qualified names registered with kind.
func (s *Store) Nodes(kind NodeKind) []string {
	var out []string
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for qn, n := range sh.nodes {
			if n.kinds&kind != 0 {
				out = append(out, qn)
			}
		}
		sh.mu.Unlock()
	}
	slices.Sort(out)
	return out
}

// NodeCount returns the number of nodes registered with kind.
func (s *Store) NodeCount(kind NodeKind) int {
	count := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, n := range sh.nodes {
			if n.kinds&kind != 0 {
				count++
			}
		}
		sh.mu.Unlock()
	}
	return count
}

// Classify returns the id space of qn, picking Package, Class, Method, Field
// in that order when a name was registered under more than one kind. ok is
// false when qn is not a node.
func (s *Store) Classify(qn string) (NodeKind, bool) {
	kinds, _ := s.lookup(qn)
	for _, k := range AllKinds {
		if kinds&k != 0 {
			return k, true
		}
	}
	return 0, false
}

// Properties returns a copy of qn's property map, or nil.
func (s *Store) Properties(qn string) map[string]string {
	_, props := s.lookup(qn)
	return props
}

// PropertyKeys returns the sorted union of property keys over the nodes of kind.
func (s *Store) PropertyKeys(kind NodeKind) []string {
	seen := make(map[string]struct{})
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, n := range sh.nodes {
			if n.kinds&kind == 0 {
				continue
			}
			for k := range n.props {
				seen[k] = struct{}{}
			}
		}
		sh.mu.Unlock()
	}
	return slices.Sorted(maps.Keys(seen))
}

// Edges returns every edge ordered by type, source, target.
func (s *Store) Edges() []Edge {
	var out []Edge
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for e := range sh.edges {
			out = append(out, e)
		}
		sh.mu.Unlock()
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// EdgesByType partitions Edges by relationship kind. Only kinds with at
// least one edge are present.
func (s *Store) EdgesByType() map[RelType][]Edge {
	out := make(map[RelType][]Edge)
	for _, e := range s.Edges() {
		out[e.Type] = append(out[e.Type], e)
	}
	return out
}

// HasEdge reports whether e is in the edge set.
func (s *Store) HasEdge(e Edge) bool {
	sh := s.shardFor(e.key())
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.edges[e]
	return ok
}

// EdgeCount returns the size of the edge set.
func (s *Store) EdgeCount() int {
	count := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		count += len(sh.edges)
		sh.mu.Unlock()
	}
	return count
}
