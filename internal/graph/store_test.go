package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeIdempotent(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		s.AddNode(KindClass, "a.b.C")
		s.AddEdge(Edge{Source: "a.b", Target: "a.b.C", Type: RelPackageContains})
	}
	s.Freeze()

	assert.Equal(t, []string{"a.b.C"}, s.Nodes(KindClass))
	assert.Equal(t, 1, s.NodeCount(KindClass))
	assert.Equal(t, 1, s.EdgeCount())
}

func TestEdgeIdentityIsTriple(t *testing.T) {
	s := New()
	s.AddEdge(Edge{Source: "a.C", Target: "x.Base", Type: RelExtends})
	s.AddEdge(Edge{Source: "a.C", Target: "x.Base", Type: RelImplements})
	s.AddEdge(Edge{Source: "a.C", Target: "x.Base", Type: RelExtends})
	s.Freeze()

	assert.Equal(t, 2, s.EdgeCount())
	assert.True(t, s.HasEdge(Edge{Source: "a.C", Target: "x.Base", Type: RelImplements}))
	assert.False(t, s.HasEdge(Edge{Source: "x.Base", Target: "a.C", Type: RelExtends}))
}

func TestSetPropertyLastWriteWins(t *testing.T) {
	s := New()
	s.AddNode(KindMethod, "a.C.m")
	s.SetProperty("a.C.m", "signature", "void m()")
	s.SetProperty("a.C.m", "signature", "void m(int x)")
	s.SetProperty("a.C.m", "startLine", "3")
	s.Freeze()

	assert.Equal(t, map[string]string{"signature": "void m(int x)", "startLine": "3"}, s.Properties("a.C.m"))
	assert.Nil(t, s.Properties("missing"))
}

func TestPropertiesReturnsCopy(t *testing.T) {
	s := New()
	s.AddNode(KindField, "a.C.f")
	s.SetProperty("a.C.f", "signature", "int f")
	s.Freeze()

	props := s.Properties("a.C.f")
	props["signature"] = "changed"
	assert.Equal(t, "int f", s.Properties("a.C.f")["signature"])
}

func TestClassify(t *testing.T) {
	s := New()
	s.AddNode(KindPackage, "a")
	s.AddNode(KindClass, "a.C")
	s.AddNode(KindMethod, "a.C.m")
	s.AddNode(KindField, "a.C.f")
	s.SetProperty("orphan", "k", "v")
	s.Freeze()

	tests := []struct {
		qn   string
		want NodeKind
		ok   bool
	}{
		{"a", KindPackage, true},
		{"a.C", KindClass, true},
		{"a.C.m", KindMethod, true},
		{"a.C.f", KindField, true},
		{"x.Base", 0, false},
		{"orphan", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.qn, func(t *testing.T) {
			got, ok := s.Classify(tt.qn)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	s := New()
	s.AddNode(KindField, "a.X")
	s.AddNode(KindClass, "a.X")
	s.AddNode(KindMethod, "a.X")
	s.Freeze()

	kind, ok := s.Classify("a.X")
	require.True(t, ok)
	assert.Equal(t, KindClass, kind)
}

func TestPropertyKeysUnionPerKind(t *testing.T) {
	s := New()
	s.AddNode(KindClass, "a.A")
	s.AddNode(KindClass, "a.B")
	s.AddNode(KindMethod, "a.A.m")
	s.SetProperty("a.A", "signature", "class A")
	s.SetProperty("a.B", "startLine", "1")
	s.SetProperty("a.A.m", "returns", "int")
	s.Freeze()

	assert.Equal(t, []string{"signature", "startLine"}, s.PropertyKeys(KindClass))
	assert.Equal(t, []string{"returns"}, s.PropertyKeys(KindMethod))
	assert.Empty(t, s.PropertyKeys(KindField))
}

func TestEdgesSortedAndGrouped(t *testing.T) {
	s := New()
	s.AddEdge(Edge{Source: "b", Target: "b.B", Type: RelPackageContains})
	s.AddEdge(Edge{Source: "a", Target: "a.A", Type: RelPackageContains})
	s.AddEdge(Edge{Source: "a.A", Target: "x.Y", Type: RelExtends})
	s.Freeze()

	assert.Equal(t, []Edge{
		{Source: "a.A", Target: "x.Y", Type: RelExtends},
		{Source: "a", Target: "a.A", Type: RelPackageContains},
		{Source: "b", Target: "b.B", Type: RelPackageContains},
	}, s.Edges())

	byType := s.EdgesByType()
	assert.Len(t, byType, 2)
	assert.Len(t, byType[RelPackageContains], 2)
	assert.NotContains(t, byType, RelImport)
}

func TestMutationAfterFreezePanics(t *testing.T) {
	s := New()
	s.Freeze()
	assert.True(t, s.Frozen())
	assert.Panics(t, func() { s.AddNode(KindClass, "a.C") })
	assert.Panics(t, func() { s.AddEdge(Edge{Source: "a", Target: "b", Type: RelImport}) })
	assert.Panics(t, func() { s.SetProperty("a", "k", "v") })
}

func TestConcurrentAccumulation(t *testing.T) {
	s := New()
	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				// Every worker writes the same shared facts plus its own.
				s.AddNode(KindPackage, "p")
				s.AddEdge(Edge{Source: "p", Target: "p.Shared", Type: RelPackageContains})
				qn := fmt.Sprintf("p.C%d.m%d", w, i)
				s.AddNode(KindMethod, qn)
				s.SetProperty(qn, "signature", qn)
				s.SetProperty("p.Shared", fmt.Sprintf("k%d", w), "v")
			}
		}(w)
	}
	wg.Wait()
	s.Freeze()

	assert.Equal(t, 1, s.NodeCount(KindPackage))
	assert.Equal(t, workers*perWorker, s.NodeCount(KindMethod))
	assert.Equal(t, 1, s.EdgeCount())
	assert.Len(t, s.Properties("p.Shared"), workers)
	assert.Equal(t, "p.C3.m7", s.Properties("p.C3.m7")["signature"])
}

func TestNodeKindNames(t *testing.T) {
	assert.Equal(t, "Class", KindClass.IDSpace())
	assert.Equal(t, "Class", KindClass.Label())
	assert.Equal(t, "methods.csv", KindMethod.FileName())
	assert.Equal(t, "field", KindField.String())
	assert.Equal(t, "unknown", NodeKind(0).String())
	assert.Len(t, AllRelTypes(), 6)
}
