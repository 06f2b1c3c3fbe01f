// Package extract derives graph facts from parsed Java compilation units.
package extract

import (
	"strconv"

	"github.com/DeusData/javagraph/internal/fqn"
	"github.com/DeusData/javagraph/internal/graph"
	"github.com/DeusData/javagraph/internal/parser"
)

// Property keys set on nodes.
const (
	PropSignature = "signature"
	PropStartLine = "startLine"
	PropEndLine   = "endLine"
)

// Sink receives facts. *graph.Store implements it.
type Sink interface {
	AddNode(kind graph.NodeKind, qn string)
	AddEdge(e graph.Edge)
	SetProperty(qn, key, value string)
}

// Node is a node fact.
type Node struct {
	Kind          graph.NodeKind `yaml:"kind"`
	QualifiedName string         `yaml:"qualified_name"`
}

// Property is a property fact.
type Property struct {
	QualifiedName string `yaml:"qualified_name"`
	Key           string `yaml:"key"`
	Value         string `yaml:"value"`
}

// Facts is everything one compilation unit contributes to the graph, in
// derivation order.
type Facts struct {
	Nodes      []Node       `yaml:"nodes"`
	Edges      []graph.Edge `yaml:"edges"`
	Properties []Property   `yaml:"properties"`
}

// Apply writes the facts to sink. Properties are replayed in derivation
// order so a later fact for the same key wins, as it would have inline.
func (f *Facts) Apply(sink Sink) {
	for _, n := range f.Nodes {
		sink.AddNode(n.Kind, n.QualifiedName)
	}
	for _, p := range f.Properties {
		sink.SetProperty(p.QualifiedName, p.Key, p.Value)
	}
	for _, e := range f.Edges {
		sink.AddEdge(e)
	}
}

func (f *Facts) node(kind graph.NodeKind, qn string) {
	f.Nodes = append(f.Nodes, Node{Kind: kind, QualifiedName: qn})
}

func (f *Facts) edge(source, target string, rel graph.RelType) {
	f.Edges = append(f.Edges, graph.Edge{Source: source, Target: target, Type: rel})
}

func (f *Facts) prop(qn, key, value string) {
	f.Properties = append(f.Properties, Property{QualifiedName: qn, Key: key, Value: value})
}

func (f *Facts) location(qn string, r *parser.LineRange) {
	if r == nil {
		return
	}
	f.prop(qn, PropStartLine, strconv.Itoa(r.Start))
	f.prop(qn, PropEndLine, strconv.Itoa(r.End))
}

// Extract derives the facts of one unit. It only looks at u.
func Extract(u *parser.Unit) *Facts {
	f := &Facts{}
	pkg := fqn.Package(u.Package)
	f.node(graph.KindPackage, pkg)

	for i := range u.Types {
		f.typeDecl(u, pkg, &u.Types[i])
	}
	return f
}

func (f *Facts) typeDecl(u *parser.Unit, pkg string, td *parser.TypeDecl) {
	qn := fqn.Type(pkg, td.Name)
	f.node(graph.KindClass, qn)
	f.prop(qn, PropSignature, TypeSignature(td))
	f.location(qn, td.Range)
	f.edge(pkg, qn, graph.RelPackageContains)

	// Enums get no import, extends or implements edges.
	if td.Kind != parser.KindEnum {
		for _, imp := range u.Imports {
			f.edge(qn, imp.Name, graph.RelImport)
		}
		for _, ext := range td.Extends {
			f.edge(qn, ResolveTypeName(fqn.SimpleName(ext), u.Imports, pkg), graph.RelExtends)
		}
		for _, impl := range td.Implements {
			f.edge(qn, ResolveTypeName(fqn.SimpleName(impl), u.Imports, pkg), graph.RelImplements)
		}
	}

	for i := range td.Methods {
		md := &td.Methods[i]
		mqn := fqn.Member(qn, md.Name)
		f.node(graph.KindMethod, mqn)
		f.edge(qn, mqn, graph.RelContainsMethod)
		f.prop(mqn, PropSignature, MethodSignature(md))
		f.location(mqn, md.Range)
	}

	for i := range td.Fields {
		fd := &td.Fields[i]
		for j := range fd.Vars {
			v := &fd.Vars[j]
			fqnField := fqn.Member(qn, v.Name)
			f.node(graph.KindField, fqnField)
			f.edge(qn, fqnField, graph.RelContainsField)
			f.prop(fqnField, PropSignature, FieldSignature(fd, v))
			f.location(fqnField, v.Range)
		}
	}
}
