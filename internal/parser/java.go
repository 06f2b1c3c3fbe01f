package parser

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/javagraph/internal/lang"
)

// UnitOptions configures ParseUnit.
type UnitOptions struct {
	// TolerateSyntaxErrors keeps whatever tree-sitter recovered instead of
	// failing the file on ERROR/MISSING nodes.
	TolerateSyntaxErrors bool
}

// ParseUnit parses one Java source file into a Unit.
func ParseUnit(source []byte, opts *UnitOptions) (*Unit, error) {
	tree, err := Parse(lang.Java, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if opts == nil || !opts.TolerateSyntaxErrors {
		if bad := FirstError(root); bad != nil {
			return nil, fmt.Errorf("syntax error at line %d", safeRowToLine(bad.StartPosition().Row))
		}
	}

	spec := lang.ForLanguage(lang.Java)
	if spec == nil {
		return nil, fmt.Errorf("no language spec for %s", lang.Java)
	}
	b := newUnitBuilder(source, spec)

	u := &Unit{}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		switch {
		case b.packageTypes[child.Kind()]:
			u.Package = b.packageName(child)
			u.HasPackage = u.Package != ""
		case b.importTypes[child.Kind()]:
			u.Imports = append(u.Imports, b.importDecl(child))
		}
	}

	// Classes and interfaces first, then enums, each in pre-order. Nested
	// and local declarations are included.
	Walk(root, func(n *tree_sitter.Node) bool {
		if b.classTypes[n.Kind()] {
			u.Types = append(u.Types, b.typeDecl(n))
		}
		return true
	})
	Walk(root, func(n *tree_sitter.Node) bool {
		if b.enumTypes[n.Kind()] {
			u.Types = append(u.Types, b.typeDecl(n))
		}
		return true
	})
	return u, nil
}

type unitBuilder struct {
	source          []byte
	packageTypes    map[string]bool
	importTypes     map[string]bool
	classTypes      map[string]bool
	enumTypes       map[string]bool
	methodTypes     map[string]bool
	fieldTypes      map[string]bool
	annotationTypes map[string]bool
	throwsKind      string
}

func newUnitBuilder(source []byte, spec *lang.LanguageSpec) *unitBuilder {
	return &unitBuilder{
		source:          source,
		packageTypes:    toSet(spec.PackageNodeTypes),
		importTypes:     toSet(spec.ImportNodeTypes),
		classTypes:      toSet(spec.ClassNodeTypes),
		enumTypes:       toSet(spec.EnumNodeTypes),
		methodTypes:     toSet(spec.MethodNodeTypes),
		fieldTypes:      toSet(spec.FieldNodeTypes),
		annotationTypes: toSet(spec.AnnotationTypes),
		throwsKind:      spec.ThrowsClauseField,
	}
}

func (b *unitBuilder) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return collapseSpace(NodeText(n, b.source))
}

func (b *unitBuilder) packageName(n *tree_sitter.Node) string {
	if name := firstNamedOfKind(n, "scoped_identifier", "identifier"); name != nil {
		return strings.Join(strings.Fields(NodeText(name, b.source)), "")
	}
	return ""
}

func (b *unitBuilder) importDecl(n *tree_sitter.Node) Import {
	var imp Import
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "scoped_identifier", "identifier":
			imp.Name = strings.Join(strings.Fields(NodeText(child, b.source)), "")
		}
	}
	return imp
}

func (b *unitBuilder) typeDecl(n *tree_sitter.Node) TypeDecl {
	td := TypeDecl{
		Kind:       typeKindFor(n.Kind()),
		Name:       b.text(n.ChildByFieldName("name")),
		Modifiers:  b.modifiers(n),
		TypeParams: b.typeParams(n),
		Range:      lineRange(n),
	}

	if sc := childOfKind(n, "superclass"); sc != nil {
		td.Extends = b.namedTexts(sc)
	}
	if ext := childOfKind(n, "extends_interfaces"); ext != nil {
		td.Extends = append(td.Extends, b.typeList(ext)...)
	}
	if impl := childOfKind(n, "super_interfaces"); impl != nil {
		td.Implements = b.typeList(impl)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return td
	}
	b.members(body, &td)
	return td
}

// members collects the methods and fields declared directly in body.
func (b *unitBuilder) members(body *tree_sitter.Node, td *TypeDecl) {
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child == nil {
			continue
		}
		switch {
		case child.Kind() == "enum_body_declarations":
			b.members(child, td)
		case b.methodTypes[child.Kind()]:
			td.Methods = append(td.Methods, b.methodDecl(child))
		case b.fieldTypes[child.Kind()]:
			td.Fields = append(td.Fields, b.fieldDecl(child))
		}
	}
}

func (b *unitBuilder) methodDecl(n *tree_sitter.Node) MethodDecl {
	md := MethodDecl{
		Modifiers:  b.modifiers(n),
		TypeParams: b.typeParams(n),
		ReturnType: b.text(n.ChildByFieldName("type")),
		Name:       b.text(n.ChildByFieldName("name")),
		Range:      lineRange(n),
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := uint(0); i < params.NamedChildCount(); i++ {
			p := params.NamedChild(i)
			if p == nil {
				continue
			}
			switch p.Kind() {
			case "formal_parameter", "spread_parameter":
				md.Params = append(md.Params, b.text(p))
			}
		}
	}
	if throws := childOfKind(n, b.throwsKind); throws != nil {
		md.Throws = b.namedTexts(throws)
	}
	return md
}

func (b *unitBuilder) fieldDecl(n *tree_sitter.Node) FieldDecl {
	fd := FieldDecl{
		Modifiers: b.modifiers(n),
		Type:      b.text(n.ChildByFieldName("type")),
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		decl := n.NamedChild(i)
		if decl == nil || decl.Kind() != "variable_declarator" {
			continue
		}
		v := VarDecl{
			Name:  b.text(decl.ChildByFieldName("name")),
			Type:  fd.Type,
			Range: lineRange(decl),
		}
		if dims := decl.ChildByFieldName("dimensions"); dims != nil {
			v.Type += strings.Join(strings.Fields(NodeText(dims, b.source)), "")
		}
		if value := decl.ChildByFieldName("value"); value != nil {
			v.Initializer = NodeText(value, b.source)
			v.HasInitializer = true
		}
		fd.Vars = append(fd.Vars, v)
	}
	return fd
}

// modifiers returns the keyword modifiers of a declaration, annotations excluded.
func (b *unitBuilder) modifiers(n *tree_sitter.Node) []string {
	mods := childOfKind(n, "modifiers")
	if mods == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < mods.ChildCount(); i++ {
		child := mods.Child(i)
		if child == nil || b.annotationTypes[child.Kind()] {
			continue
		}
		if t := b.text(child); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (b *unitBuilder) typeParams(n *tree_sitter.Node) []string {
	tp := childOfKind(n, "type_parameters")
	if tp == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < tp.NamedChildCount(); i++ {
		child := tp.NamedChild(i)
		if child != nil && child.Kind() == "type_parameter" {
			out = append(out, b.text(child))
		}
	}
	return out
}

// typeList returns the types of the type_list inside an extends/implements clause.
func (b *unitBuilder) typeList(clause *tree_sitter.Node) []string {
	if list := childOfKind(clause, "type_list"); list != nil {
		return b.namedTexts(list)
	}
	return b.namedTexts(clause)
}

func (b *unitBuilder) namedTexts(n *tree_sitter.Node) []string {
	var out []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || b.annotationTypes[child.Kind()] {
			continue
		}
		out = append(out, b.text(child))
	}
	return out
}

func typeKindFor(kind string) TypeKind {
	switch kind {
	case "interface_declaration":
		return KindInterface
	case "enum_declaration":
		return KindEnum
	default:
		return KindClass
	}
}

func lineRange(n *tree_sitter.Node) *LineRange {
	return &LineRange{
		Start: safeRowToLine(n.StartPosition().Row),
		End:   safeRowToLine(n.EndPosition().Row),
	}
}

func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	if kind == "" {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func firstNamedOfKind(n *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	want := toSet(kinds)
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child != nil && want[child.Kind()] {
			return child
		}
	}
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
