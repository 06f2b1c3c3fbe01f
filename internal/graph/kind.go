package graph

import (
	"cmp"
	"strings"
)

// NodeKind is one of the four disjoint id spaces. Values are bit flags so a
// qualified name's membership can be kept as a mask.
type NodeKind uint8

const (
	KindPackage NodeKind = 1 << iota
	KindClass
	KindMethod
	KindField
)

// AllKinds lists the node kinds in classification priority order.
var AllKinds = []NodeKind{KindPackage, KindClass, KindMethod, KindField}

// IDSpace returns the bulk-import id space name of the kind.
func (k NodeKind) IDSpace() string {
	switch k {
	case KindPackage:
		return "Package"
	case KindClass:
		return "Class"
	case KindMethod:
		return "Method"
	case KindField:
		return "Field"
	}
	return ""
}

// Label returns the node label written to the :LABEL column.
func (k NodeKind) Label() string { return k.IDSpace() }

// FileName returns the node file the kind is exported to.
func (k NodeKind) FileName() string {
	switch k {
	case KindPackage:
		return "packages.csv"
	case KindClass:
		return "classes.csv"
	case KindMethod:
		return "methods.csv"
	case KindField:
		return "fields.csv"
	}
	return ""
}

func (k NodeKind) String() string {
	if s := k.IDSpace(); s != "" {
		return strings.ToLower(s)
	}
	return "unknown"
}

// MarshalYAML renders the kind by its id space name.
func (k NodeKind) MarshalYAML() (any, error) {
	return k.IDSpace(), nil
}

// RelType is a relationship kind.
type RelType string

const (
	RelPackageContains RelType = "PACKAGE_CONTAINS"
	RelContainsMethod  RelType = "CONTAINS_METHOD"
	RelContainsField   RelType = "CONTAINS_FIELD"
	RelExtends         RelType = "EXTENDS"
	RelImplements      RelType = "IMPLEMENTS"
	RelImport          RelType = "IMPORT"
)

// AllRelTypes returns every relationship kind.
func AllRelTypes() []RelType {
	return []RelType{
		RelPackageContains, RelContainsMethod, RelContainsField,
		RelExtends, RelImplements, RelImport,
	}
}

// Edge is a directed relationship between two qualified names. The whole
// triple is its identity.
type Edge struct {
	Source string  `yaml:"source" json:"source"`
	Target string  `yaml:"target" json:"target"`
	Type   RelType `yaml:"type" json:"type"`
}

func (e Edge) key() string {
	return e.Source + "\x00" + e.Target + "\x00" + string(e.Type)
}

func compareEdges(a, b Edge) int {
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	return cmp.Compare(a.Target, b.Target)
}
