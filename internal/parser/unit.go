package parser

// TypeKind distinguishes the declaration forms that become Class nodes.
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindInterface TypeKind = "interface"
	KindEnum      TypeKind = "enum"
)

// LineRange is a 1-based inclusive source line span.
type LineRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Unit is the parsed shape of one compilation unit: only the structure the
// fact extractor consumes, with every type reference kept as source text.
type Unit struct {
	Package    string     `yaml:"package,omitempty"`
	HasPackage bool       `yaml:"has_package"`
	Imports    []Import   `yaml:"imports,omitempty"`
	Types      []TypeDecl `yaml:"types,omitempty"`
}

// Import is one import statement. Name never carries the trailing ".*";
// Wildcard records it instead.
type Import struct {
	Name     string `yaml:"name"`
	Static   bool   `yaml:"static,omitempty"`
	Wildcard bool   `yaml:"wildcard,omitempty"`
}

// TypeDecl is a class, interface or enum declaration. Nested and local
// declarations are listed as separate TypeDecls of the same Unit.
type TypeDecl struct {
	Kind       TypeKind     `yaml:"kind"`
	Modifiers  []string     `yaml:"modifiers,omitempty"`
	Name       string       `yaml:"name"`
	TypeParams []string     `yaml:"type_params,omitempty"`
	Extends    []string     `yaml:"extends,omitempty"`
	Implements []string     `yaml:"implements,omitempty"`
	Methods    []MethodDecl `yaml:"methods,omitempty"`
	Fields     []FieldDecl  `yaml:"fields,omitempty"`
	Range      *LineRange   `yaml:"range,omitempty"`
}

// MethodDecl is a method declared directly in a type body.
type MethodDecl struct {
	Modifiers  []string   `yaml:"modifiers,omitempty"`
	TypeParams []string   `yaml:"type_params,omitempty"`
	ReturnType string     `yaml:"return_type"`
	Name       string     `yaml:"name"`
	Params     []string   `yaml:"params,omitempty"`
	Throws     []string   `yaml:"throws,omitempty"`
	Range      *LineRange `yaml:"range,omitempty"`
}

// FieldDecl is a field declaration with one or more declared variables.
type FieldDecl struct {
	Modifiers []string  `yaml:"modifiers,omitempty"`
	Type      string    `yaml:"type"`
	Vars      []VarDecl `yaml:"vars"`
}

// VarDecl is one variable of a field declaration. Type is the declared type
// including any array dimensions written after the variable name.
type VarDecl struct {
	Name           string     `yaml:"name"`
	Type           string     `yaml:"type"`
	Initializer    string     `yaml:"initializer,omitempty"`
	HasInitializer bool       `yaml:"has_initializer,omitempty"`
	Range          *LineRange `yaml:"range,omitempty"`
}
