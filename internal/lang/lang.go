package lang

// Language represents a supported programming language.
type Language string

const (
	Java Language = "java"
)

// LanguageSpec defines the tree-sitter node types for a language.
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	// PackageNodeTypes lists the node kinds holding the package declaration.
	PackageNodeTypes []string
	ImportNodeTypes  []string
	// ClassNodeTypes are declarations registered as Class nodes with
	// extends/implements edges (classes and interfaces).
	ClassNodeTypes []string
	// EnumNodeTypes are declarations registered as Class nodes that never
	// produce extends/implements edges.
	EnumNodeTypes     []string
	MethodNodeTypes   []string
	FieldNodeTypes    []string
	AnnotationTypes   []string
	ThrowsClauseField string
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".java").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == lang {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}
