package lang

func init() {
	Register(&LanguageSpec{
		Language:         Java,
		FileExtensions:   []string{".java"},
		PackageNodeTypes: []string{"package_declaration"},
		ImportNodeTypes:  []string{"import_declaration"},
		ClassNodeTypes:   []string{"class_declaration", "interface_declaration"},
		EnumNodeTypes:    []string{"enum_declaration"},
		MethodNodeTypes:  []string{"method_declaration"},
		// Interface constants parse as constant_declaration.
		FieldNodeTypes:    []string{"field_declaration", "constant_declaration"},
		AnnotationTypes:   []string{"marker_annotation", "annotation"},
		ThrowsClauseField: "throws",
	})
}
