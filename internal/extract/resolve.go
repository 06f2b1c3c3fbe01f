package extract

import (
	"strings"

	"github.com/DeusData/javagraph/internal/fqn"
	"github.com/DeusData/javagraph/internal/parser"
)

// ResolveTypeName guesses the qualified name of a type referenced by its
// simple name, using only the unit's own imports and package:
//  1. a single-type import ending in ".<simple>"
//  2. the first wildcard import, as "<prefix>.<simple>"
//  3. "<pkg>.<simple>"
//
// The result may name a type that is never declared in the analyzed tree.
func ResolveTypeName(simple string, imports []parser.Import, pkg string) string {
	suffix := "." + simple
	for _, imp := range imports {
		if !imp.Wildcard && strings.HasSuffix(imp.Name, suffix) {
			return imp.Name
		}
	}
	for _, imp := range imports {
		if imp.Wildcard {
			return imp.Name + suffix
		}
	}
	return fqn.Type(pkg, simple)
}
