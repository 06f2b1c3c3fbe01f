package fqn

import "strings"

// DefaultPackage names the package of compilation units without a package
// declaration.
const DefaultPackage = "(default package)"

// Package returns the qualified name for a package declaration.
// An empty name maps to DefaultPackage.
func Package(name string) string {
	if name == "" {
		return DefaultPackage
	}
	return name
}

// Type returns the qualified name for a type declared in pkgQN.
// Format: <package>.<TypeName>
func Type(pkgQN, name string) string {
	return pkgQN + "." + name
}

// Member returns the qualified name for a method or field of typeQN.
// Parameter types are not part of a method's name, so overloads share one.
func Member(typeQN, name string) string {
	return typeQN + "." + name
}

// SimpleName reduces a textual type reference to its simple name:
// type arguments and array brackets are dropped and only the last
// dotted segment is kept. "java.util.Map.Entry<K, V>" -> "Entry".
func SimpleName(typeText string) string {
	s := strings.TrimSpace(typeText)
	if i := strings.IndexAny(s, "<["); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return s
}
