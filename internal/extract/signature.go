package extract

import (
	"strings"

	"github.com/DeusData/javagraph/internal/parser"
)

// TypeSignature renders a class, interface or enum header,
// e.g. "public class C<T> extends Base implements Runnable".
func TypeSignature(td *parser.TypeDecl) string {
	var sb strings.Builder
	writeModifiers(&sb, td.Modifiers)
	sb.WriteString(string(td.Kind))
	sb.WriteByte(' ')
	sb.WriteString(td.Name)

	if td.Kind == parser.KindEnum {
		writeClause(&sb, " implements ", td.Implements)
		return sb.String()
	}

	if len(td.TypeParams) > 0 {
		sb.WriteByte('<')
		sb.WriteString(strings.Join(td.TypeParams, ", "))
		sb.WriteByte('>')
	}
	writeClause(&sb, " extends ", td.Extends)
	writeClause(&sb, " implements ", td.Implements)
	return sb.String()
}

// MethodSignature renders e.g. "public <T> List<T> m(int a, String b) throws IOException".
func MethodSignature(md *parser.MethodDecl) string {
	var sb strings.Builder
	writeModifiers(&sb, md.Modifiers)
	if len(md.TypeParams) > 0 {
		sb.WriteByte('<')
		sb.WriteString(strings.Join(md.TypeParams, ", "))
		sb.WriteString("> ")
	}
	sb.WriteString(md.ReturnType)
	sb.WriteByte(' ')
	sb.WriteString(md.Name)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(md.Params, ", "))
	sb.WriteByte(')')
	writeClause(&sb, " throws ", md.Throws)
	return sb.String()
}

// FieldSignature renders one variable of a field declaration,
// e.g. "private static final int MAX = 10".
func FieldSignature(fd *parser.FieldDecl, v *parser.VarDecl) string {
	var sb strings.Builder
	writeModifiers(&sb, fd.Modifiers)
	sb.WriteString(v.Type)
	sb.WriteByte(' ')
	sb.WriteString(v.Name)
	if v.HasInitializer {
		sb.WriteString(" = ")
		sb.WriteString(v.Initializer)
	}
	return sb.String()
}

func writeModifiers(sb *strings.Builder, mods []string) {
	for _, m := range mods {
		sb.WriteString(m)
		sb.WriteByte(' ')
	}
}

func writeClause(sb *strings.Builder, keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(keyword)
	sb.WriteString(strings.Join(items, ", "))
}
