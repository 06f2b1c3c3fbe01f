package export

import (
	"strings"
)

// Escape renders one field in the bulk-import dialect. A value containing a
// comma, a double quote or a newline is wrapped in double quotes with inner
// quotes doubled; anything else is written verbatim.
func Escape(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Unescape reverses Escape for a single field.
func Unescape(field string) string {
	if len(field) < 2 || field[0] != '"' || field[len(field)-1] != '"' {
		return field
	}
	return strings.ReplaceAll(field[1:len(field)-1], `""`, `"`)
}

// writeRow writes fields as one escaped, comma-separated line.
func writeRow(sb *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(Escape(f))
	}
	sb.WriteByte('\n')
}
