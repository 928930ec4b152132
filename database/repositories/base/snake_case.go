package base

import (
	"strings"
	"unicode"
)

// toSnakeCase converts a Go identifier like "StudentID" into "student_i_d".
// NewRepository does not call it: every repository is constructed with an
// explicit table name.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
