package schema

import (
	"regexp"
	"strings"
	"unicode"
)

// identRe matches the identifiers rowkit emits unquoted into statements.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// TableName converts a PascalCase type name to snake_case. Every uppercase
// letter starts a new word, so "UserAccount" becomes "user_account" and
// "HTTPLog" becomes "h_t_t_p_log". Leading and trailing underscores are
// trimmed.
func TableName(typeName string) string {
	var b strings.Builder
	last := '_'
	for _, r := range typeName {
		if unicode.IsUpper(r) {
			if b.Len() > 0 && last != '_' {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		} else if r == '_' && last == '_' {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return strings.Trim(b.String(), "_")
}

// IsIdentifier reports whether s is safe to emit unquoted as a table or
// column name.
func IsIdentifier(s string) bool {
	return identRe.MatchString(s)
}
