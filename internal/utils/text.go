package utils

import "strings"

// Tab prefixes every line of text with a tab.
func Tab(text string) string {
	return Indent(text, "\t")
}

// Indent prefixes every line of text with prefix.
func Indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// EscapeSingleQuote doubles single quotes for use inside SQL string literals.
func EscapeSingleQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// WrapComment renders s as an escaped SQL string literal.
func WrapComment(s string) string {
	return "'" + EscapeSingleQuote(s) + "'"
}

// FirstNonEmpty returns the first non-blank value.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
