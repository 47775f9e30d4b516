package utils

import (
	"fmt"
	"strings"
)

// Script formats understood by the renderer (targetScriptOptions.keyword).
const (
	ScriptFormatQuoted    = "quotedIdentifier"
	ScriptFormatNonQuoted = "nonquotedIdentifier"
)

// QuoteIdentifier quotes an identifier according to the requested script format.
// Nonquoted format leaves the name untouched, everything else falls back to
// Oracle double quotes with the quote character escaped.
func QuoteIdentifier(name, scriptFormat string) string {
	if strings.EqualFold(scriptFormat, ScriptFormatNonQuoted) {
		return name
	}
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(name, "\"", "\"\""))
}

// NameWithSchema renders schema.name, both parts quoted per format.
// Schema kosong berarti nama tanpa prefix.
func NameWithSchema(name, schemaName, scriptFormat string) string {
	if schemaName == "" {
		return QuoteIdentifier(name, scriptFormat)
	}
	return QuoteIdentifier(schemaName, scriptFormat) + "." + QuoteIdentifier(name, scriptFormat)
}

// UnquoteIdentifier removes Oracle double quotes from an identifier
// and unescapes quote characters within the name.
// Jika string input tidak di-quote, string akan dikembalikan apa adanya.
func UnquoteIdentifier(quotedName string) string {
	name := strings.TrimSpace(quotedName)
	if len(name) < 2 {
		return name
	}
	if name[0] != '"' || name[len(name)-1] != '"' {
		return name
	}
	// Hapus quote terluar lalu unescape
	return strings.ReplaceAll(name[1:len(name)-1], "\"\"", "\"")
}
