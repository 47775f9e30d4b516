// internal/reverse/filter.go
package reverse

import (
	"strings"
	"unicode"

	"github.com/arwahdevops/oradelta/internal/delta"
)

// Tokens splits DDL text into identifier tokens. Quotes and punctuation are
// separators, so "SALES"."ORDERS_SEQ".NEXTVAL yields SALES, ORDERS_SEQ and
// NEXTVAL.
func Tokens(ddls []string) map[string]struct{} {
	tokens := map[string]struct{}{}
	isSep := func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '#')
	}
	for _, ddl := range ddls {
		for _, tok := range strings.FieldsFunc(ddl, isSep) {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// FilterUsed keeps the sequences whose name appears as a token of the given
// table and view DDL. Sequences backing identity columns are never named
// there and drop out.
func FilterUsed(sequences []delta.Sequence, ddls []string) []delta.Sequence {
	tokens := Tokens(ddls)
	var used []delta.Sequence
	for _, s := range sequences {
		if _, ok := tokens[s.SequenceName]; ok {
			used = append(used, s)
		}
	}
	return used
}
