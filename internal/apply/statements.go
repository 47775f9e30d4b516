// internal/apply/statements.go
package apply

import (
	"regexp"
	"strings"
)

var (
	// Blok PL/SQL tidak boleh dipecah pada ';'.
	plsqlStart   = regexp.MustCompile(`(?is)^(declare\b|begin\b|create\s+(or\s+replace\s+)?((non)?editionable\s+)?(type|procedure|function|package|trigger)\b)`)
	statementEnd = regexp.MustCompile(`;[ \t]*\n`)
	lineComment  = regexp.MustCompile(`(?m)^[ \t]*--.*$`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// SplitStatements splits a rendered script into executable statements.
// Statements are separated by blank lines; surrounding "/" and ";" are
// removed and a ";" is restored after a trailing PL/SQL END. Commented out
// fragments are dropped.
func SplitStatements(script string) []string {
	var statements []string
	for _, chunk := range chunks(script) {
		if commentOnly(chunk) {
			continue
		}
		for _, part := range splitChunk(chunk) {
			if commentOnly(part) {
				continue
			}
			if stmt := clean(part); stmt != "" {
				statements = append(statements, stmt)
			}
		}
	}
	return statements
}

// chunks cuts the script on blank lines that are not inside a block comment.
func chunks(script string) []string {
	script = strings.ReplaceAll(script, "\r\n", "\n")
	var (
		out     []string
		current []string
		inBlock bool
	)
	flush := func() {
		if chunk := strings.TrimSpace(strings.Join(current, "\n")); chunk != "" {
			out = append(out, chunk)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" && !inBlock {
			flush()
			continue
		}
		current = append(current, line)
		if open, closed := strings.LastIndex(line, "/*"), strings.LastIndex(line, "*/"); open >= 0 || closed >= 0 {
			inBlock = open > closed
		}
	}
	flush()
	return out
}

// splitChunk separates plain DDL written back to back in one fragment,
// e.g. CREATE TABLE followed by its COMMENT ON statements.
func splitChunk(chunk string) []string {
	if plsqlStart.MatchString(chunk) {
		return []string{chunk}
	}
	return statementEnd.Split(chunk+"\n", -1)
}

func clean(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	stmt = strings.Trim(stmt, "/")
	stmt = strings.TrimSpace(stmt)
	stmt = strings.TrimRight(stmt, ";")
	stmt = strings.TrimSpace(stmt)
	if strings.HasSuffix(strings.ToUpper(stmt), "END") {
		stmt += ";"
	}
	return stmt
}

func commentOnly(stmt string) bool {
	rest := blockComment.ReplaceAllString(stmt, "")
	rest = lineComment.ReplaceAllString(rest, "")
	return strings.TrimSpace(rest) == ""
}
