// internal/ddl/target.go
package ddl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/arwahdevops/oradelta/internal/utils"
)

// Versi pertama yang mendukung fitur tertentu.
const (
	JSONTypeSince    = 21
	IfNotExistsSince = 23
)

// Oracle error codes swallowed by the IF NOT EXISTS emulation block.
const (
	ErrCodeNameAlreadyUsed = 955
	ErrCodeUserConflict    = 1920
)

// Target carries everything the renderer needs to know about the dialect
// the script is produced for.
type Target struct {
	ScriptFormat string
	DBVersion    string
}

// Quote quotes a single identifier per script format.
func (t Target) Quote(name string) string {
	return utils.QuoteIdentifier(name, t.ScriptFormat)
}

// Name renders schema.name; an empty schema yields the bare quoted name.
func (t Target) Name(name, schemaName string) string {
	return utils.NameWithSchema(name, schemaName, t.ScriptFormat)
}

// Version returns the leading integer of the DB version token ("21ai" -> 21).
func (t Target) Version() (int, bool) {
	s := strings.TrimSpace(t.DBVersion)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// UseTryCatchIfNotExists reports whether IF NOT EXISTS must be emulated with
// an exception block. Unknown versions are treated as the newest dialect.
func (t Target) UseTryCatchIfNotExists() bool {
	v, ok := t.Version()
	return ok && v < IfNotExistsSince
}

// UseClobForJSON reports whether the native JSON type is unavailable.
func (t Target) UseClobForJSON() bool {
	v, ok := t.Version()
	return ok && v < JSONTypeSince
}

// IfNotExistsClause returns " IF NOT EXISTS" when requested and natively supported.
func (t Target) IfNotExistsClause(ifNotExist bool) string {
	if ifNotExist && !t.UseTryCatchIfNotExists() {
		return " IF NOT EXISTS"
	}
	return ""
}

// IfExistsClause returns " IF EXISTS" on versions that support it.
func (t Target) IfExistsClause() string {
	if t.UseTryCatchIfNotExists() {
		return ""
	}
	return " IF EXISTS"
}

// Terminate closes a CREATE statement: wrapped in the emulation block when
// IF NOT EXISTS was requested on an old version, otherwise with a semicolon.
func (t Target) Terminate(statement string, ifNotExist bool, errorCode int) string {
	if ifNotExist && t.UseTryCatchIfNotExists() {
		return WrapIfNotExists(statement, errorCode)
	}
	return statement + ";"
}

// WrapIfNotExists runs statement through EXECUTE IMMEDIATE and ignores the
// given ORA error code.
func WrapIfNotExists(statement string, errorCode int) string {
	inner := strings.TrimSpace(utils.Tab(utils.Tab(statement)))
	inner = strings.TrimSuffix(inner, ";")
	return fmt.Sprintf("DECLARE\nBEGIN\n\tEXECUTE IMMEDIATE '%s';\n\tEXCEPTION WHEN OTHERS THEN\n\t\tIF SQLCODE = -%d THEN NULL; ELSE RAISE; END IF;\nEND;\n/\n",
		utils.EscapeSingleQuote(inner), errorCode)
}

// CommentIfDeactivated turns a statement of a deactivated element into a SQL
// comment so it stays visible in the script without being executed.
func CommentIfDeactivated(statement string, isActivated, isPartOfLine bool) string {
	if isActivated {
		return statement
	}
	if isPartOfLine {
		return "/* " + statement + " */"
	}
	if strings.Contains(statement, "\n") {
		return "/*\n" + statement + " */\n"
	}
	return "-- " + statement
}

// Comment renders COMMENT ON <object> <name> IS '<text>'.
func Comment(object, objectName, text string) string {
	return fmt.Sprintf("\nCOMMENT ON %s %s IS %s;\n", object, objectName, utils.WrapComment(text))
}
