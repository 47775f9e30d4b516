// internal/ddl/table.go
package ddl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arwahdevops/oradelta/internal/delta"
)

// KeyColumn is a column referenced by a table level key constraint.
type KeyColumn struct {
	Name        string
	IsActivated bool
}

// KeyConstraint is an out-of-line PRIMARY KEY or UNIQUE constraint.
type KeyConstraint struct {
	KeyType string // "PRIMARY KEY" | "UNIQUE"
	Columns []KeyColumn
	Options delta.KeyOptions
}

// Table is a hydrated CREATE TABLE request.
type Table struct {
	Name       string
	SchemaName string

	Columns          []ColumnDefinition
	KeyConstraints   []KeyConstraint
	CheckConstraints []delta.CheckConstraint

	Temporary              bool
	TemporaryType          string
	Duplicated             bool
	Sharded                bool
	Immutable              bool
	BlockchainTableClauses string
	TableProperties        string
	SelectStatement        string

	Description string
	IfNotExist  bool
	Synonyms    []delta.Synonym
	IsActivated bool
}

var outerParens = regexp.MustCompile(`^\(([\s\S]*)\)$`)

// CheckConstraint renders [CONSTRAINT name ]CHECK (expr); one pair of
// enclosing parentheses of the expression is dropped.
func CheckConstraint(c delta.CheckConstraint, t Target) string {
	name := ""
	if c.ChkConstrName != "" {
		name = "CONSTRAINT " + t.Quote(c.ChkConstrName) + " "
	}
	expr := outerParens.ReplaceAllString(strings.TrimSpace(c.ConstrExpression), "$1")
	return fmt.Sprintf("%sCHECK (%s)", name, expr)
}

// keyColumnsList renders (cols); deactivated columns of an active table are
// kept as an inline comment.
func keyColumnsList(cols []KeyColumn, tableActive bool, t Target) string {
	allDeactivated := len(cols) > 0
	for _, c := range cols {
		if c.IsActivated {
			allDeactivated = false
		}
	}
	if allDeactivated || !tableActive {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = t.Quote(c.Name)
		}
		return " (" + strings.Join(names, ", ") + ")"
	}
	var active, inactive []string
	for _, c := range cols {
		if c.IsActivated {
			active = append(active, t.Quote(c.Name))
		} else {
			inactive = append(inactive, t.Quote(c.Name))
		}
	}
	out := strings.Join(active, ", ")
	if len(inactive) > 0 {
		out += " " + CommentIfDeactivated(strings.Join(inactive, ", "), false, true)
	}
	return " (" + out + ")"
}

// KeyConstraintStatement renders one out-of-line key and whether it is active.
func KeyConstraintStatement(k KeyConstraint, tableActive bool, t Target) (string, bool) {
	constraint, state := KeyOptionsClause(&k.Options, t)
	constraint = strings.TrimPrefix(constraint, " ")
	if constraint != "" {
		constraint += " "
	}
	active := len(k.Columns) == 0
	for _, c := range k.Columns {
		if c.IsActivated {
			active = true
		}
	}
	return constraint + k.KeyType + keyColumnsList(k.Columns, tableActive, t) + state, active
}

// constraintsList prefixes every constraint with ",\n\t"; deactivated ones
// are line comments inside an active table.
func constraintsList(stmts []string, active []bool, tableActive bool) string {
	var b strings.Builder
	for i, s := range stmts {
		b.WriteString(",\n\t")
		if !active[i] && tableActive {
			b.WriteString(CommentIfDeactivated(s, false, false))
			continue
		}
		b.WriteString(s)
	}
	return b.String()
}

func tableType(tbl Table) string {
	switch {
	case tbl.Temporary:
		if strings.EqualFold(tbl.TemporaryType, "private") {
			return " PRIVATE TEMPORARY"
		}
		return " GLOBAL TEMPORARY"
	case tbl.Sharded:
		return " SHARDED"
	case tbl.Duplicated:
		return " DUPLICATED"
	case tbl.Immutable && tbl.BlockchainTableClauses != "":
		return " IMMUTABLE BLOCKCHAIN"
	case tbl.BlockchainTableClauses != "":
		return " BLOCKCHAIN"
	case tbl.Immutable:
		return " IMMUTABLE"
	default:
		return ""
	}
}

func tableOptions(tbl Table) string {
	var parts []string
	if s := strings.TrimSpace(tbl.BlockchainTableClauses); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(tbl.TableProperties); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(tbl.SelectStatement); s != "" {
		parts = append(parts, "AS "+s)
	}
	return strings.Join(parts, "\n")
}

// CreateTable renders CREATE TABLE followed by its comments and synonyms.
func CreateTable(tbl Table, t Target) string {
	tableName := t.Name(tbl.Name, tbl.SchemaName)

	columns := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		columns[i] = ColumnStatement(c, t)
	}

	keyStmts := make([]string, len(tbl.KeyConstraints))
	keyActive := make([]bool, len(tbl.KeyConstraints))
	for i, k := range tbl.KeyConstraints {
		keyStmts[i], keyActive[i] = KeyConstraintStatement(k, tbl.IsActivated, t)
	}

	var checks strings.Builder
	for _, c := range tbl.CheckConstraints {
		checks.WriteString(",\n\t")
		checks.WriteString(CheckConstraint(c, t))
	}

	props := strings.Join(columns, ",\n\t") + constraintsList(keyStmts, keyActive, tbl.IsActivated) + checks.String()

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE%s TABLE%s %s", tableType(tbl), t.IfNotExistsClause(tbl.IfNotExist), tableName)
	if props != "" {
		fmt.Fprintf(&b, "\n(\n\t%s\n)", props)
	}
	if opts := tableOptions(tbl); opts != "" {
		b.WriteString("\n")
		b.WriteString(opts)
	}
	stmt := t.Terminate(b.String(), tbl.IfNotExist, ErrCodeNameAlreadyUsed)

	comments := ""
	if tbl.Description != "" {
		comments = Comment("TABLE", tableName, tbl.Description)
	}
	comments += ColumnComments(tableName, tbl.Columns, t)
	if comments != "" {
		comments = "\n" + comments
	}

	return CommentIfDeactivated(stmt+comments+"\n"+SynonymStatements(tbl.Synonyms, tableName, t), tbl.IsActivated, false)
}

// DropTable renders DROP TABLE.
func DropTable(fullName string) string {
	return fmt.Sprintf("DROP TABLE %s;", fullName)
}

// SynonymStatements renders CREATE SYNONYM statements for objectName.
func SynonymStatements(synonyms []delta.Synonym, objectName string, t Target) string {
	if len(synonyms) == 0 {
		return ""
	}
	out := make([]string, len(synonyms))
	for i, s := range synonyms {
		var b strings.Builder
		b.WriteString("CREATE")
		if s.SynonymOrReplace {
			b.WriteString(" OR REPLACE")
		}
		if s.SynonymEditionable {
			b.WriteString(" EDITIONABLE")
		}
		if s.SynonymPublic {
			b.WriteString(" PUBLIC")
		}
		fmt.Fprintf(&b, " SYNONYM %s\n\tFOR %s;\n", t.Quote(s.SynonymName), objectName)
		out[i] = b.String()
	}
	return "\n" + strings.Join(out, "\n")
}

// SynonymsFor filters synonyms pointing at the entity with the given GUID.
func SynonymsFor(synonyms []delta.Synonym, guid string) []delta.Synonym {
	if guid == "" {
		return nil
	}
	var out []delta.Synonym
	for _, s := range synonyms {
		if s.SynonymEntityID == guid {
			out = append(out, s)
		}
	}
	return out
}

// CreateUser renders CREATE USER ... NO AUTHENTICATION for a schema.
func CreateUser(name string, ifNotExist bool, t Target) string {
	stmt := fmt.Sprintf("CREATE USER%s %s NO AUTHENTICATION", t.IfNotExistsClause(ifNotExist), t.Quote(name))
	return t.Terminate(stmt, ifNotExist, ErrCodeUserConflict)
}

// DropUser renders DROP USER.
func DropUser(name string, t Target) string {
	return fmt.Sprintf("DROP USER %s;", t.Quote(name))
}

// ForeignKey is a hydrated foreign key constraint.
type ForeignKey struct {
	Name          string
	ChildTable    string
	ChildSchema   string
	ChildColumns  []string
	ParentTable   string
	ParentSchema  string
	ParentColumns []string
	OnDelete      string
}

func quoteAll(names []string, t Target) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = t.Quote(n)
	}
	return strings.Join(q, ", ")
}

// AddForeignKey renders ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY.
func AddForeignKey(fk ForeignKey, t Target) string {
	onDelete := ""
	switch action := strings.ToUpper(strings.TrimSpace(fk.OnDelete)); action {
	case "CASCADE", "SET NULL":
		onDelete = " ON DELETE " + action
	}
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s;",
		t.Name(fk.ChildTable, fk.ChildSchema), t.Quote(fk.Name), quoteAll(fk.ChildColumns, t),
		t.Name(fk.ParentTable, fk.ParentSchema), quoteAll(fk.ParentColumns, t), onDelete)
}

// DropForeignKey renders ALTER TABLE ... DROP CONSTRAINT.
func DropForeignKey(fullTableName, constraintName string, t Target) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", fullTableName, t.Quote(constraintName))
}
