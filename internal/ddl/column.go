// internal/ddl/column.go
package ddl

import (
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/delta"
)

// ColumnDefinition is a column resolved into everything the renderer needs.
type ColumnDefinition struct {
	Name       string
	Type       string
	IsUDTRef   bool
	SchemaName string

	Nullable      bool
	Default       string
	DefaultOnNull bool
	Generated     *delta.GeneratedDefault
	// legacy identity layout (identity.generated)
	Identity *delta.Identity

	Length            delta.OptInt
	Precision         delta.OptInt
	Scale             delta.OptInt
	FractSecPrecision delta.OptInt
	YearPrecision     delta.OptInt
	DayPrecision      delta.OptInt
	Dimension         delta.OptInt
	WithTimeZone      bool
	LocalTimeZone     bool
	LengthSemantics   string
	Subtype           string

	Encryption *delta.Encryption

	PrimaryKey        bool
	Unique            bool
	PrimaryKeyOptions *delta.KeyOptions
	UniqueKeyOptions  *delta.KeyOptions

	OfType         string
	Size           delta.OptInt
	NotPersistable bool

	Comment     string
	IsActivated bool
	Synonyms    []delta.Synonym
}

var (
	byteTypes     = map[string]bool{"CHAR": true, "VARCHAR2": true}
	lengthTypes   = map[string]bool{"CHAR": true, "VARCHAR2": true, "NCHAR": true, "NVARCHAR2": true, "RAW": true, "UROWID": true}
	vectorFormats = map[string]string{
		"vector<int8>":    "INT8",
		"vector<float32>": "FLOAT32",
		"vector<float64>": "FLOAT64",
	}
	jsonSubtypes = map[string]bool{"object": true, "array": true, "scalar": true}
)

// ReplaceTypeByVersion downgrades JSON to CLOB on versions without native JSON.
func ReplaceTypeByVersion(typ string, t Target) string {
	if typ == "JSON" && t.UseClobForJSON() {
		return "CLOB"
	}
	return typ
}

// DecorateType renders the type with its modifiers. Exactly one rule applies
// and the result always starts with a space.
func DecorateType(typ string, c ColumnDefinition) string {
	switch {
	case c.LengthSemantics != "" && byteTypes[typ] && c.Length.Set:
		return fmt.Sprintf(" %s(%d %s)", typ, c.Length.Value, strings.ToUpper(c.LengthSemantics))
	case lengthTypes[typ] && c.Length.Set:
		return fmt.Sprintf(" %s(%d)", typ, c.Length.Value)
	case typ == "NUMBER":
		switch {
		case c.Scale.Set && c.Precision.Set && c.Precision.Value != 0:
			return fmt.Sprintf(" %s(%d,%d)", typ, c.Precision.Value, c.Scale.Value)
		case c.Scale.Set:
			return fmt.Sprintf(" %s(*,%d)", typ, c.Scale.Value)
		case c.Precision.Set:
			return fmt.Sprintf(" %s(%d)", typ, c.Precision.Value)
		}
		return " " + typ
	case typ == "FLOAT" && c.Precision.Set:
		return fmt.Sprintf(" %s(%d)", typ, c.Precision.Value)
	case typ == "TIMESTAMP":
		var b strings.Builder
		b.WriteString(" TIMESTAMP")
		if c.FractSecPrecision.Set {
			fmt.Fprintf(&b, "(%d)", c.FractSecPrecision.Value)
		}
		if c.WithTimeZone {
			b.WriteString(" WITH")
			if c.LocalTimeZone {
				b.WriteString(" LOCAL")
			}
			b.WriteString(" TIME ZONE")
		}
		return b.String()
	case typ == "INTERVAL YEAR":
		return " INTERVAL YEAR" + precisionSuffix(c.YearPrecision) + " TO MONTH"
	case typ == "INTERVAL DAY":
		return " INTERVAL DAY" + precisionSuffix(c.DayPrecision) + " TO SECOND" + precisionSuffix(c.FractSecPrecision)
	case c.IsUDTRef && c.SchemaName != "":
		return fmt.Sprintf(` "%s"."%s"`, c.SchemaName, typ)
	case typ == "VECTOR" && (c.Dimension.Set || c.Subtype != ""):
		dimension := "*"
		if c.Dimension.Set && c.Dimension.Value != 0 {
			dimension = fmt.Sprint(c.Dimension.Value)
		}
		format, ok := vectorFormats[c.Subtype]
		if !ok {
			format = "*"
		}
		return fmt.Sprintf(" %s(%s, %s)", typ, dimension, format)
	case typ == "JSON" && jsonSubtypes[strings.ToLower(c.Subtype)]:
		return fmt.Sprintf(" JSON (%s)", strings.ToUpper(c.Subtype))
	default:
		return " " + typ
	}
}

func precisionSuffix(p delta.OptInt) string {
	if !p.Set {
		return ""
	}
	return fmt.Sprintf("(%d)", p.Value)
}

// canHaveIdentity: hanya NUMBER yang boleh jadi identity column.
func canHaveIdentity(typ string) bool {
	return strings.EqualFold(typ, "number")
}

func generatedClause(generatedType string, onNull bool) string {
	if generatedType == "BY DEFAULT" {
		if onNull {
			return " GENERATED BY DEFAULT ON NULL"
		}
		return " GENERATED BY DEFAULT"
	}
	return " GENERATED ALWAYS"
}

func identityOptions(id *delta.Identity) string {
	var parts []string
	if id.IdentityStart.Set {
		parts = append(parts, fmt.Sprintf("START WITH %d", id.IdentityStart.Value))
	}
	if id.IdentityIncrement.Set {
		parts = append(parts, fmt.Sprintf("INCREMENT BY %d", id.IdentityIncrement.Value))
	}
	if id.NumberToCache.Set {
		parts = append(parts, fmt.Sprintf("CACHE %d", id.NumberToCache.Value))
	} else {
		parts = append(parts, "NOCACHE")
	}
	return strings.Join(parts, " ")
}

// ColumnDefault renders the identity, generated expression or literal default
// clause of a column.
func ColumnDefault(c ColumnDefinition) string {
	if g := c.Generated; g != nil {
		clause := generatedClause(g.GeneratedType, g.GeneratedOnNull)
		if g.AsIdentity && canHaveIdentity(c.Type) && !g.Identity.IsEmpty() {
			return fmt.Sprintf("%s AS IDENTITY (%s)", clause, identityOptions(g.Identity))
		}
		if expr := strings.TrimSpace(g.Expression); expr != "" {
			return fmt.Sprintf("%s AS (%s)", clause, expr)
		}
	}
	if id := c.Identity; id != nil && id.Generated != "" && canHaveIdentity(c.Type) {
		return fmt.Sprintf("%s AS IDENTITY (%s)", generatedClause(id.Generated, id.GeneratedOnNull), identityOptions(id))
	}
	if c.Default != "" {
		if c.DefaultOnNull {
			return " DEFAULT ON NULL " + c.Default
		}
		return " DEFAULT " + c.Default
	}
	return ""
}

// ColumnEncrypt renders the ENCRYPT clause.
func ColumnEncrypt(c ColumnDefinition) string {
	e := c.Encryption
	if e.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(" ENCRYPT")
	if e.EncryptionAlgorithm != "" {
		fmt.Fprintf(&b, " USING '%s'", e.EncryptionAlgorithm)
	}
	if e.IntegrityAlgorithm != "" {
		fmt.Fprintf(&b, " '%s'", e.IntegrityAlgorithm)
	}
	if e.NoSalt {
		b.WriteString(" NO SALT")
	}
	return b.String()
}

// KeyOptionsClause renders the constraint name and state clauses of a key.
func KeyOptionsClause(opts *delta.KeyOptions, t Target) (constraint, state string) {
	if opts == nil {
		return "", ""
	}
	if name := strings.TrimSpace(opts.ConstraintName); name != "" {
		constraint = " CONSTRAINT " + t.Quote(name)
	}
	var parts []string
	for _, p := range []string{opts.DeferClause, opts.Rely, opts.IndexClause, opts.Validate, opts.ExceptionClause} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		state = " " + strings.Join(parts, " ")
	}
	return constraint, state
}

// ColumnConstraints renders inline NOT NULL / PRIMARY KEY / UNIQUE constraints.
func ColumnConstraints(c ColumnDefinition, t Target) string {
	var opts *delta.KeyOptions
	switch {
	case c.PrimaryKey:
		opts = c.PrimaryKeyOptions
	case c.Unique:
		opts = c.UniqueKeyOptions
	}
	constraint, state := KeyOptionsClause(opts, t)

	var b strings.Builder
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	b.WriteString(constraint)
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	b.WriteString(state)
	return b.String()
}

// ColumnStatement renders a full column definition; deactivated columns are
// commented out.
func ColumnStatement(c ColumnDefinition, t Target) string {
	typ := ReplaceTypeByVersion(c.Type, t)
	stmt := t.Quote(c.Name) + DecorateType(typ, c) + ColumnDefault(c) + ColumnEncrypt(c) + ColumnConstraints(c, t)
	return CommentIfDeactivated(stmt, c.IsActivated, false)
}

// AttributeStatement renders a UDT attribute: name and decorated type only.
func AttributeStatement(c ColumnDefinition, t Target) string {
	typ := ReplaceTypeByVersion(c.Type, t)
	return CommentIfDeactivated(t.Quote(c.Name)+DecorateType(typ, c), c.IsActivated, false)
}

// ColumnComments renders COMMENT ON COLUMN statements for described columns.
func ColumnComments(tableName string, columns []ColumnDefinition, t Target) string {
	var out []string
	for _, c := range columns {
		if c.Comment == "" {
			continue
		}
		stmt := Comment("COLUMN", tableName+"."+t.Quote(c.Name), c.Comment)
		out = append(out, CommentIfDeactivated(stmt, c.IsActivated, false))
	}
	return strings.Join(out, "\n")
}

// AddColumn renders ALTER TABLE ... ADD (...).
func AddColumn(fullTableName, columnStatement string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD (%s);", fullTableName, columnStatement)
}

// DropColumn renders ALTER TABLE ... DROP COLUMN.
func DropColumn(fullTableName, columnName string, t Target) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", fullTableName, t.Quote(columnName))
}

// RenameColumn renders ALTER TABLE ... RENAME COLUMN.
func RenameColumn(fullTableName, oldName, newName string, t Target) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", fullTableName, t.Quote(oldName), t.Quote(newName))
}

// ModifyColumn renders ALTER TABLE ... MODIFY (column type).
func ModifyColumn(fullTableName, columnName, decoratedType string, t Target) string {
	return fmt.Sprintf("ALTER TABLE %s MODIFY (%s%s);", fullTableName, t.Quote(columnName), decoratedType)
}
