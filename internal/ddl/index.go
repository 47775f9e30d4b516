// internal/ddl/index.go
package ddl

import (
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

// IndexKeys renders the parenthesized key list; an expression wins over columns.
func IndexKeys(idx delta.Index, t Target) string {
	if idx.ColumnExpression != "" {
		return "\n(\n\t" + utils.EscapeSingleQuote(idx.ColumnExpression) + "\n)"
	}
	if len(idx.IndxKey) == 0 {
		return ""
	}
	keys := make([]string, len(idx.IndxKey))
	for i, k := range idx.IndxKey {
		keys[i] = t.Quote(k.Name)
		if k.Type != "" {
			keys[i] += " " + strings.ToUpper(k.Type)
		}
	}
	return "\n(\n\t" + strings.Join(keys, ",\n\t") + "\n)"
}

// IndexOptions renders physical options. index_properties and then
// index_attributes replace the logging/tablespace/compression triple.
func IndexOptions(idx delta.Index) string {
	var b strings.Builder
	if idx.LoggingClause != "" {
		b.WriteString(" " + strings.ToUpper(idx.LoggingClause))
	}
	if idx.Tablespace != "" {
		b.WriteString(" TABLESPACE " + idx.Tablespace)
	}
	if idx.IndexCompression != "" {
		b.WriteString(" " + idx.IndexCompression)
	}
	options := b.String()
	switch {
	case idx.IndexProperties != "":
		options = " " + idx.IndexProperties
	case idx.IndexAttributes != "":
		options = " " + idx.IndexAttributes
	}
	return strings.TrimSpace(options)
}

// CreateIndex renders CREATE INDEX on tableName inside schemaName.
func CreateIndex(tableName, schemaName string, idx delta.Index, t Target) string {
	indexType := ""
	if idx.IndxType != "" {
		indexType = " " + strings.ToUpper(idx.IndxType)
	}
	name := ""
	if idx.IndxName != "" {
		name = " " + t.Name(idx.IndxName, schemaName)
	}
	keys := IndexKeys(idx, t)
	options := IndexOptions(idx)
	if options != "" {
		if keys != "" {
			options = "\n\t" + options
		} else {
			options = " " + options
		}
	}

	stmt := fmt.Sprintf("CREATE%s INDEX%s%s ON %s%s%s",
		indexType, t.IfNotExistsClause(idx.IfNotExist), name, t.Name(tableName, schemaName), keys, options)
	return CommentIfDeactivated(t.Terminate(stmt, idx.IfNotExist, ErrCodeNameAlreadyUsed), idx.Activated(), false)
}

// DropIndex renders DROP INDEX.
func DropIndex(fullName string) string {
	return fmt.Sprintf("DROP INDEX %s;", fullName)
}

// RenameIndex renders ALTER INDEX ... RENAME TO; newName is the bare new name.
func RenameIndex(oldFullName, newName string, t Target) string {
	return fmt.Sprintf("ALTER INDEX %s RENAME TO %s;", oldFullName, t.Quote(newName))
}

// RebuildIndex renders ALTER INDEX ... REBUILD with the new physical options.
func RebuildIndex(fullName string, idx delta.Index) string {
	options := IndexOptions(idx)
	if options == "" {
		return fmt.Sprintf("ALTER INDEX %s REBUILD;", fullName)
	}
	return fmt.Sprintf("ALTER INDEX %s REBUILD %s;", fullName, options)
}
