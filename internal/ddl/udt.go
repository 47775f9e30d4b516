// internal/ddl/udt.go
package ddl

import (
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/delta"
)

// Jenis tipe koleksi Oracle.
const (
	UdtObject = "object_udt"
	UdtVarray = "varray"
	UdtTable  = "table"
)

// Udt is a hydrated user defined type.
type Udt struct {
	Name           string
	SchemaName     string
	Kind           string
	Attributes     []ColumnDefinition
	OfType         string
	Size           delta.OptInt
	NotPersistable bool
	Synonyms       []delta.Synonym
	IsActivated    bool
}

// CreateUdt renders CREATE OR REPLACE TYPE as an object or collection type.
func CreateUdt(u Udt, t Target) string {
	name := t.Name(u.Name, u.SchemaName)

	var stmt string
	switch u.Kind {
	case UdtVarray, UdtTable:
		collection := "TABLE"
		if u.Kind == UdtVarray {
			collection = "VARRAY"
			if u.Size.Set {
				collection += fmt.Sprintf("(%d)", u.Size.Value)
			}
		}
		notPersistable := ""
		if u.NotPersistable {
			notPersistable = " NOT PERSISTABLE"
		}
		stmt = fmt.Sprintf("CREATE OR REPLACE TYPE %s IS %s OF %s%s;\n",
			name, collection, ReplaceTypeByVersion(strings.ToUpper(u.OfType), t), notPersistable)
	default:
		attrs := make([]string, len(u.Attributes))
		for i, a := range u.Attributes {
			attrs[i] = AttributeStatement(a, t)
		}
		stmt = fmt.Sprintf("CREATE OR REPLACE TYPE %s AS OBJECT \n(\n\t%s\n);\n", name, strings.Join(attrs, ",\n\t"))
	}
	return CommentIfDeactivated(stmt+SynonymStatements(u.Synonyms, name, t), u.IsActivated, false)
}

// DropUdt renders DROP TYPE.
func DropUdt(fullName string) string {
	return fmt.Sprintf("DROP TYPE %s;", fullName)
}

// AddAttribute renders ALTER TYPE ... ADD ATTRIBUTE.
func AddAttribute(fullTypeName string, attr ColumnDefinition, t Target) string {
	typ := DecorateType(ReplaceTypeByVersion(attr.Type, t), attr)
	return fmt.Sprintf("ALTER TYPE %s ADD ATTRIBUTE %s%s;", fullTypeName, t.Quote(attr.Name), typ)
}

// DropAttribute renders ALTER TYPE ... DROP ATTRIBUTE.
func DropAttribute(fullTypeName, attrName string, t Target) string {
	return fmt.Sprintf("ALTER TYPE %s DROP ATTRIBUTE %s;", fullTypeName, t.Quote(attrName))
}

// ModifyAttribute renders ALTER TYPE ... MODIFY ATTRIBUTE with the full new type.
func ModifyAttribute(fullTypeName, attrName, decoratedType string, t Target) string {
	return fmt.Sprintf("ALTER TYPE %s MODIFY ATTRIBUTE %s%s;", fullTypeName, t.Quote(attrName), decoratedType)
}
