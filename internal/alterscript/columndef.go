// internal/alterscript/columndef.go
package alterscript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

// ColumnParent is what a column needs to know about its table or type.
type ColumnParent struct {
	SchemaName string
	Required   []string
}

func (p ColumnParent) isRequired(name string) bool {
	for _, r := range p.Required {
		if r == name {
			return true
		}
	}
	return false
}

// BuildColumnDefinition resolves a column node into a ddl.ColumnDefinition.
// A $ref to a plain definition is inlined under the column; a $ref to a
// structured definition, or one that cannot be resolved, becomes a UDT
// reference named after the last path segment.
func BuildColumnDefinition(col delta.Column, parent ColumnParent, defs *delta.Definitions) (ddl.ColumnDefinition, error) {
	s := col.Schema
	typ := ""
	isUDT := false

	if s.Ref != "" {
		raw, ok := defs.ResolveRaw(s.Ref)
		if !ok {
			typ, isUDT = delta.RefName(s.Ref), true
		} else {
			var def delta.ColumnSchema
			if err := json.Unmarshal(raw, &def); err != nil {
				return ddl.ColumnDefinition{}, fmt.Errorf("column %q: definition %q: %w", col.Name, s.Ref, err)
			}
			if def.IsComposite() {
				typ, isUDT = delta.RefName(s.Ref), true
			} else {
				inlined, err := delta.InlineDefinition(col.Raw, raw)
				if err != nil {
					return ddl.ColumnDefinition{}, fmt.Errorf("column %q: %w", col.Name, err)
				}
				s = inlined
			}
		}
	}
	if typ == "" {
		typ = strings.ToUpper(utils.FirstNonEmpty(s.Mode, s.ChildType, s.Type))
	}

	return ddl.ColumnDefinition{
		Name:       col.Name,
		Type:       typ,
		IsUDTRef:   isUDT,
		SchemaName: parent.SchemaName,

		Nullable:      !parent.isRequired(col.Name),
		Default:       string(s.Default),
		DefaultOnNull: s.DefaultOnNull,
		Generated:     s.GeneratedDefaultValue,
		Identity:      s.Identity,

		Length:            s.Length,
		Precision:         s.Precision,
		Scale:             s.Scale,
		FractSecPrecision: s.FractSecPrecision,
		YearPrecision:     s.YearPrecision,
		DayPrecision:      s.DayPrecision,
		Dimension:         s.Dimension,
		WithTimeZone:      s.WithTimeZone,
		LocalTimeZone:     s.LocalTimeZone,
		LengthSemantics:   s.LengthSemantics,
		Subtype:           s.Subtype,

		Encryption: s.Encryption,

		PrimaryKey:        s.PrimaryKey && !s.CompositePrimaryKey,
		Unique:            s.Unique && !s.CompositeUniqueKey,
		PrimaryKeyOptions: s.PrimaryKeyOptions,
		UniqueKeyOptions:  s.UniqueKeyOptions,

		OfType:         utils.FirstNonEmpty(s.OfType, itemType(s.Items)),
		Size:           s.Size,
		NotPersistable: s.NotPersistable,

		Comment:     utils.FirstNonEmpty(s.RefDescription, s.Description),
		IsActivated: s.Activated(),
	}, nil
}

// BuildColumnDefinitions builds every column of a parent in order.
func BuildColumnDefinitions(cols []delta.Column, parent ColumnParent, defs *delta.Definitions) ([]ddl.ColumnDefinition, error) {
	out := make([]ddl.ColumnDefinition, 0, len(cols))
	for _, c := range cols {
		def, err := BuildColumnDefinition(c, parent, defs)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// itemType is the element type of a collection type: the mode or type of
// the first item schema.
func itemType(items json.RawMessage) string {
	trimmed := bytes.TrimSpace(items)
	if len(trimmed) == 0 {
		return ""
	}
	var item delta.ColumnSchema
	if trimmed[0] == '[' {
		var list []delta.ColumnSchema
		if err := json.Unmarshal(trimmed, &list); err != nil || len(list) == 0 {
			return ""
		}
		item = list[0]
	} else if err := json.Unmarshal(trimmed, &item); err != nil {
		return ""
	}
	if item.Ref != "" {
		return delta.RefName(item.Ref)
	}
	return utils.FirstNonEmpty(item.Mode, item.Type)
}

// tableKeys moves named single column keys out of the column definitions and
// collects composite keys. Order: primary key columns, composite primary
// keys, unique columns, composite unique keys.
func tableKeys(schema *delta.EntitySchema, cols []delta.Column, defs []ddl.ColumnDefinition) []ddl.KeyConstraint {
	byGUID := make(map[string]ddl.KeyColumn, len(cols))
	for i, c := range cols {
		if c.Schema.GUID != "" {
			byGUID[c.Schema.GUID] = ddl.KeyColumn{Name: c.Name, IsActivated: defs[i].IsActivated}
		}
	}

	var keys []ddl.KeyConstraint
	namedKey := func(keyType string, pick func(d *ddl.ColumnDefinition) (*bool, *delta.KeyOptions)) {
		for i := range defs {
			flag, opts := pick(&defs[i])
			if !*flag || opts == nil || opts.ConstraintName == "" {
				continue
			}
			*flag = false
			keys = append(keys, ddl.KeyConstraint{
				KeyType: keyType,
				Columns: []ddl.KeyColumn{{Name: defs[i].Name, IsActivated: defs[i].IsActivated}},
				Options: *opts,
			})
		}
	}
	compositeKey := func(keyType string, list []delta.CompositeKey, refs func(k delta.CompositeKey) []delta.KeyRef) {
		for _, k := range list {
			var columns []ddl.KeyColumn
			for _, ref := range refs(k) {
				if col, ok := byGUID[ref.KeyID]; ok {
					columns = append(columns, col)
				}
			}
			if len(columns) == 0 {
				continue
			}
			keys = append(keys, ddl.KeyConstraint{KeyType: keyType, Columns: columns, Options: k.KeyOptions})
		}
	}

	namedKey("PRIMARY KEY", func(d *ddl.ColumnDefinition) (*bool, *delta.KeyOptions) { return &d.PrimaryKey, d.PrimaryKeyOptions })
	compositeKey("PRIMARY KEY", schema.PrimaryKey, func(k delta.CompositeKey) []delta.KeyRef { return k.CompositePrimaryKey })
	namedKey("UNIQUE", func(d *ddl.ColumnDefinition) (*bool, *delta.KeyOptions) { return &d.Unique, d.UniqueKeyOptions })
	compositeKey("UNIQUE", schema.UniqueKey, func(k delta.CompositeKey) []delta.KeyRef { return k.CompositeUniqueKey })
	return keys
}
