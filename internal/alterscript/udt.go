// internal/alterscript/udt.go
package alterscript

import (
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

// udtKind maps the modeler's child type onto the ddl type kinds.
func udtKind(schema *delta.ColumnSchema) string {
	switch strings.ToLower(utils.FirstNonEmpty(schema.ChildType, schema.Type)) {
	case "varray":
		return ddl.UdtVarray
	case "table", "nested_table":
		return ddl.UdtTable
	default:
		return ddl.UdtObject
	}
}

// isObjectUdt: attribute level changes only apply to object types.
func isObjectUdt(u *delta.Udt) bool {
	return u.Schema.ChildType == ddl.UdtObject
}

// Types are model level objects and are never schema qualified.
func (s *synthesizer) udtName(u *delta.Udt) string {
	return s.t.Quote(u.TypeName())
}

func (s *synthesizer) createUdt(u *delta.Udt) (*AlterScriptDto, error) {
	attrs, err := BuildColumnDefinitions(u.Columns, ColumnParent{Required: u.Schema.Required}, s.defs)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", u.TypeName(), err)
	}
	script := ddl.CreateUdt(ddl.Udt{
		Name:           u.TypeName(),
		Kind:           udtKind(&u.Schema),
		Attributes:     attrs,
		OfType:         utils.FirstNonEmpty(u.Schema.OfType, itemType(u.Schema.Items)),
		Size:           u.Schema.Size,
		NotPersistable: u.Schema.NotPersistable,
		Synonyms:       ddl.SynonymsFor(s.synonyms, u.Schema.GUID),
		IsActivated:    u.Schema.Activated(),
	}, s.t)
	return NewAlterScriptDto([]string{script}, true, false), nil
}

func (s *synthesizer) dropUdt(u *delta.Udt) *AlterScriptDto {
	return NewAlterScriptDto([]string{ddl.DropUdt(s.udtName(u))}, true, true)
}

func (s *synthesizer) addAttributes(u *delta.Udt) ([]*AlterScriptDto, error) {
	var out []*AlterScriptDto
	for _, col := range u.Columns {
		if col.Schema.CompMod != nil {
			continue
		}
		attr, err := BuildColumnDefinition(col, ColumnParent{}, s.defs)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", u.TypeName(), err)
		}
		out = append(out, NewAlterScriptDto([]string{ddl.AddAttribute(s.udtName(u), attr, s.t)}, attr.IsActivated, false))
	}
	return compact(out), nil
}

func (s *synthesizer) dropAttributes(u *delta.Udt) []*AlterScriptDto {
	var out []*AlterScriptDto
	for _, col := range u.Columns {
		if col.Schema.CompMod != nil {
			continue
		}
		out = append(out, NewAlterScriptDto([]string{ddl.DropAttribute(s.udtName(u), col.Name, s.t)}, col.Schema.Activated(), true))
	}
	return compact(out)
}

// modifyAttributes: a renamed attribute is dropped and added again since
// Oracle cannot rename type attributes; a retyped one is modified in place.
func (s *synthesizer) modifyAttributes(u *delta.Udt) ([]*AlterScriptDto, error) {
	var out []*AlterScriptDto
	for _, col := range u.Columns {
		cm := col.Schema.CompMod
		if cm == nil {
			continue
		}
		attr, err := BuildColumnDefinition(col, ColumnParent{}, s.defs)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", u.TypeName(), err)
		}
		if cm.NameChanged() {
			attr.Name = cm.NewField.Name
			out = append(out, NewAlterScriptDtoFromScripts([]ModificationScript{
				{Script: ddl.DropAttribute(s.udtName(u), cm.OldField.Name, s.t), IsDropScript: true},
				{Script: ddl.AddAttribute(s.udtName(u), attr, s.t)},
			}, attr.IsActivated))
			continue
		}
		if cm.TypeChanged() || cm.SizeChanged() {
			typ := ddl.DecorateType(ddl.ReplaceTypeByVersion(attr.Type, s.t), attr)
			out = append(out, NewAlterScriptDto(
				[]string{ddl.ModifyAttribute(s.udtName(u), attr.Name, typ, s.t)}, attr.IsActivated, false))
		}
	}
	return compact(out), nil
}
