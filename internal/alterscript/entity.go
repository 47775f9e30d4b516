// internal/alterscript/entity.go
package alterscript

import (
	"fmt"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

func (s *synthesizer) fullTableName(c *delta.Collection) string {
	return s.t.Name(c.Schema.EntityName(), c.SchemaName())
}

func (s *synthesizer) columnParent(c *delta.Collection) ColumnParent {
	return ColumnParent{SchemaName: c.SchemaName(), Required: c.Schema.Required}
}

func (s *synthesizer) indexTable(c *delta.Collection) IndexTable {
	schemaName := ""
	if cm := c.Role.CompMod; cm != nil && cm.BucketProperties != nil {
		schemaName = cm.BucketProperties.Name
	}
	return IndexTable{Name: c.TableName(), SchemaName: utils.FirstNonEmpty(schemaName, c.SchemaName())}
}

// createTable renders CREATE TABLE together with the indexes of the new table.
func (s *synthesizer) createTable(c *delta.Collection) (*AlterScriptDto, error) {
	columns, err := BuildColumnDefinitions(c.Columns, s.columnParent(c), s.defs)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", c.Schema.EntityName(), err)
	}
	keys := tableKeys(&c.Schema, c.Columns, columns)

	tbl := ddl.Table{
		Name:                   c.Schema.EntityName(),
		SchemaName:             c.SchemaName(),
		Columns:                columns,
		KeyConstraints:         keys,
		CheckConstraints:       c.Schema.ChkConstr,
		Temporary:              c.Schema.Temporary,
		TemporaryType:          c.Schema.TemporaryType,
		Duplicated:             c.Schema.Duplicated,
		Sharded:                c.Schema.Sharded,
		Immutable:              c.Schema.Immutable,
		BlockchainTableClauses: c.Schema.BlockchainTableClauses,
		TableProperties:        c.Schema.TableProperties,
		SelectStatement:        c.Schema.SelectStatement,
		Description:            c.Schema.Description,
		IfNotExist:             c.Schema.IfNotExist,
		Synonyms:               ddl.SynonymsFor(s.synonyms, c.Schema.GUID),
		IsActivated:            c.Schema.Activated(),
	}

	scripts := []string{ddl.CreateTable(tbl, s.t)}
	prev, next := c.RoleIndexes()
	if prev == nil && next == nil {
		next = c.Schema.Indxs
	}
	indexes := AddedIndexes(prev, next, s.indexTable(c), s.t)
	for _, dto := range indexes {
		for _, f := range dto.Scripts {
			scripts = append(scripts, f.Script)
		}
	}
	return NewAlterScriptDto(scripts, true, false), nil
}

func (s *synthesizer) dropTable(c *delta.Collection) *AlterScriptDto {
	return NewAlterScriptDto([]string{ddl.DropTable(s.fullTableName(c))}, true, true)
}

// modifyTable classifies the index changes of a table. Added indexes that
// the create or add-column path of the same delta already emits are left out.
func (s *synthesizer) modifyTable(c *delta.Collection, fresh map[string]newColumns) []*AlterScriptDto {
	prev, next := c.RoleIndexes()
	if prev == nil && next == nil {
		return nil
	}
	skip := fresh[s.fullTableName(c)].covers
	return indexChanges(prev, next, s.indexTable(c), s.t, skip)
}

// newColumns is what a delta creates on one table: the whole table, or
// the columns (by GUID) added to it.
type newColumns struct {
	table bool
	guids map[string]bool
}

// covers reports an index created on the table or keyed on a new column.
func (n newColumns) covers(idx delta.Index) bool {
	if n.table {
		return true
	}
	for _, key := range idx.IndxKey {
		if key.KeyID != "" && n.guids[key.KeyID] {
			return true
		}
	}
	return false
}

// addedColumns returns the GUIDs of the columns an added item carries
// without a change record of their own, i.e. the ones ALTER TABLE ADD creates.
func addedColumns(c *delta.Collection) map[string]bool {
	guids := map[string]bool{}
	for _, col := range c.Columns {
		if col.Schema.CompMod == nil && col.Schema.GUID != "" {
			guids[col.Schema.GUID] = true
		}
	}
	return guids
}

// newColumnsByTable indexes the tables and columns the added items of a
// delta create, keyed by full table name.
func (s *synthesizer) newColumnsByTable(collections []delta.Collection) map[string]newColumns {
	out := map[string]newColumns{}
	for i := range collections {
		c := &collections[i]
		if c.Kind != delta.Added {
			continue
		}
		key := s.fullTableName(c)
		n := out[key]
		if c.IsCreated() {
			n.table = true
		}
		if c.ColumnLevel() {
			if n.guids == nil {
				n.guids = map[string]bool{}
			}
			for guid := range addedColumns(c) {
				n.guids[guid] = true
			}
		}
		out[key] = n
	}
	return out
}

// indexesOnNewColumns creates the added indexes keyed on a column the
// item adds. They run after the ALTER TABLE ADD statements.
func (s *synthesizer) indexesOnNewColumns(c *delta.Collection) []*AlterScriptDto {
	guids := addedColumns(c)
	if len(guids) == 0 {
		return nil
	}
	prev, next := c.RoleIndexes()
	return addedIndexes(prev, next, s.indexTable(c), s.t, newColumns{guids: guids}.covers)
}

// addColumns renders ALTER TABLE ADD for every column of the item that has
// no change record of its own.
func (s *synthesizer) addColumns(c *delta.Collection) ([]*AlterScriptDto, error) {
	full := s.fullTableName(c)
	var out []*AlterScriptDto
	for _, col := range c.Columns {
		if col.Schema.CompMod != nil {
			continue
		}
		def, err := BuildColumnDefinition(col, s.columnParent(c), s.defs)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", c.Schema.EntityName(), err)
		}
		out = append(out, NewAlterScriptDto([]string{ddl.AddColumn(full, ddl.ColumnStatement(def, s.t))}, true, false))
	}
	return compact(append(out, s.indexesOnNewColumns(c)...)), nil
}

func (s *synthesizer) dropColumns(c *delta.Collection) []*AlterScriptDto {
	full := s.fullTableName(c)
	var out []*AlterScriptDto
	for _, col := range c.Columns {
		if col.Schema.CompMod != nil {
			continue
		}
		out = append(out, NewAlterScriptDto([]string{ddl.DropColumn(full, col.Name, s.t)}, col.Schema.Activated(), true))
	}
	return compact(out)
}

// modifyColumns renames first, then changes data types.
func (s *synthesizer) modifyColumns(c *delta.Collection) ([]*AlterScriptDto, error) {
	full := s.fullTableName(c)
	var renames, retypes []*AlterScriptDto
	for _, col := range c.Columns {
		cm := col.Schema.CompMod
		if cm == nil {
			continue
		}
		if cm.NameChanged() {
			renames = append(renames, NewAlterScriptDto(
				[]string{ddl.RenameColumn(full, cm.OldField.Name, cm.NewField.Name, s.t)}, col.Schema.Activated(), false))
		}
		if cm.TypeChanged() || cm.SizeChanged() {
			def, err := BuildColumnDefinition(col, s.columnParent(c), s.defs)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", c.Schema.EntityName(), err)
			}
			name := utils.FirstNonEmpty(cm.NewField.Name, col.Name)
			typ := ddl.DecorateType(ddl.ReplaceTypeByVersion(def.Type, s.t), def)
			retypes = append(retypes, NewAlterScriptDto(
				[]string{ddl.ModifyColumn(full, name, typ, s.t)}, col.Schema.Activated(), false))
		}
	}
	return compact(append(renames, retypes...)), nil
}
