// internal/alterscript/relationship.go
package alterscript

import (
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

func activated(flag *bool) bool { return flag == nil || *flag }

// relationshipNames returns the constraint name before and after the change.
func relationshipNames(r *delta.Relationship) (oldName, newName string) {
	cm := r.Schema.CompMod
	current := utils.FirstNonEmpty(r.Schema.Code, r.Schema.Name, r.Name)
	newName, oldName = current, current
	if cm.Code != nil || cm.Name != nil {
		var code, name delta.OldNew[string]
		if cm.Code != nil {
			code = *cm.Code
		}
		if cm.Name != nil {
			name = *cm.Name
		}
		newName = utils.FirstNonEmpty(code.New, name.New, current)
		oldName = utils.FirstNonEmpty(code.Old, name.Old, newName)
	}
	return oldName, newName
}

// relationshipChanged reports a modification that reaches the constraint.
func relationshipChanged(r *delta.Relationship) bool {
	cm := r.Schema.CompMod
	if cm.Modified {
		return true
	}
	oldName, newName := relationshipNames(r)
	if oldName != newName {
		return true
	}
	return cm.CustomProperties != nil && cm.CustomProperties.Old != cm.CustomProperties.New
}

func relationshipActivated(r *delta.Relationship) bool {
	cm := r.Schema.CompMod
	return activated(r.Schema.IsActivated) &&
		activated(cm.Child.Collection.IsActivated) &&
		activated(cm.Parent.Collection.IsActivated)
}

func fkColumns(end *delta.RelationshipEnd) []string {
	out := make([]string, len(end.Collection.FkFields))
	for i, f := range end.Collection.FkFields {
		out[i] = f.Name
	}
	return out
}

// relationshipScripts drops deleted and modified foreign keys, then adds
// created and modified ones.
func (s *synthesizer) relationshipScripts(rels []delta.Relationship) []*AlterScriptDto {
	var drops, adds []*AlterScriptDto
	for i := range rels {
		r := &rels[i]
		cm := r.Schema.CompMod
		if cm == nil || cm.Child == nil || cm.Parent == nil {
			s.log.Debug("Skipping relationship without both ends", zap.String("relationship", r.Name))
			continue
		}

		dropIt, addIt := false, false
		switch r.Kind {
		case delta.Added:
			addIt = cm.Created
		case delta.Deleted:
			dropIt = cm.Deleted
		case delta.Modified:
			dropIt = relationshipChanged(r)
			addIt = dropIt
		}

		oldName, newName := relationshipNames(r)
		isActivated := relationshipActivated(r)
		if dropIt {
			full := s.t.Name(cm.Child.TableName(), cm.Child.SchemaName())
			drops = append(drops, NewAlterScriptDto([]string{ddl.DropForeignKey(full, oldName, s.t)}, isActivated, true))
		}
		if addIt {
			onDelete := ""
			if cm.CustomProperties != nil {
				onDelete = cm.CustomProperties.New.RelationshipOnDelete
			}
			fk := ddl.ForeignKey{
				Name:          newName,
				ChildTable:    cm.Child.TableName(),
				ChildSchema:   cm.Child.SchemaName(),
				ChildColumns:  fkColumns(cm.Child),
				ParentTable:   cm.Parent.TableName(),
				ParentSchema:  cm.Parent.SchemaName(),
				ParentColumns: fkColumns(cm.Parent),
				OnDelete:      onDelete,
			}
			adds = append(adds, NewAlterScriptDto([]string{ddl.AddForeignKey(fk, s.t)}, isActivated, false))
		}
	}
	return compact(append(drops, adds...))
}
