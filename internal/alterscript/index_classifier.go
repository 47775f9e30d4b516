// internal/alterscript/index_classifier.go
package alterscript

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
)

// IndexTable is the table an index change applies to, under its new name.
type IndexTable struct {
	Name       string
	SchemaName string
}

var indexCmpOpts = cmp.Options{cmpopts.EquateEmpty()}

// needsRecreate reports a change Oracle can only apply by dropping and
// creating the index again.
func needsRecreate(prev, next delta.Index) bool {
	return prev.IndxType != next.IndxType ||
		!cmp.Equal(prev.IndxKey, next.IndxKey, indexCmpOpts) ||
		prev.ColumnExpression != next.ColumnExpression ||
		prev.IndexProperties != next.IndexProperties ||
		prev.IndexAttributes != next.IndexAttributes
}

// needsRebuild reports a change of the physical attributes only.
func needsRebuild(prev, next delta.Index) bool {
	return prev.IndexCompression != next.IndexCompression ||
		prev.Tablespace != next.Tablespace ||
		prev.LoggingClause != next.LoggingClause
}

// ClassifyIndex produces the statements turning old into new. Exactly one
// branch applies: drop and create, rename, or rebuild.
func ClassifyIndex(prev, next delta.Index, tbl IndexTable, t ddl.Target) []*AlterScriptDto {
	oldName := t.Name(prev.IndxName, tbl.SchemaName)

	switch {
	case needsRecreate(prev, next):
		return compact([]*AlterScriptDto{
			NewAlterScriptDto([]string{ddl.DropIndex(oldName)}, next.Activated(), true),
			NewAlterScriptDto([]string{ddl.CreateIndex(tbl.Name, tbl.SchemaName, next, t)}, true, false),
		})
	case prev.IndxName != next.IndxName:
		return compact([]*AlterScriptDto{
			NewAlterScriptDto([]string{ddl.RenameIndex(oldName, next.IndxName, t)}, next.Activated(), false),
		})
	case needsRebuild(prev, next):
		return compact([]*AlterScriptDto{
			NewAlterScriptDto([]string{ddl.RebuildIndex(oldName, next)}, next.Activated(), false),
		})
	}
	return nil
}

// IndexChanges compares two index lists of a table. Order: removed,
// added, modified.
func IndexChanges(prev, next []delta.Index, tbl IndexTable, t ddl.Target) []*AlterScriptDto {
	return indexChanges(prev, next, tbl, t, nil)
}

// indexChanges is IndexChanges with the added indexes for which skip
// reports true left out.
func indexChanges(prev, next []delta.Index, tbl IndexTable, t ddl.Target, skip func(delta.Index) bool) []*AlterScriptDto {
	var removed, added, modified []*AlterScriptDto
	pairs, paired := pairIndexes(prev, next)

	for i, o := range prev {
		if !paired[i] {
			removed = append(removed, NewAlterScriptDto(
				[]string{ddl.DropIndex(t.Name(o.IndxName, tbl.SchemaName))}, o.Activated(), true))
		}
	}
	for i, n := range next {
		j := pairs[i]
		if j < 0 {
			if skip == nil || !skip(n) {
				added = append(added, addedIndex(n, tbl, t))
			}
			continue
		}
		modified = append(modified, ClassifyIndex(prev[j], n, tbl, t)...)
	}

	out := append(removed, added...)
	return compact(append(out, modified...))
}

// AddedIndexes returns CREATE INDEX DTOs for indexes of new that have no
// counterpart in old.
func AddedIndexes(prev, next []delta.Index, tbl IndexTable, t ddl.Target) []*AlterScriptDto {
	return addedIndexes(prev, next, tbl, t, nil)
}

// addedIndexes keeps only the unpaired indexes for which keep reports true.
func addedIndexes(prev, next []delta.Index, tbl IndexTable, t ddl.Target, keep func(delta.Index) bool) []*AlterScriptDto {
	pairs, _ := pairIndexes(prev, next)
	var out []*AlterScriptDto
	for i, n := range next {
		if pairs[i] < 0 && (keep == nil || keep(n)) {
			out = append(out, addedIndex(n, tbl, t))
		}
	}
	return compact(out)
}

// addedIndex comments itself when deactivated, so the DTO stays active.
func addedIndex(idx delta.Index, tbl IndexTable, t ddl.Target) *AlterScriptDto {
	return NewAlterScriptDto([]string{ddl.CreateIndex(tbl.Name, tbl.SchemaName, idx, t)}, true, false)
}

// pairIndexes matches each index of next to at most one index of prev.
// Ids are matched across the whole list first; names only pair what the
// ids left over. pairs[i] is the prev position of next[i], or -1.
func pairIndexes(prev, next []delta.Index) (pairs []int, paired []bool) {
	pairs = make([]int, len(next))
	paired = make([]bool, len(prev))
	for i := range pairs {
		pairs[i] = -1
	}
	match := func(i int, same func(o delta.Index) bool) {
		for j, o := range prev {
			if !paired[j] && same(o) {
				pairs[i], paired[j] = j, true
				return
			}
		}
	}
	for i, n := range next {
		if n.ID != "" {
			match(i, func(o delta.Index) bool { return o.ID == n.ID })
		}
	}
	for i, n := range next {
		if pairs[i] < 0 && n.IndxName != "" {
			match(i, func(o delta.Index) bool { return o.IndxName == n.IndxName })
		}
	}
	return pairs, paired
}
