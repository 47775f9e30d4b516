// internal/alterscript/sequence_classifier.go
package alterscript

import (
	"github.com/google/go-cmp/cmp"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
)

var sequenceCmpOpts = cmp.Options{
	cmp.Comparer(func(a, b delta.Number) bool { return a.Equal(b) }),
}

// ClassifySequence produces the statements turning old into new inside
// schemaName. A sharing change recreates the sequence: one DTO holding the
// drop fragment followed by the create.
func ClassifySequence(schemaName string, prev, next delta.Sequence, t ddl.Target) []*AlterScriptDto {
	if cmp.Equal(prev, next, sequenceCmpOpts) {
		return nil
	}
	if prev.Sharing != next.Sharing {
		return compact([]*AlterScriptDto{NewAlterScriptDtoFromScripts([]ModificationScript{
			{Script: ddl.DropSequence(schemaName, prev, t), IsDropScript: true},
			{Script: ddl.CreateSequence(schemaName, next, t)},
		}, true)})
	}
	script := ddl.AlterSequence(schemaName, next, prev, t)
	return compact([]*AlterScriptDto{NewAlterScriptDto([]string{script}, true, false)})
}

// SequenceChanges compares two sequence lists of a schema by id. Order:
// modified, removed, added.
func SequenceChanges(schemaName string, prev, next []delta.Sequence, t ddl.Target) []*AlterScriptDto {
	var modified, removed, added []*AlterScriptDto

	for _, n := range next {
		if o, ok := findSequence(prev, n); ok {
			modified = append(modified, ClassifySequence(schemaName, o, n, t)...)
		}
	}
	for _, o := range prev {
		if _, ok := findSequence(next, o); !ok {
			removed = append(removed, dropSequence(schemaName, o, t))
		}
	}
	for _, n := range next {
		if _, ok := findSequence(prev, n); !ok {
			added = append(added, createSequence(schemaName, n, t))
		}
	}

	out := append(modified, removed...)
	return compact(append(out, added...))
}

// CreateSequences creates every sequence of a new schema.
func CreateSequences(schemaName string, seqs []delta.Sequence, t ddl.Target) []*AlterScriptDto {
	out := make([]*AlterScriptDto, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, createSequence(schemaName, s, t))
	}
	return compact(out)
}

// DropSequences drops every sequence of a removed schema.
func DropSequences(schemaName string, seqs []delta.Sequence, t ddl.Target) []*AlterScriptDto {
	out := make([]*AlterScriptDto, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, dropSequence(schemaName, s, t))
	}
	return compact(out)
}

func createSequence(schemaName string, s delta.Sequence, t ddl.Target) *AlterScriptDto {
	return NewAlterScriptDto([]string{ddl.CreateSequence(schemaName, s, t)}, true, false)
}

func dropSequence(schemaName string, s delta.Sequence, t ddl.Target) *AlterScriptDto {
	return NewAlterScriptDto([]string{ddl.DropSequence(schemaName, s, t)}, true, true)
}

// findSequence matches by id; sequences without id match by name.
func findSequence(list []delta.Sequence, s delta.Sequence) (delta.Sequence, bool) {
	for _, candidate := range list {
		if s.ID != "" && candidate.ID == s.ID {
			return candidate, true
		}
		if s.ID == "" && candidate.ID == "" && candidate.SequenceName == s.SequenceName {
			return candidate, true
		}
	}
	return delta.Sequence{}, false
}
