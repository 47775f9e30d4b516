// internal/alterscript/container.go
package alterscript

import (
	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
)

// containerScripts creates users for added schemas and drops deleted ones.
func (s *synthesizer) containerScripts(containers []delta.Container) []*AlterScriptDto {
	var out []*AlterScriptDto
	for _, c := range containers {
		switch c.Kind {
		case delta.Added:
			out = append(out, NewAlterScriptDto([]string{ddl.CreateUser(c.Name, c.Role.IfNotExist, s.t)}, true, false))
		case delta.Deleted:
			out = append(out, NewAlterScriptDto([]string{ddl.DropUser(c.Name, s.t)}, true, true))
		}
	}
	return compact(out)
}

// containerSequenceScripts handles the sequences owned by changed schemas.
func (s *synthesizer) containerSequenceScripts(containers []delta.Container) []*AlterScriptDto {
	var out []*AlterScriptDto
	for _, c := range containers {
		schemaName := c.SchemaName()
		switch c.Kind {
		case delta.Added:
			out = append(out, CreateSequences(schemaName, c.Role.Sequences, s.t)...)
		case delta.Deleted:
			out = append(out, DropSequences(schemaName, c.Role.Sequences, s.t)...)
		case delta.Modified:
			if c.Role.CompMod == nil || c.Role.CompMod.Sequences == nil {
				continue
			}
			seqs := c.Role.CompMod.Sequences
			out = append(out, SequenceChanges(schemaName, seqs.Old, seqs.New, s.t)...)
		}
	}
	return out
}
