// internal/alterscript/view.go
package alterscript

import (
	"fmt"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/dualityview"
)

func (s *synthesizer) dropView(v *delta.View) *AlterScriptDto {
	full := s.t.Name(v.Schema.ViewName(), v.SchemaName())
	return NewAlterScriptDto([]string{ddl.DropView(full, v.Schema.Materialized)}, true, true)
}

// createView renders a regular view or, for duality views, the JSON
// relational duality statement. Views without a select statement are skipped.
func (s *synthesizer) createView(v *delta.View) (*AlterScriptDto, error) {
	if v.Schema.IsDuality() {
		view, related, err := dualityview.FromDelta(v)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", v.Schema.ViewName(), err)
		}
		script, err := dualityview.Render(view, related, s.t)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", v.Schema.ViewName(), err)
		}
		return NewAlterScriptDto([]string{script}, v.Schema.Activated(), false), nil
	}
	if v.Schema.SelectStatement == "" {
		return nil, nil
	}

	properties := v.Schema.ViewProperties
	if v.Schema.Materialized {
		properties = v.Schema.MviewProperties
	}
	script := ddl.CreateView(ddl.View{
		Name:            v.Schema.ViewName(),
		SchemaName:      v.SchemaName(),
		OrReplace:       v.Schema.OrReplace,
		Force:           v.Schema.Force.Keyword("FORCE") == "FORCE",
		Editionable:     v.Schema.Editionable.Keyword("EDITIONABLE") == "EDITIONABLE",
		Editioning:      v.Schema.Editioning,
		Materialized:    v.Schema.Materialized,
		IfNotExist:      v.Schema.IfNotExist,
		Sharing:         v.Schema.Sharing,
		ViewProperties:  properties,
		SelectStatement: v.Schema.SelectStatement,
		Description:     v.Schema.Description,
		Synonyms:        ddl.SynonymsFor(s.synonyms, v.Schema.GUID),
		IsActivated:     v.Schema.Activated(),
	}, s.t)
	return NewAlterScriptDto([]string{script}, true, false), nil
}
