// internal/ddl/view.go
package ddl

import (
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

// View is a hydrated CREATE VIEW request.
type View struct {
	Name            string
	SchemaName      string
	OrReplace       bool
	Force           bool
	Editionable     bool
	Editioning      bool
	Materialized    bool
	IfNotExist      bool
	Sharing         string
	ViewProperties  string
	SelectStatement string
	Description     string
	Synonyms        []delta.Synonym
	IsActivated     bool
}

// CreateView renders CREATE [MATERIALIZED] VIEW with comment and synonyms.
// Materialized views never take OR REPLACE, FORCE, editioning or sharing.
func CreateView(v View, t Target) string {
	viewName := t.Name(v.Name, v.SchemaName)

	var b strings.Builder
	b.WriteString("CREATE")
	if !v.Materialized {
		if v.OrReplace {
			b.WriteString(" OR REPLACE")
		}
		if v.Force {
			b.WriteString(" FORCE")
		}
		if v.Editionable {
			b.WriteString(" EDITIONABLE")
		}
		if v.Editioning {
			b.WriteString(" EDITIONING")
		}
	} else {
		b.WriteString(" MATERIALIZED")
	}
	fmt.Fprintf(&b, " VIEW%s %s", t.IfNotExistsClause(v.IfNotExist), viewName)
	if v.Sharing != "" && !v.Materialized {
		b.WriteString(" SHARING=" + strings.ToUpper(v.Sharing))
	}
	if props := strings.TrimSpace(v.ViewProperties); props != "" {
		b.WriteString("\n" + utils.Tab(props))
	}
	fmt.Fprintf(&b, "\n\tAS %s", strings.TrimSpace(utils.Tab(v.SelectStatement)))

	stmt := t.Terminate(b.String(), v.IfNotExist, ErrCodeNameAlreadyUsed)
	comment := "\n"
	if v.Description != "" {
		comment = "\n" + Comment("TABLE", viewName, v.Description) + "\n"
	}
	return CommentIfDeactivated(stmt+comment+SynonymStatements(v.Synonyms, viewName, t), v.IsActivated, false)
}

// DropView renders DROP [MATERIALIZED] VIEW.
func DropView(fullName string, materialized bool) string {
	if materialized {
		return fmt.Sprintf("DROP MATERIALIZED VIEW %s;", fullName)
	}
	return fmt.Sprintf("DROP VIEW %s;", fullName)
}
