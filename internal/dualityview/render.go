// internal/dualityview/render.go
package dualityview

import (
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

// View is the root of a JSON relational duality view.
type View struct {
	Name           string
	SchemaName     string
	TableName      string
	RootTableAlias string
	OrReplace      bool
	Force          delta.Flag
	Editionable    delta.Flag
	TableTags      TagsClause
	Fields         []Field

	// collection id of the root table, used by members that carry only ref
	RootCollectionID string
}

type brackets struct {
	keyword         string
	surrounding     [2]string
	keywordBrackets [2]string
}

var rootBrackets = brackets{keyword: "JSON", keywordBrackets: [2]string{"{", "}"}}

func subqueryBrackets(q *JoinSubquery) brackets {
	switch strings.ToUpper(q.SQLJSONFunction) {
	case "JSON_OBJECT":
		return brackets{"JSON_OBJECT", [2]string{"(", ")"}, [2]string{"(", ")"}}
	case "JSON_ARRAYAGG":
		return brackets{"JSON_ARRAYAGG", [2]string{"(", ")"}, [2]string{"( JSON {", "})"}}
	}
	if strings.EqualFold(q.Subtype, "array") {
		return brackets{"JSON", [2]string{"[", "]"}, [2]string{"{", "}"}}
	}
	return brackets{"JSON", [2]string{"(", ")"}, [2]string{"{", "}"}}
}

func pad(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("\t", depth)
}

// parentScope is what a regular field is resolved against: the root view or
// the enclosing join subquery.
type parentScope struct {
	alias      string
	collection string
}

type renderer struct {
	related RelatedSchemas
	target  ddl.Target
}

// Render produces the full CREATE JSON RELATIONAL DUALITY VIEW statement.
// Any unresolvable member aborts rendering with a *ResolutionError.
func Render(v View, related RelatedSchemas, t ddl.Target) (string, error) {
	if v.TableName == "" {
		return "", &ResolutionError{
			Field:  v.Name,
			Reason: fmt.Sprintf("collection %s is not found in related schemas", v.RootCollectionID),
		}
	}
	r := renderer{related: related, target: t}

	root := parentScope{alias: utils.FirstNonEmpty(v.RootTableAlias, v.TableName), collection: v.RootCollectionID}
	gen, err := r.objectGen(v.Fields, root, rootBrackets, 1)
	if err != nil {
		return "", err
	}

	var heading strings.Builder
	heading.WriteString("CREATE")
	if v.OrReplace {
		heading.WriteString(" OR REPLACE")
	}
	if kw := v.Force.Keyword("FORCE"); kw != "" {
		heading.WriteString(" " + kw)
	}
	if kw := v.Editionable.Keyword("EDITIONABLE"); kw != "" {
		heading.WriteString(" " + kw)
	}
	fmt.Fprintf(&heading, " JSON RELATIONAL DUALITY VIEW %s AS", t.Name(v.Name, v.SchemaName))

	from := "FROM " + t.Name(v.TableName, v.SchemaName) + r.alias(v.RootTableAlias) + tableTags(v.TableTags)
	body := "SELECT" + gen + "\n" + from + ";"
	return heading.String() + "\n" + body + "\n", nil
}

func (r renderer) alias(a string) string {
	if a == "" {
		return ""
	}
	return " " + r.target.Quote(a)
}

// objectGen renders " JSON {\n...\n<pad>}" for one nesting level.
func (r renderer) objectGen(fields []Field, parent parentScope, b brackets, depth int) (string, error) {
	members := make([]string, 0, len(fields))
	for _, f := range fields {
		stmt, err := r.member(f, parent, depth)
		if err != nil {
			return "", err
		}
		members = append(members, stmt)
	}
	keyValues := "\n" + strings.Join(members, ",\n") + "\n"
	return " " + b.keyword + " " + b.keywordBrackets[0] + keyValues + pad(depth-1) + b.keywordBrackets[1], nil
}

func (r renderer) member(f Field, parent parentScope, depth int) (string, error) {
	switch n := f.Node.(type) {
	case *FlexColumn:
		key := utils.FirstNonEmpty(n.Code, f.Name)
		return fmt.Sprintf(`%s"%s" AS FLEX COLUMN`, pad(depth), key), nil
	case *RegularField:
		return r.regularField(f.Name, n, parent, depth)
	case *JoinSubquery:
		return r.joinSubquery(f.Name, n, depth)
	default:
		return "", fmt.Errorf("duality view member %q: unsupported node %T", f.Name, f.Node)
	}
}

func (r renderer) regularField(name string, n *RegularField, parent parentScope, depth int) (string, error) {
	key := utils.FirstNonEmpty(n.Code, name, n.ReferencedColumnName)

	path := n.RefIDPath
	if !(len(path) == 2 && n.RefType == refTypeCollection) {
		path = []string{parent.collection, n.Ref}
	}
	if len(path) < 2 || path[0] == "" || path[1] == "" {
		return "", &ResolutionError{Field: key, Reason: "cannot extract referenced column name"}
	}

	collection, ok := r.related[path[0]]
	if !ok {
		return "", &ResolutionError{Field: key, Reason: fmt.Sprintf("collection %s is not found in related schemas", path[0])}
	}
	column, ok := collection.ColumnByGUID(path[1])
	if !ok {
		return "", &ResolutionError{Field: key, Reason: fmt.Sprintf("column %s is not found in table %s", path[1], collection.EntityName())}
	}

	prefix := parent.alias
	if prefix == "" {
		prefix = collection.EntityName()
	}
	return fmt.Sprintf("%s'%s': %s%s", pad(depth), utils.EscapeSingleQuote(key), r.target.Name(column, prefix), columnTags(n.ColumnTags)), nil
}

func (r renderer) joinSubquery(name string, q *JoinSubquery, depth int) (string, error) {
	key := utils.FirstNonEmpty(q.Name, name)
	if len(q.JoinedCollectionRefIDPath) == 0 || q.JoinedCollectionRefIDPath[0] == "" {
		return "", &ResolutionError{Field: key, Reason: missingChildTable}
	}
	collectionID := q.JoinedCollectionRefIDPath[0]
	child, ok := r.related[collectionID]
	if !ok {
		return "", &ResolutionError{Field: key, Reason: fmt.Sprintf("collection %s is not found in related schemas", collectionID)}
	}

	scope := parentScope{alias: utils.FirstNonEmpty(q.ChildTableAlias, child.EntityName()), collection: collectionID}
	b := subqueryBrackets(q)
	gen, err := r.objectGen(q.Fields, scope, b, depth+2)
	if err != nil {
		return "", err
	}

	bodyPad := pad(depth + 1)
	lines := []string{
		bodyPad + "SELECT" + gen,
		bodyPad + "FROM " + r.target.Name(child.EntityName(), child.BucketName) + r.alias(q.ChildTableAlias) + tableTags(q.TableTags),
	}
	if q.WhereClause != "" {
		lines = append(lines, bodyPad+"WHERE "+q.WhereClause)
	}
	value := strings.Join(lines, "\n")

	if q.UnnestSubquery && (b.keyword == "JSON_OBJECT" || strings.EqualFold(q.Subtype, "object")) {
		return fmt.Sprintf("%sUNNEST %s\n%s\n%s%s", pad(depth), b.surrounding[0], value, pad(depth), b.surrounding[1]), nil
	}
	return fmt.Sprintf("%s'%s' : %s\n%s\n%s%s", pad(depth), utils.EscapeSingleQuote(key), b.surrounding[0], value, pad(depth), b.surrounding[1]), nil
}

// tableTags renders " WITH CHECK ETAG INSERT UPDATE DELETE"; ETAG only
// follows CHECK.
func tableTags(c TagsClause) string {
	check := c.Check.Keyword("CHECK")
	parts := []string{check}
	if check != "" {
		parts = append(parts, c.Etag.Keyword("ETAG"))
	}
	parts = append(parts, c.Insert.Keyword("INSERT"), c.Update.Keyword("UPDATE"), c.Delete.Keyword("DELETE"))
	return withClause(parts)
}

func columnTags(c TagsClause) string {
	check := c.Check.Keyword("CHECK")
	parts := []string{check}
	if check != "" {
		parts = append(parts, c.Etag.Keyword("ETAG"))
	}
	parts = append(parts, c.Update.Keyword("UPDATE"))
	return withClause(parts)
}

func withClause(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		if p != "" {
			b.WriteString(" " + p)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return " WITH" + b.String()
}
