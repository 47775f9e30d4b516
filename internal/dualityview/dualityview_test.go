package dualityview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/utils"
)

var target = ddl.Target{ScriptFormat: utils.ScriptFormatQuoted, DBVersion: "23ai"}

const relatedJSON = `{
	"c1": {"collectionName": "EMP", "bucketName": "HR", "properties": {"ID": {"GUID": "f1"}, "NAME": {"GUID": "f2"}}},
	"c2": {"collectionName": "DEPT", "bucketName": "HR", "properties": {"DEPT_ID": {"GUID": "f3"}, "DNAME": {"GUID": "f4"}}}
}`

func mustRelated(t *testing.T) RelatedSchemas {
	t.Helper()
	related, err := ParseRelatedSchemas(json.RawMessage(relatedJSON))
	require.NoError(t, err)
	return related
}

func mustFields(t *testing.T, raw string) []Field {
	t.Helper()
	var props delta.Properties
	require.NoError(t, json.Unmarshal([]byte(raw), &props))
	fields, err := ParseFields(&props)
	require.NoError(t, err)
	return fields
}

func TestParseFields(t *testing.T) {
	fields := mustFields(t, `{
		"_id": {"ref": "x", "refIdPath": ["c1", "f1"], "refType": "collectionReference"},
		"dept": {"type": "joinSubquery", "subtype": "array", "joinedCollectionRefIdPath": ["c2"],
			"items": [{"properties": {"n": {"ref": "f4", "refId": "r"}}}]},
		"extra": {"type": "flexColumn"},
		"junk": {"type": "string"}
	}`)
	require.Len(t, fields, 3)
	assert.Equal(t, "_id", fields[0].Name)
	assert.IsType(t, &RegularField{}, fields[0].Node)

	sub, ok := fields[1].Node.(*JoinSubquery)
	require.True(t, ok)
	assert.Equal(t, []string{"c2"}, sub.JoinedCollectionRefIDPath)
	require.Len(t, sub.Fields, 1)
	assert.Equal(t, "n", sub.Fields[0].Name)

	assert.IsType(t, &FlexColumn{}, fields[2].Node)
}

func TestRender(t *testing.T) {
	fields := mustFields(t, `{
		"_id": {"ref": "x", "refIdPath": ["c1", "f1"], "refType": "collectionReference", "columnTagsClause": {"check": "check", "etag": true}},
		"name": {"ref": "x", "refIdPath": ["c1", "f2"], "refType": "collectionReference"},
		"dept": {"type": "joinSubquery", "subtype": "object", "joinedCollectionRefIdPath": ["c2"], "childTableAlias": "d",
			"whereClause": "d.DEPT_ID = e.DEPT_ID", "properties": {"deptName": {"ref": "f4", "refId": "r4"}}},
		"extras": {"type": "flexColumn"}
	}`)
	v := View{
		Name:           "EMP_DV",
		SchemaName:     "HR",
		TableName:      "EMP",
		RootTableAlias: "e",
		OrReplace:      true,
		TableTags:      TagsClause{Insert: delta.Flag{On: true, Word: "insert"}, Update: delta.Flag{On: true}},
		Fields:         fields,
	}

	got, err := Render(v, mustRelated(t), target)
	require.NoError(t, err)

	expected := "CREATE OR REPLACE JSON RELATIONAL DUALITY VIEW \"HR\".\"EMP_DV\" AS\n" +
		"SELECT JSON {\n" +
		"\t'_id': \"e\".\"ID\" WITH CHECK ETAG,\n" +
		"\t'name': \"e\".\"NAME\",\n" +
		"\t'dept' : (\n" +
		"\t\tSELECT JSON {\n" +
		"\t\t\t'deptName': \"d\".\"DNAME\"\n" +
		"\t\t}\n" +
		"\t\tFROM \"HR\".\"DEPT\" \"d\"\n" +
		"\t\tWHERE d.DEPT_ID = e.DEPT_ID\n" +
		"\t),\n" +
		"\t\"extras\" AS FLEX COLUMN\n" +
		"}\n" +
		"FROM \"HR\".\"EMP\" \"e\" WITH INSERT UPDATE;\n"
	assert.Equal(t, expected, got)
}

func TestRenderSubqueryBrackets(t *testing.T) {
	testCases := []struct {
		name     string
		member   string
		expected string
	}{
		{
			name:   "Array subtype",
			member: `{"type": "joinSubquery", "subtype": "array", "joinedCollectionRefIdPath": ["c2"], "items": {"properties": {"n": {"ref": "f4", "refId": "r"}}}}`,
			expected: "\t'dept' : [\n" +
				"\t\tSELECT JSON {\n\t\t\t'n': \"DEPT\".\"DNAME\"\n\t\t}\n" +
				"\t\tFROM \"HR\".\"DEPT\"\n" +
				"\t]",
		},
		{
			name:   "Json arrayagg",
			member: `{"type": "joinSubquery", "subtype": "array", "sqlJsonFunction": "json_arrayagg", "joinedCollectionRefIdPath": ["c2"], "properties": {"n": {"ref": "f4", "refId": "r"}}}`,
			expected: "\t'dept' : (\n" +
				"\t\tSELECT JSON_ARRAYAGG ( JSON {\n\t\t\t'n': \"DEPT\".\"DNAME\"\n\t\t})\n" +
				"\t\tFROM \"HR\".\"DEPT\"\n" +
				"\t)",
		},
		{
			name:   "Json object",
			member: `{"type": "joinSubquery", "sqlJsonFunction": "JSON_OBJECT", "joinedCollectionRefIdPath": ["c2"], "properties": {"n": {"ref": "f4", "refId": "r"}}}`,
			expected: "\t'dept' : (\n" +
				"\t\tSELECT JSON_OBJECT (\n\t\t\t'n': \"DEPT\".\"DNAME\"\n\t\t)\n" +
				"\t\tFROM \"HR\".\"DEPT\"\n" +
				"\t)",
		},
		{
			name:   "Unnested object",
			member: `{"type": "joinSubquery", "subtype": "object", "unnestSubquery": true, "joinedCollectionRefIdPath": ["c2"], "tableTagsClause": {"update": "update"}, "properties": {"n": {"ref": "f4", "refId": "r"}}}`,
			expected: "\tUNNEST (\n" +
				"\t\tSELECT JSON {\n\t\t\t'n': \"DEPT\".\"DNAME\"\n\t\t}\n" +
				"\t\tFROM \"HR\".\"DEPT\" WITH UPDATE\n" +
				"\t)",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := mustFields(t, `{"dept": `+tc.member+`}`)
			v := View{Name: "V", TableName: "EMP", Fields: fields}
			got, err := Render(v, mustRelated(t), target)
			require.NoError(t, err)
			expected := "CREATE JSON RELATIONAL DUALITY VIEW \"V\" AS\nSELECT JSON {\n" + tc.expected + "\n}\nFROM \"EMP\";\n"
			assert.Equal(t, expected, got)
		})
	}
}

func TestRenderResolutionErrors(t *testing.T) {
	testCases := []struct {
		name    string
		viewOn  string
		noTable bool
		fields  string
		field   string
		reason  string
	}{
		{
			name:    "Root collection missing from related schemas",
			viewOn:  "c9",
			noTable: true,
			fields:  `{"id": {"ref": "f1", "refId": "r1"}}`,
			field:   "V",
			reason:  "collection c9 is not found in related schemas",
		},
		{
			name:   "Unknown collection",
			fields: `{"name": {"ref": "x", "refIdPath": ["c9", "f2"], "refType": "collectionReference"}}`,
			field:  "name",
			reason: "collection c9 is not found in related schemas",
		},
		{
			name:   "Unknown column",
			fields: `{"name": {"ref": "x", "refIdPath": ["c1", "f9"], "refType": "collectionReference"}}`,
			field:  "name",
			reason: "column f9 is not found in table EMP",
		},
		{
			name:   "Subquery without child table",
			fields: `{"ok": {"ref": "x", "refIdPath": ["c1", "f1"], "refType": "collectionReference"}, "dept": {"type": "joinSubquery", "properties": {}}}`,
			field:  "dept",
			reason: "Specify child table for all join subqueries",
		},
		{
			name:   "Nested unknown column",
			fields: `{"dept": {"type": "joinSubquery", "joinedCollectionRefIdPath": ["c2"], "properties": {"n": {"ref": "f1", "refId": "r"}}}}`,
			field:  "n",
			reason: "column f1 is not found in table DEPT",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := View{Name: "V", TableName: "EMP", RootCollectionID: tc.viewOn, Fields: mustFields(t, tc.fields)}
			if tc.noTable {
				v.TableName = ""
			}
			got, err := Render(v, mustRelated(t), target)
			assert.Empty(t, got)

			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, tc.field, resErr.Field)
			assert.Equal(t, tc.reason, resErr.Reason)
		})
	}
}

func TestFromDelta(t *testing.T) {
	raw := json.RawMessage(`{
		"code": "EMP_DV",
		"duality": true,
		"viewOn": "c1",
		"force": "force",
		"editionable": "editionable",
		"tableTagsClause": [{"id": "t", "check": "check", "etag": true, "delete": "delete"}],
		"properties": {"id": {"ref": "f1", "refId": "r1"}},
		"compMod": {
			"created": true,
			"keyspaceName": "HR",
			"collectionData": {"relatedSchemas": ` + relatedJSON + `, "entityData": [{"collectionName": "EMP"}]}
		}
	}`)
	var schema delta.ViewSchema
	require.NoError(t, json.Unmarshal(raw, &schema))
	require.True(t, schema.IsDuality())

	v, related, err := FromDelta(&delta.View{Kind: delta.Added, Name: "EMP_DV", Schema: schema, Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, "EMP", v.TableName)
	assert.Equal(t, "HR", v.SchemaName)
	assert.Len(t, related, 2)

	got, err := Render(v, related, target)
	require.NoError(t, err)
	expected := "CREATE FORCE EDITIONABLE JSON RELATIONAL DUALITY VIEW \"HR\".\"EMP_DV\" AS\n" +
		"SELECT JSON {\n" +
		"\t'id': \"EMP\".\"ID\"\n" +
		"}\n" +
		"FROM \"HR\".\"EMP\" WITH CHECK ETAG DELETE;\n"
	assert.Equal(t, expected, got)
}

func TestFromDeltaUnresolvedRootCollection(t *testing.T) {
	raw := json.RawMessage(`{
		"code": "EMP_DV",
		"duality": true,
		"viewOn": "c9",
		"properties": {"id": {"ref": "f1", "refId": "r1"}},
		"compMod": {
			"created": true,
			"keyspaceName": "HR",
			"collectionData": {"relatedSchemas": ` + relatedJSON + `}
		}
	}`)
	var schema delta.ViewSchema
	require.NoError(t, json.Unmarshal(raw, &schema))

	v, related, err := FromDelta(&delta.View{Kind: delta.Added, Name: "EMP_DV", Schema: schema, Raw: raw})
	require.NoError(t, err)
	assert.Empty(t, v.TableName)

	got, err := Render(v, related, target)
	assert.Empty(t, got)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "EMP_DV", resErr.Field)
	assert.Equal(t, "collection c9 is not found in related schemas", resErr.Reason)
}
