package delta

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModel = `{
  "properties": {
    "containers": {"properties": {
      "added": {"items": {"properties": {"HR": {"role": {"name": "HR", "sequences": [{"id": "s1", "sequenceName": "SEQ1", "increment": 1}]}}}}}
    }},
    "entities": {"properties": {
      "added": {"items": [
        {"properties": {"EMPLOYEES": {
          "compMod": {"created": true, "keyspaceName": "HR"},
          "role": {"code": "EMP", "collectionName": "EMPLOYEES", "properties": {"ignored": {"type": "string"}}},
          "properties": {"zeta": {"type": "string", "mode": "varchar2", "length": "10"}, "alpha": {"type": "numeric", "mode": "number"}}
        }}},
        {"properties": {"DEPT": {
          "role": {"collectionName": "DEPT", "compMod": {"keyspaceName": "HR"}},
          "properties": {"NEW_COL": {"type": "string"}}
        }}}
      ]},
      "deleted": {"items": {"properties": {"OLD": {"compMod": {"deleted": true}, "role": {"collectionName": "OLD"}}}}}
    }},
    "views": {"properties": {
      "added": {"items": [{"properties": {"V1": {"role": {"code": "V1", "selectStatement": "SELECT 1 FROM dual", "compMod": {"created": true}, "force": "force"}}}}]}
    }}
  }
}`

func TestNormalize_BucketsAndRoleMerge(t *testing.T) {
	m, err := Normalize(json.RawMessage(sampleModel))
	require.NoError(t, err)

	require.Len(t, m.Containers, 1)
	assert.Equal(t, "HR", m.Containers[0].SchemaName())
	assert.Equal(t, Added, m.Containers[0].Kind)
	require.Len(t, m.Containers[0].Role.Sequences, 1)
	assert.Equal(t, "1", m.Containers[0].Role.Sequences[0].Increment.String())

	require.Len(t, m.Collections, 3)
	emp := m.Collections[0]
	assert.True(t, emp.IsCreated())
	assert.Equal(t, "EMP", emp.Schema.EntityName())
	assert.Equal(t, "HR", emp.SchemaName())
	require.Len(t, emp.Columns, 2)
	assert.Equal(t, "zeta", emp.Columns[0].Name, "column order follows the document")
	assert.Equal(t, "alpha", emp.Columns[1].Name)
	assert.Equal(t, IntOf(10), emp.Columns[0].Schema.Length)

	dept := m.Collections[1]
	assert.True(t, dept.ColumnLevel())
	assert.Equal(t, "HR", dept.SchemaName())

	old := m.Collections[2]
	assert.Equal(t, Deleted, old.Kind)
	assert.True(t, old.IsDeleted())

	require.Len(t, m.Views, 1)
	v := m.Views[0].Schema
	assert.Equal(t, "V1", v.ViewName())
	assert.True(t, v.CompMod.Created)
	assert.Equal(t, "FORCE", v.Force.Keyword(""))
	assert.False(t, v.IsDuality())
}

func TestNormalize_EmptyModel(t *testing.T) {
	m, err := Normalize(json.RawMessage(`{"properties": {}}`))
	require.NoError(t, err)
	assert.Empty(t, m.Collections)
	assert.Empty(t, m.Relationships)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrComparisonModelNotFound)
}

func TestProperties_OrderAndMerge(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`{"b": 1, "a": {"x": [1,2]}, "c": null}`), &p))
	assert.Equal(t, []string{"b", "a", "c"}, p.Keys())

	var other Properties
	require.NoError(t, json.Unmarshal([]byte(`{"a": 2, "d": 3}`), &other))
	merged := p.Merge(&other)
	assert.Equal(t, []string{"b", "a", "c", "d"}, merged.Keys())
	raw, ok := merged.Raw("a")
	require.True(t, ok)
	assert.JSONEq(t, `2`, string(raw))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":{"x":[1,2]},"c":null}`, string(out))

	var nilProps *Properties
	assert.Zero(t, nilProps.Len())
	_, _, ok = nilProps.First()
	assert.False(t, ok)
}

func TestOptInt(t *testing.T) {
	tests := []struct {
		in   string
		want OptInt
	}{
		{`5`, IntOf(5)},
		{`"12"`, IntOf(12)},
		{`""`, OptInt{}},
		{`null`, OptInt{}},
		{`3.0`, IntOf(3)},
		{`3.5`, OptInt{}},
		{`"abc"`, OptInt{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var o OptInt
			require.NoError(t, json.Unmarshal([]byte(tt.in), &o))
			assert.Equal(t, tt.want, o)
		})
	}
}

func TestNumber(t *testing.T) {
	big := NumberOf("9999999999999999999999999999")
	bigger := NumberOf("10000000000000000000000000000")
	assert.True(t, bigger.Greater(big))
	assert.False(t, big.Greater(bigger))
	assert.Equal(t, "9999999999999999999999999999", big.String())

	var n Number
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &n))
	assert.True(t, n.Equal(NumberOf("42.0")))
	require.NoError(t, json.Unmarshal([]byte(`""`), &n))
	assert.False(t, n.IsSet())
	assert.True(t, n.Equal(Number{}))
	assert.False(t, n.Greater(NumberOf("1")))
	assert.Equal(t, "3", Min(NumberOf("3"), Number{}).String())
}

func TestKeyOptions_ArrayOrObject(t *testing.T) {
	var col ColumnSchema
	require.NoError(t, json.Unmarshal([]byte(`{"primaryKey": true, "primaryKeyOptions": [{"constraintName": "PK_X"}], "uniqueKeyOptions": {"rely": "RELY"}}`), &col))
	require.NotNil(t, col.PrimaryKeyOptions)
	assert.Equal(t, "PK_X", col.PrimaryKeyOptions.ConstraintName)
	assert.Equal(t, "RELY", col.UniqueKeyOptions.Rely)
}

func TestEncryption_IsEmpty(t *testing.T) {
	var col ColumnSchema
	require.NoError(t, json.Unmarshal([]byte(`{"encryption": {"id": "x"}}`), &col))
	assert.True(t, col.Encryption.IsEmpty())
	require.NoError(t, json.Unmarshal([]byte(`{"encryption": "yes"}`), &col))
	assert.True(t, col.Encryption.IsEmpty())
	require.NoError(t, json.Unmarshal([]byte(`{"encryption": {"ENCRYPTION_ALGORITHM": "AES256"}}`), &col))
	assert.False(t, col.Encryption.IsEmpty())
}

func TestPayload(t *testing.T) {
	body := `{
	  "jsonSchema": "{\"properties\": {}}",
	  "modelDefinitions": "{\"properties\": {\"Addr\": {\"type\": \"object\", \"properties\": {\"street\": {\"type\": \"string\"}}}, \"Money\": {\"type\": \"numeric\", \"mode\": \"number\", \"precision\": 12}}}",
	  "internalDefinitions": "{}",
	  "externalDefinitions": null,
	  "modelData": [{"dbVersion": "19c"}],
	  "options": {"targetScriptOptions": {"keyword": "nonquotedIdentifier"}, "additionalOptions": [{"id": "applyDropStatements", "value": true}]},
	  "collections": ["{\"properties\": {\"containers\": {}}}"]
	}`
	p, err := DecodePayload([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "19c", p.DBVersion())
	assert.Equal(t, "nonquotedIdentifier", p.ScriptFormat())
	assert.True(t, p.ApplyDropStatements())

	p.SetApplyDropStatements(false)
	assert.False(t, p.ApplyDropStatements())

	entity, err := p.ComparisonModel(LevelEntity)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties": {}}`, string(entity))

	container, err := p.ComparisonModel(LevelContainer)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties": {"containers": {}}}`, string(container))

	_, err = p.ComparisonModel(LevelView)
	assert.ErrorIs(t, err, ErrViewLevelUnsupported)

	defs, err := p.Definitions()
	require.NoError(t, err)
	addr, ok := defs.Resolve("#model/definitions/Addr")
	require.True(t, ok)
	assert.True(t, addr.IsComposite())
	money, ok := defs.Resolve("#model/definitions/Money")
	require.True(t, ok)
	assert.False(t, money.IsComposite())
	_, ok = defs.Resolve("#/definitions/Money")
	assert.False(t, ok, "internal refs do not look into model definitions")

	raw, _ := defs.ResolveRaw("#model/definitions/Money")
	col, err := InlineDefinition(json.RawMessage(`{"$ref": "#model/definitions/Money", "scale": 2}`), raw)
	require.NoError(t, err)
	assert.Equal(t, "number", col.Mode)
	assert.Equal(t, IntOf(12), col.Precision)
	assert.Equal(t, IntOf(2), col.Scale)
	assert.Empty(t, col.Ref)
}

func TestPayload_MissingModel(t *testing.T) {
	p, err := DecodePayload([]byte(`{"modelData": []}`))
	require.NoError(t, err)
	_, err = p.ComparisonModel(LevelEntity)
	assert.ErrorIs(t, err, ErrComparisonModelNotFound)
	assert.Empty(t, p.DBVersion())
	assert.False(t, p.ApplyDropStatements())
}
