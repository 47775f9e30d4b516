package alterscript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arwahdevops/oradelta/internal/delta"
)

const empIndexes = `{
  "old": [{"id": "i1", "indxName": "EMP_IX", "indxKey": [{"keyId": "k1", "name": "NAME"}]}],
  "new": [
    {"id": "i1", "indxName": "EMP_NAME_IX", "indxKey": [{"keyId": "k1", "name": "NAME"}]},
    {"id": "i2", "indxName": "EMP_DEPT_IX", "indxKey": [{"keyId": "k2", "name": "DEPT_ID"}]},
    {"id": "i3", "indxName": "EMP_EMAIL_IX", "indxKey": [{"keyId": "g9", "name": "EMAIL"}]}
  ]
}`

// EMP gains EMAIL and an index on it in the same delta, so it shows up both
// as an added and as a modified entity carrying the same index record.
var addedColumnIndexModel = `{"properties": {"entities": {"properties": {
  "added": {"items": {"properties": {"EMP": {
    "role": {"code": "EMP", "compMod": {"keyspaceName": "HR", "Indxs": ` + empIndexes + `}},
    "properties": {"EMAIL": {"GUID": "g9", "type": "string", "mode": "varchar2", "length": 100}}
  }}}},
  "modified": {"items": {"properties": {"EMP": {
    "role": {"code": "EMP", "compMod": {"keyspaceName": "HR", "Indxs": ` + empIndexes + `}},
    "properties": {}
  }}}}
}}}}`

func TestSynthesize_IndexOnAddedColumn(t *testing.T) {
	dtos, err := Synthesize(payloadFor(t, addedColumnIndexModel, "23ai"), delta.LevelEntity, target23)
	require.NoError(t, err)

	scripts := scriptsOf(dtos)
	assert.Equal(t, []string{
		"CREATE INDEX \"HR\".\"EMP_DEPT_IX\" ON \"HR\".\"EMP\"\n(\n\t\"DEPT_ID\"\n);",
		`ALTER INDEX "HR"."EMP_IX" RENAME TO "EMP_NAME_IX";`,
		`ALTER TABLE "HR"."EMP" ADD ("EMAIL" VARCHAR2(100));`,
		"CREATE INDEX \"HR\".\"EMP_EMAIL_IX\" ON \"HR\".\"EMP\"\n(\n\t\"EMAIL\"\n);",
	}, scripts)

	created := 0
	for _, s := range scripts {
		if strings.Contains(s, `"EMP_EMAIL_IX"`) {
			created++
		}
	}
	assert.Equal(t, 1, created)
}

func TestSynthesize_CreateTableIndexes(t *testing.T) {
	createT := "CREATE TABLE \"HR\".\"T\"\n(\n\t\"A\" NUMBER\n);"
	createIx := "CREATE INDEX \"HR\".\"T_A_IX\" ON \"HR\".\"T\"\n(\n\t\"A\"\n);"
	index := `{"id": "i1", "indxName": "T_A_IX", "indxKey": [{"keyId": "gA", "name": "A"}]}`
	column := `{"A": {"GUID": "gA", "type": "numeric", "mode": "number"}}`

	testCases := []struct {
		name  string
		model string
	}{
		{
			name: "Role indexes without change record",
			model: `{"properties": {"entities": {"properties": {"added": {"items": {"properties": {"T": {
				"compMod": {"created": true, "keyspaceName": "HR"},
				"role": {"code": "T", "compMod": {"keyspaceName": "HR"}, "Indxs": [` + index + `]},
				"properties": ` + column + `
			}}}}}}}}`,
		},
		{
			name: "Index change record",
			model: `{"properties": {"entities": {"properties": {"added": {"items": {"properties": {"T": {
				"compMod": {"created": true, "keyspaceName": "HR"},
				"role": {"code": "T", "compMod": {"keyspaceName": "HR", "Indxs": {"old": [], "new": [` + index + `]}}},
				"properties": ` + column + `
			}}}}}}}}`,
		},
		{
			name: "Index change record repeated on a modified entity",
			model: `{"properties": {"entities": {"properties": {
				"added": {"items": {"properties": {"T": {
					"compMod": {"created": true, "keyspaceName": "HR"},
					"role": {"code": "T", "compMod": {"keyspaceName": "HR", "Indxs": {"old": [], "new": [` + index + `]}}},
					"properties": ` + column + `
				}}}},
				"modified": {"items": {"properties": {"T": {
					"role": {"code": "T", "compMod": {"keyspaceName": "HR", "Indxs": {"old": [], "new": [` + index + `]}}},
					"properties": {}
				}}}}
			}}}}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dtos, err := Synthesize(payloadFor(t, tc.model, "23ai"), delta.LevelEntity, target23)
			require.NoError(t, err)
			require.Len(t, dtos, 1, "indexes ride in the CREATE TABLE statement group")
			assert.Equal(t, []string{createT, createIx}, scriptsOf(dtos))
		})
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	models := map[string]string{
		"Entity model":             entityModel,
		"Index on an added column": addedColumnIndexModel,
	}
	for name, model := range models {
		t.Run(name, func(t *testing.T) {
			p := payloadFor(t, model, "23ai")
			first, err := Synthesize(p, delta.LevelEntity, target23)
			require.NoError(t, err)
			want := strings.Join(scriptsOf(first), "\n\n")

			for i := 0; i < 20; i++ {
				again, err := Synthesize(payloadFor(t, model, "23ai"), delta.LevelEntity, target23)
				require.NoError(t, err)
				require.Equal(t, want, strings.Join(scriptsOf(again), "\n\n"), "run %d", i)
			}
		})
	}
}
