package alterscript

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/dualityview"
	"github.com/arwahdevops/oradelta/internal/metrics"
	"github.com/arwahdevops/oradelta/internal/utils"
)

const entityModel = `{
  "properties": {
    "containers": {"properties": {
      "added": {"items": {"properties": {"SALES": {"role": {"name": "SALES",
        "sequences": [{"id": "s1", "sequenceName": "ORDERS_SEQ", "increment": 1}]}}}}}
    }},
    "modelDefinitions": {"properties": {
      "added": {"items": {"properties": {"address": {
        "compMod": {"created": true},
        "role": {"code": "ADDRESS_T", "type": "object", "childType": "object_udt"},
        "properties": {"STREET": {"type": "string", "mode": "varchar2", "length": 50}}
      }}}}
    }},
    "entities": {"properties": {
      "added": {"items": [
        {"properties": {"DEPT": {
          "compMod": {"created": true, "keyspaceName": "HR"},
          "role": {"code": "DEPT", "required": ["ID"]},
          "properties": {"ID": {"GUID": "g1", "type": "numeric", "mode": "number"}}
        }}},
        {"properties": {"EMP": {
          "role": {"code": "EMP", "compMod": {"keyspaceName": "HR"}},
          "properties": {"EMAIL": {"type": "string", "mode": "varchar2", "length": 100}}
        }}}
      ]},
      "deleted": {"items": [
        {"properties": {"OLD": {"compMod": {"deleted": true, "keyspaceName": "HR"}, "role": {"code": "OLD"}}}},
        {"properties": {"EMP": {
          "role": {"code": "EMP", "compMod": {"keyspaceName": "HR"}},
          "properties": {"FAX": {"type": "string"}}
        }}}
      ]},
      "modified": {"items": {"properties": {"EMP": {
        "role": {"code": "EMP", "compMod": {"keyspaceName": "HR", "Indxs": {
          "old": [{"id": "i1", "indxName": "EMP_IX", "indxKey": [{"keyId": "k", "name": "NAME"}]}],
          "new": [{"id": "i1", "indxName": "EMP_NAME_IX", "indxKey": [{"keyId": "k", "name": "NAME"}]}]
        }}},
        "properties": {"FULL_NAME": {"type": "string", "mode": "varchar2", "length": 200, "compMod": {
          "oldField": {"name": "NAME", "type": "string", "mode": "varchar2", "length": 100},
          "newField": {"name": "FULL_NAME", "type": "string", "mode": "varchar2", "length": 200}
        }}}
      }}}}
    }},
    "views": {"properties": {
      "added": {"items": {"properties": {"V1": {"role": {"code": "V1", "selectStatement": "SELECT 1 FROM dual",
        "compMod": {"created": true, "keyspaceName": "HR"}}}}}}
    }},
    "relationships": {"properties": {
      "added": {"items": {"properties": {"FK_EMP_DEPT": {"role": {"name": "FK_EMP_DEPT", "compMod": {
        "created": true,
        "child": {"bucket": {"name": "HR"}, "collection": {"name": "EMP", "fkFields": [{"name": "DEPT_ID"}]}},
        "parent": {"bucket": {"name": "HR"}, "collection": {"name": "DEPT", "fkFields": [{"name": "ID"}]}},
        "customProperties": {"new": {"relationshipOnDelete": "cascade"}}
      }}}}}}
    }}
  }
}`

var entityScript = []string{
	`CREATE USER "SALES" NO AUTHENTICATION;`,
	"CREATE SEQUENCE \"SALES\".\"ORDERS_SEQ\"\n\tINCREMENT BY 1;",
	"CREATE OR REPLACE TYPE \"ADDRESS_T\" AS OBJECT \n(\n\t\"STREET\" VARCHAR2(50)\n);",
	"CREATE TABLE \"HR\".\"DEPT\"\n(\n\t\"ID\" NUMBER NOT NULL\n);",
	`-- DROP TABLE "HR"."OLD";`,
	`ALTER INDEX "HR"."EMP_IX" RENAME TO "EMP_NAME_IX";`,
	`ALTER TABLE "HR"."EMP" ADD ("EMAIL" VARCHAR2(100));`,
	`-- ALTER TABLE "HR"."EMP" DROP COLUMN "FAX";`,
	`ALTER TABLE "HR"."EMP" RENAME COLUMN "NAME" TO "FULL_NAME";`,
	`ALTER TABLE "HR"."EMP" MODIFY ("FULL_NAME" VARCHAR2(200));`,
	"CREATE VIEW \"HR\".\"V1\"\n\tAS SELECT 1 FROM dual;",
	`ALTER TABLE "HR"."EMP" ADD CONSTRAINT "FK_EMP_DEPT" FOREIGN KEY ("DEPT_ID") REFERENCES "HR"."DEPT" ("ID") ON DELETE CASCADE;`,
}

func payloadFor(t *testing.T, model string, dbVersion string) *delta.Payload {
	t.Helper()
	body := map[string]any{
		"jsonSchema": json.RawMessage(model),
		"modelData":  []map[string]string{{"dbVersion": dbVersion}},
		"options": map[string]any{
			"targetScriptOptions": map[string]string{"keyword": utils.ScriptFormatQuoted},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	p, err := delta.DecodePayload(raw)
	require.NoError(t, err)
	return p
}

func TestGenerateEntityLevelScript(t *testing.T) {
	p := payloadFor(t, entityModel, "23ai")

	script, err := GenerateEntityLevelScript(p)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(entityScript, "\n\n"), script)
}

func TestGenerateEntityLevelScript_ApplyDropStatements(t *testing.T) {
	p := payloadFor(t, entityModel, "23ai")
	p.SetApplyDropStatements(true)

	script, err := GenerateEntityLevelScript(p)
	require.NoError(t, err)
	assert.Contains(t, script, "\n\nDROP TABLE \"HR\".\"OLD\";\n\n")
	assert.Contains(t, script, "\n\nALTER TABLE \"HR\".\"EMP\" DROP COLUMN \"FAX\";\n\n")
	assert.NotContains(t, script, "--")
}

func TestGenerator_MetricsAndDefaults(t *testing.T) {
	store := metrics.NewMetricsStore()
	g := NewGenerator(ddl.Target{DBVersion: "19c", ScriptFormat: utils.ScriptFormatQuoted}, zaptest.NewLogger(t), store)

	// modelData kosong: versi diambil dari default generator
	p := payloadFor(t, entityModel, "")
	assert.Equal(t, "19c", g.Target(p).DBVersion)

	dtos, err := g.Synthesize(p, delta.LevelEntity)
	require.NoError(t, err)
	assert.Len(t, dtos, len(entityScript))

	assert.Equal(t, float64(1), testutil.ToFloat64(store.ScriptsGeneratedTotal.WithLabelValues("entity")))
	assert.Equal(t, float64(2), testutil.ToFloat64(store.StatementsGeneratedTotal.WithLabelValues("drop")))

	_, err = g.Synthesize(&delta.Payload{}, delta.LevelEntity)
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(store.GenerationErrorsTotal.WithLabelValues("entity")))
}

func TestContainsDropStatements(t *testing.T) {
	testCases := []struct {
		name     string
		model    string
		expected bool
	}{
		{name: "Entity model with drops", model: entityModel, expected: true},
		{
			name: "Only additions",
			model: `{"properties": {"entities": {"properties": {"added": {"items": {"properties": {"T": {
				"compMod": {"created": true}, "role": {"code": "T"}, "properties": {"A": {"type": "numeric", "mode": "number"}}
			}}}}}}}}`,
			expected: false,
		},
		{name: "Empty model", model: `{"properties": {}}`, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ContainsDropStatements(payloadFor(t, tc.model, "23ai"), delta.LevelEntity)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestGenerateContainerLevelScript(t *testing.T) {
	model := `{"properties": {"containers": {"properties": {
		"deleted": {"items": [{"properties": {"SALES": {"role": {"name": "SALES",
			"sequences": [{"id": "s1", "sequenceName": "ORDERS_SEQ"}]}}}}]},
		"modified": {"items": [{"properties": {"HR": {"role": {"name": "HR", "compMod": {"sequences": {
			"old": [{"id": "s2", "sequenceName": "EMP_SEQ", "minValue": 1, "start": 1}],
			"new": [{"id": "s2", "sequenceName": "EMP_SEQ", "minValue": 100, "start": 100}]
		}}}}}}]}
	}}}}`
	modelString, err := json.Marshal(model)
	require.NoError(t, err)
	raw := `{"collections": [` + string(modelString) + `], "modelData": [{"dbVersion": "19c"}]}`
	p, err := delta.DecodePayload([]byte(raw))
	require.NoError(t, err)

	script, err := GenerateContainerLevelScript(p)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		`-- DROP USER "SALES";`,
		`-- DROP SEQUENCE "SALES"."ORDERS_SEQ";`,
		"ALTER SEQUENCE \"HR\".\"EMP_SEQ\"\n\tSTART WITH 100\n\tRESTART WITH 100\n\tMINVALUE 100;",
	}, "\n\n"), script)

	_, err = GenerateEntityLevelScript(p)
	assert.ErrorIs(t, err, delta.ErrComparisonModelNotFound, "entity level reads jsonSchema only")
}

func TestGenerate_Errors(t *testing.T) {
	_, err := GenerateEntityLevelScript(&delta.Payload{})
	assert.ErrorIs(t, err, delta.ErrComparisonModelNotFound)

	_, err = defaultGenerator.Generate(payloadFor(t, entityModel, "23ai"), delta.LevelView)
	assert.ErrorIs(t, err, delta.ErrViewLevelUnsupported)

	_, err = GenerateEntityLevelScript(payloadFor(t, `{"properties": {"entities": 5}}`, "23ai"))
	assert.Error(t, err)
}

func TestGenerate_DualityViewResolutionError(t *testing.T) {
	model := `{"properties": {"views": {"properties": {"added": {"items": {"properties": {"DV": {"role": {
		"code": "DV", "duality": true, "viewOn": "c1",
		"properties": {"name": {"ref": "x", "refIdPath": ["c9", "f2"], "refType": "collectionReference"}},
		"compMod": {"created": true, "collectionData": {"relatedSchemas": {
			"c1": {"collectionName": "EMP", "properties": {"ID": {"GUID": "f1"}}}
		}}}
	}}}}}}}}}`

	script, err := GenerateEntityLevelScript(payloadFor(t, model, "23ai"))
	assert.Empty(t, script)
	var resErr *dualityview.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "name", resErr.Field)
}

func TestBuildScript(t *testing.T) {
	dtos := []*AlterScriptDto{
		NewAlterScriptDto([]string{"CREATE TABLE \"A\"\n(\n\t\"X\" NUMBER\n);"}, false, false),
		NewAlterScriptDtoFromScripts([]ModificationScript{
			{Script: `DROP SEQUENCE "S";`, IsDropScript: true},
			{Script: `CREATE SEQUENCE "S";`},
		}, true),
		nil,
	}

	assert.Equal(t,
		"/*\nCREATE TABLE \"A\"\n(\n\t\"X\" NUMBER\n); */\n\n-- DROP SEQUENCE \"S\";\n\nCREATE SEQUENCE \"S\";",
		BuildScript(dtos, false))
	assert.Equal(t,
		"/*\nCREATE TABLE \"A\"\n(\n\t\"X\" NUMBER\n); */\n\nDROP SEQUENCE \"S\";\n\nCREATE SEQUENCE \"S\";",
		BuildScript(dtos, true))
	assert.Empty(t, BuildScript(nil, true))
}
