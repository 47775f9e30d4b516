// main_test.go
package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arwahdevops/oradelta/internal/delta"
)

const containerPayload = `{
  "jsonSchema": {"properties": {"containers": {"properties": {
    "added":   {"items": {"properties": {"SALES": {"role": {"name": "SALES"}}}}},
    "deleted": {"items": {"properties": {"LEGACY": {"role": {"name": "LEGACY"}}}}}
  }}}},
  "modelData": [{"dbVersion": "23ai"}],
  "options": {"targetScriptOptions": {"keyword": "quotedIdentifier"}}
}`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APPLY_DROP_STATEMENTS", "false")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file=" + filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	out, err := runCLI(t, containerPayload, "generate", "--level", "entity")
	require.NoError(t, err)
	assert.Equal(t, "CREATE USER \"SALES\" NO AUTHENTICATION;\n\n-- DROP USER \"LEGACY\";\n", out)

	out, err = runCLI(t, containerPayload, "generate", "--apply-drop-statements")
	require.NoError(t, err)
	assert.Contains(t, out, "\n\nDROP USER \"LEGACY\";")

	out, err = runCLI(t, containerPayload, "generate", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- scripts:\n")
	assert.Contains(t, out, "isDropScript: true")

	_, err = runCLI(t, containerPayload, "generate", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported --format")

	_, err = runCLI(t, containerPayload, "generate", "--level", "bucket")
	assert.ErrorContains(t, err, "invalid level")

	_, err = runCLI(t, containerPayload, "--script-format=shouting", "generate")
	assert.ErrorContains(t, err, "--script-format")
}

func TestDropCheckCommand(t *testing.T) {
	out, err := runCLI(t, containerPayload, "drop-check")
	assert.Equal(t, "true\n", out)
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.code)

	noDrops := strings.Replace(containerPayload, `"LEGACY": {"role": {"name": "LEGACY"}}`, "", 1)
	out, err = runCLI(t, noDrops, "drop-check")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestApplyCommand_DryRun(t *testing.T) {
	script := "CREATE TABLE \"T\" (\"ID\" NUMBER);\n\n-- DROP TABLE \"OLD\";\n\nCREATE INDEX \"T_I\" ON \"T\" (\"ID\");"
	out, err := runCLI(t, script, "apply", "--script", "-", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE \"T\" (\"ID\" NUMBER)\n/\nCREATE INDEX \"T_I\" ON \"T\" (\"ID\")\n", out)

	_, err = runCLI(t, script, "apply", "--dry-run")
	assert.ErrorContains(t, err, "exactly one of --script or --model")
}

func TestApplyCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("ORACLE_HOST", "")
	_, err := runCLI(t, "SELECT 1 FROM DUAL", "apply", "--script", "-")
	assert.Error(t, err)
}

func TestEncodeYAML(t *testing.T) {
	out, err := encode([]map[string]any{{"schema": "HR", "ddl": "CREATE SEQUENCE \"S\"\n  START WITH 1"}}, formatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- ddl: |-\n")
	assert.Contains(t, string(out), "  schema: HR\n")
	assert.NotContains(t, string(out), "{")

	_, err = encode(nil, "toml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("Container")
	require.NoError(t, err)
	assert.Equal(t, delta.LevelContainer, level)
}

func TestNormalizeSchemas(t *testing.T) {
	assert.Equal(t, []string{"HR", "sales"}, normalizeSchemas([]string{" HR", "", "sales", "HR "}))
}
