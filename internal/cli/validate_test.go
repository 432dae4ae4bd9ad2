package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefs(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte(src), 0o644))
	return dir
}

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", testFinders)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All finders valid (3)")
}

func TestValidate_ValidJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", testFinders)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"intro", "posts", "posts_intro"}, resp.Data.Finders)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	dir := writeDefs(t, `
package bad

finder: a: {selector: "template", joins: [{finder: "b", prefix: "b"}]}
finder: b: {selector: "id=1", joins: [{finder: "a", prefix: "a"}]}
finder: c: {selector: "id=2", fields: [{name: "title", type: "blob"}], joins: [{finder: "missing", prefix: "m"}]}
`)

	out, err := execute(t, "--format", "json", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)

	byField := make(map[string]string)
	for _, e := range resp.Data.Errors {
		byField[e.Field] = e.Code
	}
	assert.Equal(t, ErrCodeSelector, byField["finder.a.selector"])
	assert.Equal(t, ErrCodeFieldType, byField["finder.c.fields[0].type"])
	assert.Equal(t, ErrCodeJoin, byField["finder.c.joins[0]"])
	assert.Equal(t, ErrCodeJoin, byField["finder.a.joins"], "cycle a → b → a")
}

func TestValidate_TextFailure(t *testing.T) {
	dir := writeDefs(t, `
package bad

finder: self: {selector: "id=1", joins: [{finder: "self", prefix: "me"}]}
`)

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "finder self joins itself")
}

func TestValidate_CompileErrorsAreReported(t *testing.T) {
	dir := writeDefs(t, `
package bad

finder: ok: selector: "id=1"
finder: broken: {selector: "id=1", order: "name"}
`)

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "unknown finder key")
}

func TestValidate_NonExistentDirectory(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/directory")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestValidate_EmptyDirectory(t *testing.T) {
	out, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no CUE files found")
}

func TestValidateDefinitionsDir(t *testing.T) {
	errs, err := ValidateDefinitionsDir(testFinders)
	require.NoError(t, err)
	assert.Empty(t, errs)

	_, err = ValidateDefinitionsDir("/nonexistent/directory")
	require.Error(t, err)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"selector", ErrCodeSelector},
		{"limit", ErrCodeLimit},
		{"field.type", ErrCodeFieldType},
		{"field.name", ErrCodeName},
		{"raw.alias", ErrCodeName},
		{"joins", ErrCodeJoin},
		{"join.prefix", ErrCodeJoin},
		{"finder.posts.joins", ErrCodeJoin},
		{"sort", ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}
