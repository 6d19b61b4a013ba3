package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidRequests(t *testing.T) {
	out, err := executeValidate(t, "text", requestDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All requests valid (3 file(s))")
}

func TestValidateValidRequestsJSON(t *testing.T) {
	out, err := executeValidate(t, "json", requestDir(t))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Files)
}

func TestValidateReportsEveryError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", `{
  "prefixes": {"": "http://example.org/"},
  "criteria": [
    {"path": "a//b"},
    {"path": "name", "op": "GT", "value": "18"},
    {"path": "age", "op": "GT", "value": "eighteen", "numeric": true}
  ]
}`)

	out, err := executeValidate(t, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)
	for _, e := range resp.Data.Errors {
		assert.Equal(t, path, e.File)
		assert.NotEmpty(t, e.Code)
	}
}

func TestValidateLoadErrorIsFileError(t *testing.T) {
	dir := requestDir(t)
	bad := writeFile(t, dir, "broken.yaml", "criteria: [\n")

	out, err := executeValidate(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, bad)
	assert.Contains(t, out, ErrCodeLoadFailed)
}

func TestValidateMissingPath(t *testing.T) {
	out, err := executeValidate(t, "text", "/nonexistent/requests")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateRequiresArgs(t *testing.T) {
	_, err := executeValidate(t, "text")
	require.Error(t, err)
}
