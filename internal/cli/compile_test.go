package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCompile runs the compile command with args and returns its output.
func executeCompile(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompileInlineText(t *testing.T) {
	out, err := executeCompile(t, "text",
		"--prefix", "foaf=http://xmlns.com/foaf/0.1/",
		"--path", "foaf:knows/foaf:name",
		"--op", "EQ",
		"--value", "Bob",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "PREFIX foaf: <http://xmlns.com/foaf/0.1/>")
	assert.Contains(t, out, "SELECT DISTINCT ?root")
	assert.Contains(t, out, "?root a <http://www.w3.org/ns/oa#Annotation> .")
	assert.Contains(t, out, `"^Bob$"`)
	assert.NotContains(t, out, "# inline", "a single request prints only its query")
}

func TestCompileInlineNumeric(t *testing.T) {
	out, err := executeCompile(t, "text",
		"--prefix", "=http://example.org/",
		"--path", "age",
		"--op", ">=",
		"--value", "21",
		"--numeric",
		"--limit", "5",
	)
	require.NoError(t, err)
	assert.Contains(t, out, ">= 21.0)")
	assert.Contains(t, out, "LIMIT 5")
}

func TestCompileInlineExistence(t *testing.T) {
	out, err := executeCompile(t, "text",
		"--prefix", "foaf=http://xmlns.com/foaf/0.1/",
		"--root-type", "foaf:Person",
		"--path", "foaf:mbox",
		"--path", "foaf:name",
		"--op", "STARTS_WITH",
		"--value", "A",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "?root a foaf:Person .")
	assert.Contains(t, out, "?root foaf:mbox ?")
	assert.Contains(t, out, `"^A"`)
}

func TestCompileInlineOperatorDomain(t *testing.T) {
	out, err := executeCompile(t, "text",
		"--prefix", "=http://example.org/",
		"--path", "name",
		"--op", "GT",
		"--value", "18",
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ inline")
}

func TestCompileInlineFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no_path", []string{"--op", "EQ"}},
		{"unknown_operator", []string{"--path", "a", "--op", "LIKE"}},
		{"bad_prefix", []string{"--path", "a", "--prefix", "foaf"}},
		{"duplicate_prefix", []string{"--path", "a", "--prefix", "x=http://a/", "--prefix", "x=http://b/"}},
		{"path_and_files", []string{"--path", "a", "requests/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCompile(t, "text", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "✗ Loading failed")
		})
	}
}

func TestCompileDirectory(t *testing.T) {
	dir := requestDir(t)

	out, err := executeCompile(t, "text", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "# "+filepath.Join(dir, "a_knows.json"))
	assert.Contains(t, out, "# "+filepath.Join(dir, "b_age.yaml"))
	assert.Contains(t, out, "# "+filepath.Join(dir, "c_label.cue"))
	assert.Contains(t, out, "UNION")
	assert.Contains(t, out, "✓ Compiled 3 request(s)")
}

func TestCompileDirectoryJSON(t *testing.T) {
	dir := requestDir(t)

	out, err := executeCompile(t, "json", dir)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Failed)
	assert.Empty(t, resp.Data.RunID, "no run ID without a journal")
	require.Len(t, resp.Data.Results, 3)
	for _, r := range resp.Data.Results {
		assert.NotEmpty(t, r.SPARQL, r.Name)
		assert.Len(t, r.QueryHash, 64, r.Name)
		assert.NotEmpty(t, r.RequestID, r.Name)
		assert.Nil(t, r.Error, r.Name)
	}
}

func TestCompilePartialFailureJSON(t *testing.T) {
	dir := requestDir(t)
	writeFile(t, dir, "d_bad.json", `{"criteria": [{"path": "a//b"}]}`)

	out, err := executeCompile(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
		Error  *CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Results, 4)

	bad := resp.Data.Results[3]
	require.NotNil(t, bad.Error)
	assert.Equal(t, "E201", bad.Error.Code)
	assert.Empty(t, bad.SPARQL)
}

func TestCompileMaxCriteria(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "many.json", `{
  "prefixes": {"": "http://example.org/"},
  "criteria": [{"path": "a"}, {"path": "b"}, {"path": "c"}]
}`)

	out, err := executeCompile(t, "json", path, "--max-criteria", "2")
	require.Error(t, err)

	var resp struct {
		Data CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Results, 1)
	require.NotNil(t, resp.Data.Results[0].Error)
	assert.Equal(t, "QUOTA_EXCEEDED", resp.Data.Results[0].Error.Code)
}

func TestCompileNonExistentPath(t *testing.T) {
	out, err := executeCompile(t, "text", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
	assert.Contains(t, out, "path not found")
}

func TestCompileEmptyDirectory(t *testing.T) {
	out, err := executeCompile(t, "json", t.TempDir())
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoFiles, resp.Error.Code)
}

func TestCompileOutputToFile(t *testing.T) {
	dir := requestDir(t)
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	_, err := executeCompile(t, "text", dir, "--output", outputFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Results, 3)
}

func TestCompileJournal(t *testing.T) {
	dir := requestDir(t)
	journal := filepath.Join(t.TempDir(), "journal.db")

	out, err := executeCompile(t, "json", dir, "--journal", journal)
	require.NoError(t, err)

	var first CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	require.NotEmpty(t, first.RunID)

	// A second run continues the sequence of the first.
	out, err = executeCompile(t, "json", dir, "--journal", journal)
	require.NoError(t, err)

	var second CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.NotEqual(t, first.RunID, second.RunID)

	history, err := executeHistory(t, "json", "--journal", journal)
	require.NoError(t, err)

	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(history), &resp))
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, first.RunID, resp.Data.Runs[0].ID)
	assert.Equal(t, second.RunID, resp.Data.Runs[1].ID)
	assert.Greater(t, resp.Data.Runs[1].Seq, resp.Data.Runs[0].Seq)
}

func TestCompileMetricsFile(t *testing.T) {
	dir := requestDir(t)
	metricsFile := filepath.Join(t.TempDir(), "pathq.prom")

	_, err := executeCompile(t, "text", dir, "--metrics-file", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pathq_compilations_total")
	assert.Contains(t, string(data), "pathq_batch_jobs_total")
}

func TestParsePrefixFlags(t *testing.T) {
	table, err := parsePrefixFlags([]string{"foaf=http://xmlns.com/foaf/0.1/", "=http://example.org/"})
	require.NoError(t, err)

	ns, ok := table.Lookup("foaf")
	require.True(t, ok)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", ns)

	ns, ok = table.Lookup("")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/", ns)

	_, err = parsePrefixFlags([]string{"foaf="})
	assert.Error(t, err)
}
