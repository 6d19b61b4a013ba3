package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pathq/internal/ir"
)

func TestLoadRequest_Formats(t *testing.T) {
	dir := requestDir(t)

	t.Run("json", func(t *testing.T) {
		req, err := LoadRequest(filepath.Join(dir, "a_knows.json"))
		require.NoError(t, err)
		require.Len(t, req.Criteria, 1)
		assert.Equal(t, "foaf:knows/foaf:name", req.Criteria[0].Path)
		assert.Equal(t, ir.OpEQ, req.Criteria[0].Comparison)
		assert.Equal(t, "Bob", req.Criteria[0].Constraint)
		ns, ok := req.Prefixes.Lookup("foaf")
		require.True(t, ok)
		assert.Equal(t, "http://xmlns.com/foaf/0.1/", ns)
	})

	t.Run("yaml", func(t *testing.T) {
		req, err := LoadRequest(filepath.Join(dir, "b_age.yaml"))
		require.NoError(t, err)
		require.Len(t, req.Criteria, 1)
		assert.Equal(t, ir.OpGTE, req.Criteria[0].Comparison)
		assert.Equal(t, "21", req.Criteria[0].Constraint)
		assert.True(t, req.Criteria[0].Numeric)
		assert.Equal(t, 10, req.Limit)
	})

	t.Run("cue", func(t *testing.T) {
		req, err := LoadRequest(filepath.Join(dir, "c_label.cue"))
		require.NoError(t, err)
		require.Len(t, req.Criteria, 1)
		assert.Equal(t, "(ex:name | ex:label)", req.Criteria[0].Path)
		assert.False(t, req.Criteria[0].HasComparison())
		ns, ok := req.Prefixes.Lookup("ex")
		require.True(t, ok)
		assert.Equal(t, "http://example.org/", ns)
	})
}

func TestLoadRequest_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"unsupported_extension", "req.txt", "criteria: []", ErrCodeUnsupportedFormat},
		{"json_unknown_field", "req.json", `{"criteria": [], "order": "asc"}`, ErrCodeLoadFailed},
		{"json_bad_operator", "op.json", `{"criteria": [{"path": "a", "op": "LIKE"}]}`, ErrCodeLoadFailed},
		{"yaml_unknown_field", "req.yaml", "criteria: []\nsort: name\n", ErrCodeLoadFailed},
		{"cue_syntax", "syntax.cue", "criteria: [", ErrCodeLoadFailed},
		{"cue_schema_violation", "schema.cue", `criteria: [{path: "a", op: "LIKE"}]`, ErrCodeBuildFailed},
		{"cue_closed_definition", "closed.cue", "criteria: []\norder: \"asc\"\n", ErrCodeBuildFailed},
		{"cue_negative_limit", "limit.cue", "criteria: []\nlimit: -1\n", ErrCodeBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			_, err := LoadRequest(path)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.wantCode, loadErr.Code)
			assert.Equal(t, path, loadErr.File)
		})
	}
}

func TestLoadJobs_Directory(t *testing.T) {
	dir := requestDir(t)
	writeFile(t, dir, "README.md", "not a request")

	jobs, errs := LoadJobs([]string{dir}, LoadModeCollectAll)
	require.Empty(t, errs)
	require.Len(t, jobs, 3)

	assert.Equal(t, filepath.Join(dir, "a_knows.json"), jobs[0].Name)
	assert.Equal(t, filepath.Join(dir, "b_age.yaml"), jobs[1].Name)
	assert.Equal(t, filepath.Join(dir, "c_label.cue"), jobs[2].Name)
}

func TestLoadJobs_Nested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "people/knows.json", jsonRequest)
	writeFile(t, dir, "numbers/age.yml", yamlRequest)

	files, err := FindRequestFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "numbers", "age.yml"),
		filepath.Join(dir, "people", "knows.json"),
	}, files)
}

func TestLoadJobs_Modes(t *testing.T) {
	dir := t.TempDir()
	bad1 := writeFile(t, dir, "bad1.json", "{")
	bad2 := writeFile(t, dir, "bad2.json", "{")

	_, errs := LoadJobs([]string{bad1, bad2}, LoadModeFailFast)
	assert.Len(t, errs, 1)

	_, errs = LoadJobs([]string{bad1, bad2}, LoadModeCollectAll)
	assert.Len(t, errs, 2)
}

func TestLoadJobs_MissingPath(t *testing.T) {
	_, errs := LoadJobs([]string{"/nonexistent/requests"}, LoadModeCollectAll)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Empty(t, loadErr.File)
}

func TestLoadJobs_EmptyDirectory(t *testing.T) {
	_, errs := LoadJobs([]string{t.TempDir()}, LoadModeCollectAll)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadError_Error(t *testing.T) {
	assert.Equal(t, "E003: no request files found in x", (&LoadError{Code: ErrCodeNoFiles, Message: "no request files found in x"}).Error())
	assert.Equal(t, "r.json: E004: bad", (&LoadError{Code: ErrCodeLoadFailed, Message: "bad", File: "r.json"}).Error())
}
