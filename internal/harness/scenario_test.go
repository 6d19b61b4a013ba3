package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pathq/internal/ir"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/numeric_range.yaml")
	require.NoError(t, err)

	assert.Equal(t, "numeric_range", s.Name)
	assert.False(t, s.ExpectsError())
	require.Len(t, s.Request.Criteria, 2)
	assert.Equal(t, ir.Number("age", ir.OpGT, "18"), s.Request.Criteria[0])
	assert.Equal(t, ir.Number("age", ir.OpLTE, "65"), s.Request.Criteria[1])

	ns, ok := s.Request.Prefixes.Lookup("")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/", ns)
	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenario_RequestFields(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/custom_root.yaml")
	require.NoError(t, err)

	assert.Equal(t, "foaf:Person", s.Request.RootType)
	assert.Equal(t, 10, s.Request.Limit)
	assert.Equal(t, 5, s.Request.Offset)
	assert.Equal(t, ir.Text("foaf:name", ir.OpStartsWith, "A.B"), s.Request.Criteria[0])
}

func TestLoadScenario_ExpectError(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/operator_domain.yaml")
	require.NoError(t, err)
	assert.True(t, s.ExpectsError())
	assert.Equal(t, "E203", s.Expect.Error)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nassertion: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: d\n",
			want: "name is required",
		},
		{
			name: "name with separator",
			yaml: "name: a/b\ndescription: d\n",
			want: "path separators",
		},
		{
			name: "missing description",
			yaml: "name: x\n",
			want: "description is required",
		},
		{
			name: "unknown operator",
			yaml: "name: x\ndescription: d\ncriteria:\n  - path: a\n    op: LIKE\n",
			want: "unknown operator",
		},
		{
			name: "empty path",
			yaml: "name: x\ndescription: d\ncriteria:\n  - op: EQ\n    value: v\n",
			want: "criteria[0]: path is required",
		},
		{
			name: "duplicate prefix",
			yaml: "name: x\ndescription: d\nprefixes:\n  ex: http://a/\n  ex: http://b/\n",
			want: "failed to parse YAML",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\nassertions:\n  - type: trace_count\n",
			want: `unknown assertion type "trace_count"`,
		},
		{
			name: "contains without text",
			yaml: "name: x\ndescription: d\nassertions:\n  - type: sparql_contains\n",
			want: "text is required",
		},
		{
			name: "negative count",
			yaml: "name: x\ndescription: d\nassertions:\n  - type: pattern_count\n    count: -1\n",
			want: "count must be non-negative",
		},
		{
			name: "assertions with expected error",
			yaml: "name: x\ndescription: d\nexpect:\n  error: E203\nassertions:\n  - type: filter_count\n",
			want: "assertions cannot be checked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "sub/c.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0644))
	}

	files, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, files)

	files, err = FindScenarios(dir, "[bc]")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = FindScenarios(dir, "[")
	require.Error(t, err)
}
