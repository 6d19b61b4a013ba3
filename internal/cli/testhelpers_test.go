package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	jsonRequest = `{
  "prefixes": {"foaf": "http://xmlns.com/foaf/0.1/"},
  "criteria": [{"path": "foaf:knows/foaf:name", "op": "EQ", "value": "Bob"}]
}
`
	yamlRequest = `prefixes:
  "": http://example.org/
criteria:
  - path: age
    op: GTE
    value: 21
    numeric: true
limit: 10
`
	cueRequest = `prefixes: ex: "http://example.org/"
criteria: [{path: "(ex:name | ex:label)"}]
`
)

// writeFile writes content to name under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// requestDir writes one request file of each format to a temp directory.
func requestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "a_knows.json", jsonRequest)
	writeFile(t, dir, "b_age.yaml", yamlRequest)
	writeFile(t, dir, "c_label.cue", cueRequest)
	return dir
}
