package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pathq/internal/ir"
)

// Scenario defines a conformance test scenario: one request and the
// expected shape of its compilation.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Request is the compilation input. Its fields (prefixes, criteria,
	// root_type, limit, offset) sit at the top level of the file.
	Request ir.Request `yaml:",inline"`

	// Expect specifies whether compilation succeeds.
	// If nil, compilation is expected to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the compiled query.
	// Supported types: sparql_contains, sparql_not_contains, pattern_count,
	// filter_count, variable_count
	Assertions []Assertion `yaml:"assertions"`
}

// ExpectClause specifies expected compilation behavior.
type ExpectClause struct {
	// Error is the expected error code (e.g., "E203").
	// Empty means compilation must succeed.
	Error string `yaml:"error,omitempty"`
}

// ExpectsError reports whether the scenario expects compilation to fail.
func (s *Scenario) ExpectsError() bool {
	return s.Expect != nil && s.Expect.Error != ""
}

// Assertion validates the compiled query.
type Assertion struct {
	// Type specifies the assertion type:
	// - "sparql_contains": normalized text contains Text
	// - "sparql_not_contains": normalized text does not contain Text
	// - "pattern_count": exactly Count triple patterns
	// - "filter_count": exactly Count FILTERs
	// - "variable_count": exactly Count bound variables
	Type string `yaml:"type"`

	// Text is the expected substring (used by sparql_contains, sparql_not_contains).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number (used by the *_count types).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertSPARQLContains    = "sparql_contains"
	AssertSPARQLNotContains = "sparql_not_contains"
	AssertPatternCount      = "pattern_count"
	AssertFilterCount       = "filter_count"
	AssertVariableCount     = "variable_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir in lexical
// order. A non-empty filter is a glob matched against file names without
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that all required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	for i, c := range s.Request.Criteria {
		if c.Path == "" {
			return fmt.Errorf("criteria[%d]: path is required", i)
		}
	}

	if s.Expect != nil && s.Expect.Error != "" && len(s.Assertions) > 0 {
		return fmt.Errorf("assertions cannot be checked when an error is expected")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSPARQLContains, AssertSPARQLNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertPatternCount, AssertFilterCount, AssertVariableCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
