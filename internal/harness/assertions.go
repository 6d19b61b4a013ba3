package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the query text to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	SPARQL   string // Normalized query for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.SPARQL != "" {
		fmt.Fprintf(&buf, "\nQuery:\n")
		for _, line := range strings.Split(strings.TrimRight(e.SPARQL, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// messages of those that fail.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertSPARQLContains:
		return assertContains(result, a, true)
	case AssertSPARQLNotContains:
		return assertContains(result, a, false)
	case AssertPatternCount:
		return assertCount(result, a, "triple patterns", result.Patterns)
	case AssertFilterCount:
		return assertCount(result, a, "filters", result.Filters)
	case AssertVariableCount:
		return assertCount(result, a, "bound variables", result.Variables)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertContains checks whether the normalized query contains a.Text.
func assertContains(result *Result, a Assertion, want bool) error {
	if strings.Contains(result.SPARQL, a.Text) == want {
		return nil
	}
	expected, actual := "query containing "+a.Text, "not found in query"
	if !want {
		expected, actual = "query without "+a.Text, "found in query"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: expected,
		Actual:   actual,
		SPARQL:   result.SPARQL,
	}
}

// assertCount checks an exact count.
func assertCount(result *Result, a Assertion, what string, got int) error {
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
		SPARQL:   result.SPARQL,
	}
}
