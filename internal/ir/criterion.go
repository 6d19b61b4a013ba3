package ir

// Criterion is one constraint on the resources a query returns: the resource
// must reach, via Path, a value satisfying Comparison against Constraint.
//
// A Criterion with Comparison == OpNone only requires that Path reaches
// something. Numeric selects the numeric lowering (comparison against the
// constraint parsed as a double) instead of the textual one (regex match).
//
// Criterion does not validate itself. Whether Comparison fits Numeric is
// decided when the comparison is lowered.
type Criterion struct {
	Path       string   `json:"path" yaml:"path"`
	Comparison Operator `json:"op,omitempty" yaml:"op,omitempty"`
	Constraint string   `json:"value,omitempty" yaml:"value,omitempty"`
	Numeric    bool     `json:"numeric,omitempty" yaml:"numeric,omitempty"`
}

// Exists returns a criterion requiring only that path reaches a value.
func Exists(path string) Criterion {
	return Criterion{Path: path}
}

// Text returns a textual criterion.
func Text(path string, op Operator, constraint string) Criterion {
	return Criterion{Path: path, Comparison: op, Constraint: constraint}
}

// Number returns a numeric criterion. The constraint stays textual until
// lowering parses it.
func Number(path string, op Operator, constraint string) Criterion {
	return Criterion{Path: path, Comparison: op, Constraint: constraint, Numeric: true}
}

// HasComparison reports whether the criterion constrains the reached value.
func (c Criterion) HasComparison() bool {
	return c.Comparison != OpNone
}

// canonicalMap returns the criterion as a canonical-JSON-ready map.
func (c Criterion) canonicalMap() map[string]any {
	m := map[string]any{
		"path":    c.Path,
		"numeric": c.Numeric,
	}
	if c.HasComparison() {
		m["op"] = c.Comparison.String()
		m["value"] = c.Constraint
	}
	return m
}
