package ir

// DefaultRootType is the type every returned resource must have when a
// request does not name one (the W3C Web Annotation class).
const DefaultRootType = "http://www.w3.org/ns/oa#Annotation"

// Request is a complete compilation input: the criteria, the prefix table
// the path expressions are written against, and the shape of the SELECT.
type Request struct {
	// Prefixes are copied verbatim into the compiled query.
	Prefixes *PrefixTable `json:"prefixes,omitempty" yaml:"prefixes,omitempty"`

	// Criteria are conjunctive; order only affects the textual output.
	Criteria []Criterion `json:"criteria" yaml:"criteria"`

	// RootType is the IRI (or prefixed name) of the type every result has.
	// Empty means DefaultRootType.
	RootType string `json:"root_type,omitempty" yaml:"root_type,omitempty"`

	// Limit and Offset are SELECT modifiers; zero means unset.
	Limit  int `json:"limit,omitempty" yaml:"limit,omitempty"`
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// EffectiveRootType returns RootType, or DefaultRootType if unset.
func (r Request) EffectiveRootType() string {
	if r.RootType == "" {
		return DefaultRootType
	}
	return r.RootType
}

// canonicalMap returns the request as a canonical-JSON-ready map.
func (r Request) canonicalMap() map[string]any {
	criteria := make([]any, len(r.Criteria))
	for i, c := range r.Criteria {
		criteria[i] = c.canonicalMap()
	}
	prefixes := make(map[string]any, r.Prefixes.Len())
	r.Prefixes.Each(func(short, ns string) {
		prefixes[short] = ns
	})
	return map[string]any{
		"criteria":  criteria,
		"prefixes":  prefixes,
		"root_type": r.EffectiveRootType(),
		"limit":     r.Limit,
		"offset":    r.Offset,
	}
}

// CanonicalJSON returns the request as RFC 8785 canonical JSON. The output
// decodes back into an equivalent Request with encoding/json.
func CanonicalJSON(req Request) ([]byte, error) {
	return MarshalCanonical(req.canonicalMap())
}
