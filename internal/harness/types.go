package harness

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect clause and all assertions match.
	Pass bool `json:"pass"`

	// SPARQL is the normalized query text. Empty if compilation failed.
	SPARQL string `json:"sparql,omitempty"`

	// QueryHash is the hash of SPARQL.
	QueryHash string `json:"query_hash,omitempty"`

	// ErrorCode is the code of the compilation error, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Error is the compilation error message, if any.
	Error string `json:"error,omitempty"`

	// Patterns, Filters and Variables count the query's triple patterns,
	// FILTERs and bound variables.
	Patterns  int `json:"patterns"`
	Filters   int `json:"filters"`
	Variables int `json:"variables"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
