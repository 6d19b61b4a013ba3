package store

import "github.com/roach88/pathq/internal/ir"

// Run is one batch of compilations.
type Run struct {
	ID              string `json:"id"`
	Seq             int64  `json:"seq"`
	CompilerVersion string `json:"compiler_version"`
	IRVersion       string `json:"ir_version"`
}

// Compilation is the journal entry for one compiled request.
//
// Exactly one of (SPARQL, QueryHash) and (ErrorCode, Error) is set.
type Compilation struct {
	RunID     string     `json:"run_id"`
	RequestID string     `json:"request_id"`
	Seq       int64      `json:"seq"`
	Name      string     `json:"name,omitempty"`
	Request   ir.Request `json:"request"`
	SPARQL    string     `json:"sparql,omitempty"`
	QueryHash string     `json:"query_hash,omitempty"`
	ErrorCode string     `json:"error_code,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Failed reports whether the compilation ended in an error.
func (c Compilation) Failed() bool {
	return c.Error != ""
}
