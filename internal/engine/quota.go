package engine

import "github.com/roach88/pathq/internal/ir"

// DefaultMaxCriteria bounds the criteria of one request. Every criterion
// adds patterns to a single WHERE clause, so the limit bounds query size.
const DefaultMaxCriteria = 256

// checkQuota returns a quota error if req has more than maxCriteria criteria.
// A maxCriteria of zero or less disables the check.
func checkQuota(job string, req ir.Request, maxCriteria int) error {
	if maxCriteria <= 0 || len(req.Criteria) <= maxCriteria {
		return nil
	}
	return NewQuotaError(job, len(req.Criteria), maxCriteria)
}
