package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, compiler_version, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.CompilerVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteCompilation inserts a compilation record.
// Uses ON CONFLICT DO NOTHING for idempotency - the first record for a
// (run, request) pair wins. Returns whether a row was inserted.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteCompilation(ctx context.Context, c Compilation) (inserted bool, err error) {
	if c.RequestID == "" {
		return false, fmt.Errorf("write compilation: empty request ID")
	}
	reqJSON, err := marshalRequest(c.Request)
	if err != nil {
		return false, fmt.Errorf("write compilation: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO compilations
		(run_id, request_id, seq, name, request, sparql, query_hash, error_code, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		c.RunID,
		c.RequestID,
		c.Seq,
		c.Name,
		reqJSON,
		c.SPARQL,
		c.QueryHash,
		c.ErrorCode,
		c.Error,
	)
	if err != nil {
		return false, fmt.Errorf("write compilation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write compilation: rows affected: %w", err)
	}
	return n > 0, nil
}
