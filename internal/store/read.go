package store

import (
	"context"
	"database/sql"
	"fmt"
)

const compilationColumns = `run_id, request_id, seq, name, request, sparql, query_hash, error_code, error`

// ReadRun returns a run and its compilations.
// Compilations are ordered deterministically: ORDER BY seq ASC, request_id ASC COLLATE BINARY.
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, []Compilation, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, compiler_version, ir_version
		FROM runs
		WHERE id = ?
	`, runID).Scan(&run.ID, &run.Seq, &run.CompilerVersion, &run.IRVersion)
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+compilationColumns+`
		FROM compilations
		WHERE run_id = ?
		ORDER BY seq ASC, request_id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return Run{}, nil, fmt.Errorf("query compilations: %w", err)
	}
	compilations, err := scanCompilations(rows)
	if err != nil {
		return Run{}, nil, err
	}
	return run, compilations, nil
}

// ListRuns returns every run, oldest first.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, compiler_version, ir_version
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Seq, &run.CompilerVersion, &run.IRVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindByRequest returns every journaled compilation of a request across
// runs, oldest first.
func (s *Store) FindByRequest(ctx context.Context, requestID string) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+compilationColumns+`
		FROM compilations
		WHERE request_id = ?
		ORDER BY seq ASC, run_id COLLATE BINARY ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	return scanCompilations(rows)
}

// scanCompilations reads and closes rows.
// Returns an empty slice (not nil) if there are no rows.
func scanCompilations(rows *sql.Rows) ([]Compilation, error) {
	defer rows.Close()

	compilations := []Compilation{}
	for rows.Next() {
		var (
			c       Compilation
			reqJSON string
		)
		if err := rows.Scan(
			&c.RunID,
			&c.RequestID,
			&c.Seq,
			&c.Name,
			&reqJSON,
			&c.SPARQL,
			&c.QueryHash,
			&c.ErrorCode,
			&c.Error,
		); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		req, err := unmarshalRequest(reqJSON)
		if err != nil {
			return nil, err
		}
		c.Request = req
		compilations = append(compilations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return compilations, nil
}
