package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one persisted rewrite of a document.
type Run struct {
	ID          string
	Backend     string
	Input       string
	Output      string
	Changes     []ChangeRecord
	ChangeCount int
	// Diagnostics is the JSON-encoded diagnostics of the run.
	Diagnostics string
	CreatedAt   time.Time
}

type ChangeRecord struct {
	Category    string
	Original    string
	Rewritten   string
	Explanation string
}

// SaveRun stores run and its changes in one transaction and returns the run
// ID, generating one when run.ID is empty.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, backend, input_text, output_text, change_count, diagnostics, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Backend, run.Input, run.Output, len(run.Changes), run.Diagnostics, run.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	for i, c := range run.Changes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_changes (run_id, seq, category, original_text, rewritten_text, explanation) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, c.Category, c.Original, c.Rewritten, c.Explanation)
		if err != nil {
			return "", fmt.Errorf("failed to save change %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// GetRun returns a run with its changes.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var diag sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, backend, input_text, output_text, change_count, diagnostics, created_at FROM runs WHERE id = ?`,
		id).Scan(&r.ID, &r.Backend, &r.Input, &r.Output, &r.ChangeCount, &diag, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r.Diagnostics = diag.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, original_text, rewritten_text, explanation FROM run_changes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChangeRecord
		var expl sql.NullString
		if err := rows.Scan(&c.Category, &c.Original, &c.Rewritten, &expl); err != nil {
			return nil, err
		}
		c.Explanation = expl.String
		r.Changes = append(r.Changes, c)
	}
	return &r, rows.Err()
}

// ListRuns returns the most recent runs without their changes. limit ≤ 0
// returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, backend, input_text, output_text, change_count, created_at FROM runs ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Backend, &r.Input, &r.Output, &r.ChangeCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
