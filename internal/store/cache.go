package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/rewrite"
)

// CacheEntry is a row from the rewrite_cache table.
type CacheEntry struct {
	ID          string
	Backend     string
	Category    string
	Context     string
	SourceText  string
	OutputText  string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// CacheStats summarises rewrite cache usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

// Lookup implements rewrite.Cache.
func (s *Store) Lookup(ctx context.Context, backend string, req rewrite.Request) (string, bool, error) {
	var output string
	var invalidated bool

	source := normalizeText(req.Text)
	err := s.db.QueryRowContext(ctx,
		`SELECT output_text, invalidated FROM rewrite_cache WHERE backend = ? AND category = ? AND context_key = ? AND source_text = ?`,
		backend, string(req.Category), req.Context, source).Scan(&output, &invalidated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE rewrite_cache SET usage_count = usage_count + 1, last_used = ? WHERE backend = ? AND category = ? AND context_key = ? AND source_text = ?`,
		time.Now(), backend, string(req.Category), req.Context, source)

	s.logger.Debug("rewrite cache hit", zap.String("backend", backend), zap.String("category", string(req.Category)))
	return output, true, err
}

// Save implements rewrite.Cache.
func (s *Store) Save(ctx context.Context, backend string, req rewrite.Request, output string) error {
	id := fmt.Sprintf("rc_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO rewrite_cache (id, backend, category, context_key, source_text, output_text, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		id, backend, string(req.Category), req.Context, normalizeText(req.Text), output, time.Now(), time.Now())
	return err
}

func (s *Store) InvalidateCacheEntry(ctx context.Context, id string) error {
	return s.affectOne(ctx, `UPDATE rewrite_cache SET invalidated = TRUE WHERE id = ?`, id)
}

// DeleteCacheEntry permanently removes a cache entry by ID.
func (s *Store) DeleteCacheEntry(ctx context.Context, id string) error {
	return s.affectOne(ctx, `DELETE FROM rewrite_cache WHERE id = ?`, id)
}

// ClearCache removes all cache entries.
func (s *Store) ClearCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rewrite_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListCache returns all cache entries ordered by most recently used.
func (s *Store) ListCache(ctx context.Context) ([]CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, backend, category, context_key, source_text, output_text, usage_count, invalidated, last_used FROM rewrite_cache ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []CacheEntry
	for rows.Next() {
		var e CacheEntry
		if err := rows.Scan(&e.ID, &e.Backend, &e.Category, &e.Context, &e.SourceText, &e.OutputText, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the rewrite cache.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM rewrite_cache`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// affectOne runs a statement that must touch exactly one row keyed by id.
func (s *Store) affectOne(ctx context.Context, query, id string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
