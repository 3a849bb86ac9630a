package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Phrase is a row in the protected_phrases table.
type Phrase struct {
	ID        string
	Phrase    string
	CreatedAt time.Time
}

// AddPhrase inserts a protected phrase. Adding an existing phrase is a no-op.
func (s *Store) AddPhrase(ctx context.Context, phrase string) error {
	phrase = normalizeText(phrase)
	if phrase == "" {
		return fmt.Errorf("phrase is empty")
	}
	id := fmt.Sprintf("pp_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO protected_phrases (id, phrase) VALUES (?, ?)`, id, phrase)
	return err
}

// ListPhrases returns all protected phrases ordered alphabetically.
func (s *Store) ListPhrases(ctx context.Context) ([]Phrase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phrase, created_at FROM protected_phrases ORDER BY phrase`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Phrase
	for rows.Next() {
		var p Phrase
		if err := rows.Scan(&p.ID, &p.Phrase, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PhraseTerms returns the protected phrases as plain strings, ready for
// placeholder.New.
func (s *Store) PhraseTerms(ctx context.Context) ([]string, error) {
	phrases, err := s.ListPhrases(ctx)
	if err != nil {
		return nil, err
	}
	terms := make([]string, len(phrases))
	for i, p := range phrases {
		terms[i] = p.Phrase
	}
	return terms, nil
}

// DeletePhrase removes a protected phrase by ID or by its text.
func (s *Store) DeletePhrase(ctx context.Context, idOrPhrase string) error {
	if strings.HasPrefix(idOrPhrase, "pp_") {
		if err := s.affectOne(ctx, `DELETE FROM protected_phrases WHERE id = ?`, idOrPhrase); err == nil {
			return nil
		}
	}
	return s.affectOne(ctx, `DELETE FROM protected_phrases WHERE phrase = ?`, normalizeText(idOrPhrase))
}
