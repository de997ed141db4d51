package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindCategory matches stored patterns as literal substrings of
// rawDescription. LIKE wildcards inside a pattern are escaped so a learnt
// "50%" or "A_B" only matches itself. Longest pattern wins, then newest.
func (s *Store) FindCategory(ctx context.Context, rawDescription string) (string, error) {
	query := `
		SELECT category
		FROM category_mappings
		WHERE $1 ILIKE '%' || REPLACE(REPLACE(REPLACE(raw_pattern, '\', '\\'), '%', '\%'), '_', '\_') || '%' ESCAPE '\'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding category for %q: %w", rawDescription, err)
	}

	return category, nil
}

// CreateMapping learns rawPattern. Learning a pattern again, in any letter
// case, moves it to the new category instead of adding a competing row.
func (s *Store) CreateMapping(ctx context.Context, rawPattern, category string) error {
	query := `
		INSERT INTO category_mappings (raw_pattern, category, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT ((LOWER(raw_pattern)))
		DO UPDATE SET category = EXCLUDED.category, created_at = EXCLUDED.created_at
	`

	if _, err := s.db.ExecContext(ctx, query, rawPattern, category); err != nil {
		return fmt.Errorf("learning mapping %q: %w", rawPattern, err)
	}

	return nil
}
