// Package matching learns which ledger category a bank statement description
// belongs to.
package matching

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindCategory returns the category of the longest pattern contained in
	// rawDescription, or "" when none matches.
	FindCategory(ctx context.Context, rawDescription string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns a category for the given description, or "" if none is known.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (string, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return "", nil
	}

	return s.repo.FindCategory(ctx, rawDescription)
}

// Learn remembers that descriptions containing rawPattern belong to category.
func (s *Service) Learn(ctx context.Context, rawPattern, category string) error {
	rawPattern = strings.TrimSpace(rawPattern)
	category = strings.TrimSpace(category)

	verr := &validation.Error{}
	if rawPattern == "" {
		verr.Add("raw_pattern", "required")
	}

	if category == "" {
		verr.Add("category", "required")
	}

	if err := verr.OrNil(); err != nil {
		return err
	}

	return s.repo.CreateMapping(ctx, rawPattern, category)
}

// Best picks the category of the longest pattern found in rawDescription,
// case-insensitively. Later mappings win ties. Stores without pattern
// matching of their own use it.
func Best(rawDescription string, patterns []string, categories []string) string {
	desc := strings.ToLower(rawDescription)

	best, bestLen := "", 0

	for i, p := range patterns {
		if p == "" || !strings.Contains(desc, strings.ToLower(p)) {
			continue
		}

		if len(p) >= bestLen {
			best, bestLen = categories[i], len(p)
		}
	}

	return best
}
