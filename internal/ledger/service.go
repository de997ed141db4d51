package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	DeleteEntry(ctx context.Context, id string) error

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

// Categorizer suggests a category for a bank statement description.
type Categorizer interface {
	Suggest(ctx context.Context, rawDescription string) (string, error)
}

type Service struct {
	repo        Repository
	categorizer Categorizer
	notifier    live.Notifier
}

func NewService(repo Repository, categorizer Categorizer, notifier live.Notifier) *Service {
	return &Service{repo: repo, categorizer: categorizer, notifier: notifier}
}

type CreateParams struct {
	Date        time.Time
	Description string `validate:"required"`
	Amount      decimal.Decimal
	Category    string
	Type        Type `validate:"required"`
}

type ListFilter struct {
	Type      *Type
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Entry, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	e := toEntry(params)
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, live.KindExpenses)

	return e, nil
}

// List returns matching entries, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	entries, err := s.repo.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	SortByDateDesc(entries)

	return entries, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}

	s.notifier.Notify(ctx, live.KindExpenses)

	return nil
}

func (s *Service) Summary(ctx context.Context, filter ListFilter) (Summary, error) {
	entries, err := s.repo.ListEntries(ctx, filter)
	if err != nil {
		return Summary{}, err
	}

	return Summarize(entries), nil
}

type ImportResult struct {
	Imported []*Entry
	// Skipped holds lines already present in the ledger.
	Skipped []CreateParams
}

// ImportStatement saves parsed statement lines in one unit, skipping lines
// that match an existing entry on date, amount, type and description.
// Lines without a category get one from the categorizer.
func (s *Service) ImportStatement(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i, p := range params {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	seen := make(map[dupKey]bool, len(duplicates))
	for _, d := range duplicates {
		seen[keyOf(d.Date, d.Amount, d.Type, d.Description)] = true
	}

	result := &ImportResult{}

	var entries []*Entry

	for _, p := range params {
		k := keyOf(p.Date, p.Amount, p.Type, p.Description)
		if seen[k] {
			result.Skipped = append(result.Skipped, p)
			continue
		}

		// Repeated lines in the same file are kept once.
		seen[k] = true

		if p.Category == "" {
			p.Category = s.suggest(ctx, p.Description)
		}

		entries = append(entries, toEntry(p))
	}

	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	result.Imported = entries

	if len(entries) > 0 {
		s.notifier.Notify(ctx, live.KindExpenses)
	}

	return result, nil
}

func (s *Service) suggest(ctx context.Context, description string) string {
	if s.categorizer == nil {
		return ""
	}

	category, err := s.categorizer.Suggest(ctx, description)
	if err != nil {
		slog.Warn("failed to suggest category", "description", description, "error", err)
		return ""
	}

	return category
}

type dupKey struct {
	Date        string
	Amount      string
	Type        Type
	Description string
}

func keyOf(date time.Time, amount decimal.Decimal, typ Type, description string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Amount:      amount.StringFixed(2),
		Type:        typ,
		Description: strings.TrimSpace(description),
	}
}

func validate(p CreateParams) error {
	verr := validation.Struct(p)

	if !p.Amount.IsPositive() {
		verr.Add("amount", "gt")
	}

	if p.Type != "" && !p.Type.Valid() {
		verr.Add("type", "oneof")
	}

	return verr.OrNil()
}

func toEntry(p CreateParams) *Entry {
	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = DefaultCategory
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	return &Entry{
		Date:        date,
		Description: p.Description,
		Amount:      p.Amount,
		Category:    category,
		Type:        p.Type,
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}
