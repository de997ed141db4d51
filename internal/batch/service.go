package batch

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=batch
type Repository interface {
	CreateBatch(ctx context.Context, b *Batch) error
	GetBatch(ctx context.Context, id string) (*Batch, error)
	ListBatches(ctx context.Context, filter ListFilter) ([]*Batch, error)
	UpdateBatch(ctx context.Context, b *Batch) error
	DeleteBatch(ctx context.Context, id string) error
}

type Service struct {
	repo     Repository
	notifier live.Notifier
}

func NewService(repo Repository, notifier live.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

type CreateParams struct {
	Name          string          `validate:"required"`
	TargetQty     int             `validate:"gte=1"`
	Costs         []CostComponent `validate:"min=1"`
	MarginPerUnit decimal.Decimal
	IsPublic      bool
	PublicName    string
	Description   string
	Category      string
}

type ListFilter struct {
	// Query matches batch names case-insensitively.
	Query string
}

// Preview runs the cost model without persisting anything.
func (s *Service) Preview(params CreateParams) Costing {
	return Compute(params.Costs, params.TargetQty, params.MarginPerUnit)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Batch, error) {
	b := &Batch{}
	apply(b, params)

	if err := validate(params, b); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBatch(ctx, b); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, live.KindBatches)

	return b, nil
}

// Update replaces the cost breakdown and recomputes. Sales already recorded
// keep the unit cost they froze.
func (s *Service) Update(ctx context.Context, id string, params CreateParams) (*Batch, error) {
	b, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(b, params)

	if err := validate(params, b); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBatch(ctx, b); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, live.KindBatches)

	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Batch, error) {
	return s.repo.GetBatch(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Batch, error) {
	return s.repo.ListBatches(ctx, filter)
}

// Delete removes the batch only. Sales that reference it are left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteBatch(ctx, id); err != nil {
		return err
	}

	s.notifier.Notify(ctx, live.KindBatches)

	return nil
}

func apply(b *Batch, p CreateParams) {
	b.Name = p.Name
	b.TargetQty = p.TargetQty
	b.Costs = assignCostIDs(p.Costs)
	b.MarginPerUnit = p.MarginPerUnit
	b.IsPublic = p.IsPublic
	b.PublicName = p.PublicName
	b.Description = p.Description
	b.Category = p.Category

	b.Recompute()
}

// assignCostIDs returns a copy of costs where every line id is unique within
// the batch. Blank and repeated ids get the lowest free c<N>.
func assignCostIDs(costs []CostComponent) []CostComponent {
	out := slices.Clone(costs)
	used := make(map[string]bool, len(out))

	var pending []int

	for i := range out {
		if out[i].ID == "" || used[out[i].ID] {
			pending = append(pending, i)
			continue
		}

		used[out[i].ID] = true
	}

	next := 1

	for _, i := range pending {
		for used[fmt.Sprintf("c%d", next)] {
			next++
		}

		out[i].ID = fmt.Sprintf("c%d", next)
		used[out[i].ID] = true
	}

	return out
}

func validate(p CreateParams, b *Batch) error {
	verr := validation.Struct(p)

	if p.MarginPerUnit.IsNegative() {
		verr.Add("margin_per_unit", "gte")
	}

	if !b.GrandTotal.IsPositive() {
		verr.Add("costs", "zero_total")
	}

	return verr.OrNil()
}
