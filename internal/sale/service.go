package sale

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, id string) (*Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]*Sale, error)
	UpdateSale(ctx context.Context, s *Sale) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	DeleteSale(ctx context.Context, id string) error
}

// BatchLookup resolves the batch a sale points at.
type BatchLookup interface {
	GetBatch(ctx context.Context, id string) (*batch.Batch, error)
}

type Service struct {
	repo     Repository
	batches  BatchLookup
	notifier live.Notifier
}

func NewService(repo Repository, batches BatchLookup, notifier live.Notifier) *Service {
	return &Service{repo: repo, batches: batches, notifier: notifier}
}

type CreateParams struct {
	BatchID           string `validate:"required"`
	Date              time.Time
	CustName          string `validate:"required"`
	CustPhone         string
	CustAddress       string
	Qty               int `validate:"gte=1"`
	BaseAmount        decimal.Decimal
	Discount          decimal.Decimal
	Status            Status
	Courier           string
	TrackingNumber    string
	ShipOrderID       string
	PaymentScreenshot string
	Notes             string
}

type ListFilter struct {
	BatchID   string
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
	// Query matches customer name or status, case-insensitively.
	Query string
}

// Result is a saved sale plus the stock position of its batch excluding it.
type Result struct {
	Sale  *Sale
	Stock Stock
	// Oversold is set when the sale takes more than the batch has left. It is
	// a warning only; the sale is saved regardless.
	Oversold bool
}

func (s *Service) Record(ctx context.Context, params CreateParams) (*Result, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	b := s.lookup(ctx, params.BatchID)

	sale := &Sale{}
	freeze(sale, params, b)

	res, err := s.check(ctx, sale, b, "")
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, live.KindSales)

	return res, nil
}

// Update replaces a sale and refreezes its economics against the batch as it
// is now.
func (s *Service) Update(ctx context.Context, id string, params CreateParams) (*Result, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	b := s.lookup(ctx, params.BatchID)
	freeze(sale, params, b)

	res, err := s.check(ctx, sale, b, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSale(ctx, sale); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, live.KindSales)

	return res, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		verr := &validation.Error{}
		verr.Add("status", "oneof")

		return verr
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.notifier.Notify(ctx, live.KindSales)

	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// List returns matching sales, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	sales, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, err
	}

	SortByDateDesc(sales)

	return sales, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteSale(ctx, id); err != nil {
		return err
	}

	s.notifier.Notify(ctx, live.KindSales)

	return nil
}

// BatchName resolves a batch name, falling back to UnknownBatchName.
func (s *Service) BatchName(ctx context.Context, batchID string) string {
	b := s.lookup(ctx, batchID)
	if b == nil {
		return UnknownBatchName
	}

	return b.Name
}

// Suggest returns the default base amount for qty units of a batch.
func (s *Service) Suggest(ctx context.Context, batchID string, qty int) decimal.Decimal {
	return SuggestedAmount(s.lookup(ctx, batchID), qty)
}

// lookup returns nil when the batch is gone or cannot be read.
func (s *Service) lookup(ctx context.Context, batchID string) *batch.Batch {
	if batchID == "" {
		return nil
	}

	b, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		if !errors.Is(err, batch.ErrNotFound) {
			slog.Warn("failed to look up batch", "batch_id", batchID, "error", err)
		}

		return nil
	}

	return b
}

// freeze copies params onto sale and fixes its economics against b. A nil
// batch costs nothing.
func freeze(sale *Sale, p CreateParams, b *batch.Batch) {
	unitCost := decimal.Zero

	if b != nil {
		unitCost = b.UnitCost
	} else {
		slog.Warn("sale references unknown batch, assuming zero cost", "batch_id", p.BatchID)
	}

	econ := Price(p.BaseAmount, p.Discount, p.Qty, unitCost)

	status := p.Status
	if status == "" {
		status = StatusNew
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	sale.BatchID = p.BatchID
	sale.Date = date
	sale.CustName = p.CustName
	sale.CustPhone = p.CustPhone
	sale.CustAddress = p.CustAddress
	sale.Qty = p.Qty
	sale.Price = econ.NetPrice
	sale.Discount = nonNegative(p.Discount)
	sale.Profit = econ.Profit
	sale.UnitCost = unitCost
	sale.Status = status
	sale.Courier = p.Courier
	sale.TrackingNumber = p.TrackingNumber
	sale.ShipOrderID = p.ShipOrderID
	sale.PaymentScreenshot = p.PaymentScreenshot
	sale.Notes = p.Notes
}

func (s *Service) check(ctx context.Context, sale *Sale, b *batch.Batch, excludeID string) (*Result, error) {
	res := &Result{Sale: sale}

	if b == nil {
		return res, nil
	}

	others, err := s.repo.ListSales(ctx, ListFilter{BatchID: b.ID})
	if err != nil {
		return nil, err
	}

	res.Stock = Reconcile(b, others, excludeID)
	res.Oversold = sale.Active() && res.Stock.Oversold(sale.Qty)

	return res, nil
}

func validate(p CreateParams) error {
	verr := validation.Struct(p)

	if !p.BaseAmount.IsPositive() {
		verr.Add("base_amount", "gt")
	}

	if p.Status != "" && !p.Status.Valid() {
		verr.Add("status", "oneof")
	}

	return verr.OrNil()
}

// Matches reports whether the sale passes the in-memory part of f. Stores
// that cannot express the filter natively use it after loading.
func (f ListFilter) Matches(s *Sale) bool {
	if f.BatchID != "" && s.BatchID != f.BatchID {
		return false
	}

	if f.Status != nil && s.Status != *f.Status {
		return false
	}

	if f.StartDate != nil && s.Date.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && s.Date.After(*f.EndDate) {
		return false
	}

	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(s.CustName), q) && !strings.Contains(strings.ToLower(string(s.Status)), q) {
			return false
		}
	}

	return true
}

// SortByDateDesc orders sales newest first, breaking ties by creation time.
func SortByDateDesc(sales []*Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		if !sales[i].Date.Equal(sales[j].Date) {
			return sales[i].Date.After(sales[j].Date)
		}

		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
}
