package batch

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

type Handler struct {
	svc   *batch.Service
	sales *sale.Service
}

func NewHandler(svc *batch.Service, sales *sale.Service) *Handler {
	return &Handler{svc: svc, sales: sales}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/preview", h.preview)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type costRequest struct {
	ID   string              `json:"id"`
	Name string              `json:"name"`
	Rate decimal.Decimal     `json:"rate"`
	Qty  decimal.Decimal     `json:"qty"`
	Unit string              `json:"unit"`
	Type batch.ComponentType `json:"type"`
}

type batchRequest struct {
	Name          string          `json:"name"`
	TargetQty     int             `json:"target_qty"`
	Costs         []costRequest   `json:"costs"`
	MarginPerUnit decimal.Decimal `json:"margin_per_unit"`
	IsPublic      bool            `json:"is_public"`
	PublicName    string          `json:"public_name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
}

func (req batchRequest) params() batch.CreateParams {
	costs := make([]batch.CostComponent, len(req.Costs))
	for i, c := range req.Costs {
		costs[i] = batch.CostComponent{ID: c.ID, Name: c.Name, Rate: c.Rate, Qty: c.Qty, Unit: c.Unit, Type: c.Type}
	}

	return batch.CreateParams{
		Name:          req.Name,
		TargetQty:     req.TargetQty,
		Costs:         costs,
		MarginPerUnit: req.MarginPerUnit,
		IsPublic:      req.IsPublic,
		PublicName:    req.PublicName,
		Description:   req.Description,
		Category:      req.Category,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	b, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(b))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	c := h.svc.Preview(req.params())

	render.JSON(w, http.StatusOK, previewResponse{
		Lines:        c.Lines,
		GrandTotal:   c.GrandTotal,
		UnitCost:     c.UnitCost,
		SellingPrice: c.SellingPrice,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listWithStock(r.Context(), batch.ListFilter{Query: r.URL.Query().Get("q")})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, resp)
}

// Snapshot is the full batch list as the live stream sends it.
func (h *Handler) Snapshot(ctx context.Context) (any, error) {
	return h.listWithStock(ctx, batch.ListFilter{})
}

func (h *Handler) listWithStock(ctx context.Context, filter batch.ListFilter) ([]batchResponse, error) {
	batches, err := h.svc.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	sales, err := h.sales.List(ctx, sale.ListFilter{})
	if err != nil {
		return nil, err
	}

	return toResponseList(batches, sales), nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	sales, err := h.sales.List(r.Context(), sale.ListFilter{BatchID: b.ID})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, withStock(b, sale.Reconcile(b, sales, "")))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	b, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.params())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
