package sale

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/attachment"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

type Handler struct {
	svc     *sale.Service
	batches *batch.Service
}

func NewHandler(svc *sale.Service, batches *batch.Service) *Handler {
	return &Handler{svc: svc, batches: batches}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

type saleRequest struct {
	BatchID           string          `json:"batch_id"`
	Date              string          `json:"date"`
	CustName          string          `json:"cust_name"`
	CustPhone         string          `json:"cust_phone"`
	CustAddress       string          `json:"cust_address"`
	Qty               int             `json:"qty"`
	BaseAmount        decimal.Decimal `json:"base_amount"`
	Discount          decimal.Decimal `json:"discount"`
	Status            sale.Status     `json:"status"`
	Courier           string          `json:"courier"`
	TrackingNumber    string          `json:"tracking_number"`
	ShipOrderID       string          `json:"ship_order_id"`
	PaymentScreenshot string          `json:"payment_screenshot"`
	Notes             string          `json:"notes"`
}

// params converts the request. Dates are calendar days; an empty date means
// today.
func (req saleRequest) params() (sale.CreateParams, error) {
	date := time.Now().UTC().Truncate(24 * time.Hour)

	if req.Date != "" {
		t, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			verr := &validation.Error{}
			verr.Add("date", "date")

			return sale.CreateParams{}, verr
		}

		date = t
	}

	screenshot := strings.TrimSpace(req.PaymentScreenshot)
	if screenshot != "" && attachment.IsDataURL(screenshot) {
		if _, _, err := attachment.ParseDataURL(screenshot); err != nil {
			verr := &validation.Error{}
			verr.Add("payment_screenshot", "data_url")

			return sale.CreateParams{}, verr
		}
	}

	return sale.CreateParams{
		BatchID:           req.BatchID,
		Date:              date,
		CustName:          req.CustName,
		CustPhone:         req.CustPhone,
		CustAddress:       req.CustAddress,
		Qty:               req.Qty,
		BaseAmount:        req.BaseAmount,
		Discount:          req.Discount,
		Status:            req.Status,
		Courier:           req.Courier,
		TrackingNumber:    req.TrackingNumber,
		ShipOrderID:       req.ShipOrderID,
		PaymentScreenshot: screenshot,
		Notes:             req.Notes,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	res, err := h.svc.Record(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResultResponse(res, h.svc.BatchName(r.Context(), res.Sale.BatchID)))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := sale.ListFilter{
		BatchID:   q.Get("batch_id"),
		StartDate: render.DateParam(r, "start_date"),
		EndDate:   render.DateParam(r, "end_date"),
		Query:     q.Get("q"),
	}

	if s := q.Get("status"); s != "" {
		filter.Status = new(sale.Status(s))
	}

	resp, err := h.listNamed(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, resp)
}

// Snapshot is the full sale list as the live stream sends it.
func (h *Handler) Snapshot(ctx context.Context) (any, error) {
	return h.listNamed(ctx, sale.ListFilter{})
}

func (h *Handler) listNamed(ctx context.Context, filter sale.ListFilter) ([]saleResponse, error) {
	sales, err := h.svc.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	batches, err := h.batches.List(ctx, batch.ListFilter{})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(batches))
	for _, b := range batches {
		names[b.ID] = b.Name
	}

	resp := make([]saleResponse, len(sales))

	for i, s := range sales {
		name, ok := names[s.BatchID]
		if !ok {
			name = sale.UnknownBatchName
		}

		resp[i] = toResponse(s, name)
	}

	return resp, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(s, h.svc.BatchName(r.Context(), s.BatchID)))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	res, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResultResponse(res, h.svc.BatchName(r.Context(), res.Sale.BatchID)))
}

type updateStatusRequest struct {
	Status sale.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type suggestResponse struct {
	BatchID string          `json:"batch_id"`
	Qty     int             `json:"qty"`
	Amount  decimal.Decimal `json:"amount"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	batchID := r.URL.Query().Get("batch_id")
	if batchID == "" {
		http.Error(w, "batch_id query parameter is required", http.StatusBadRequest)
		return
	}

	qty := render.IntParam(r, "qty", 1)

	render.JSON(w, http.StatusOK, suggestResponse{
		BatchID: batchID,
		Qty:     qty,
		Amount:  h.svc.Suggest(r.Context(), batchID, qty),
	})
}
