package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
	"github.com/MrJamesThe3rd/batchbook/internal/report"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/sales.xlsx", h.salesWorkbook)
}

type dayResponse struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type batchProfitResponse struct {
	BatchID string          `json:"batch_id"`
	Name    string          `json:"name"`
	Profit  decimal.Decimal `json:"profit"`
}

type dashboardResponse struct {
	Revenue     decimal.Decimal       `json:"revenue"`
	Profit      decimal.Decimal       `json:"profit"`
	SaleCount   int                   `json:"sale_count"`
	UnsoldValue decimal.Decimal       `json:"unsold_value"`
	Trend       []dayResponse         `json:"trend"`
	Top         []batchProfitResponse `json:"top"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := dashboardResponse{
		Revenue:     d.Revenue,
		Profit:      d.Profit,
		SaleCount:   d.SaleCount,
		UnsoldValue: d.UnsoldValue,
		Trend:       make([]dayResponse, len(d.Trend)),
		Top:         make([]batchProfitResponse, len(d.Top)),
	}

	for i, t := range d.Trend {
		resp.Trend[i] = dayResponse{Date: t.Date.Format(time.DateOnly), Revenue: t.Revenue, Profit: t.Profit}
	}

	for i, b := range d.Top {
		resp.Top[i] = batchProfitResponse{BatchID: b.BatchID, Name: b.Name, Profit: b.Profit}
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) salesWorkbook(w http.ResponseWriter, r *http.Request) {
	filter := sale.ListFilter{
		BatchID:   r.URL.Query().Get("batch_id"),
		StartDate: render.DateParam(r, "start_date"),
		EndDate:   render.DateParam(r, "end_date"),
	}

	var buf bytes.Buffer
	if err := h.svc.WriteSalesWorkbook(r.Context(), &buf, filter); err != nil {
		render.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("sales-%s.xlsx", time.Now().Format(time.DateOnly))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write sales workbook", "error", err)
	}
}
