package ledger

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/matching"
	"github.com/MrJamesThe3rd/batchbook/internal/statement"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

const maxStatementSize = 10 << 20

type Handler struct {
	svc      *ledger.Service
	matchSvc *matching.Service
	parser   *statement.Parser
}

func NewHandler(svc *ledger.Service, matchSvc *matching.Service, parser *statement.Parser) *Handler {
	return &Handler{svc: svc, matchSvc: matchSvc, parser: parser}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Post("/import", h.importStatement)
	r.Post("/mappings", h.learn)
	r.Delete("/{id}", h.delete)
}

type createEntryRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        ledger.Type     `json:"type"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)

	if req.Date != "" {
		t, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			verr := &validation.Error{}
			verr.Add("date", "date")
			render.Error(w, r, verr)

			return
		}

		date = t
	}

	e, err := h.svc.Create(r.Context(), ledger.CreateParams{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Type:        req.Type,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(e))
}

func filterFrom(r *http.Request) ledger.ListFilter {
	filter := ledger.ListFilter{
		StartDate: render.DateParam(r, "start_date"),
		EndDate:   render.DateParam(r, "end_date"),
	}

	if s := r.URL.Query().Get("type"); s != "" {
		filter.Type = new(ledger.Type(s))
	}

	return filter
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context(), filterFrom(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(entries))
}

// Snapshot is the full ledger as the live stream sends it.
func (h *Handler) Snapshot(ctx context.Context) (any, error) {
	entries, err := h.svc.List(ctx, ledger.ListFilter{})
	if err != nil {
		return nil, err
	}

	return toResponseList(entries), nil
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context(), filterFrom(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, summaryResponse{
		TotalCredits: s.TotalCredits,
		TotalDebits:  s.TotalDebits,
		Balance:      s.Balance,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.parser.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.ImportStatement(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toImportResponse(res))
}

type learnRequest struct {
	RawPattern string `json:"raw_pattern"`
	Category   string `json:"category"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.matchSvc.Learn(r.Context(), req.RawPattern, req.Category); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
