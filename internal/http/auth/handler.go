package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/batchbook/internal/auth"
	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts login publicly and the session check behind requireAuth.
func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/login", h.login)
	r.With(requireAuth).Get("/session", h.session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !render.DecodeJSON(w, r, &req) {
		return
	}

	token, id, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		render.Error(w, r, err)

		return
	}

	render.JSON(w, http.StatusOK, loginResponse{Token: token, Email: id.Email, ExpiresAt: id.ExpiresAt})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	render.JSON(w, http.StatusOK, id)
}
