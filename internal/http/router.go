package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/batchbook/internal/auth"
	authhttp "github.com/MrJamesThe3rd/batchbook/internal/http/auth"
	"github.com/MrJamesThe3rd/batchbook/internal/http/backup"
	"github.com/MrJamesThe3rd/batchbook/internal/http/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/http/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/http/migration"
	"github.com/MrJamesThe3rd/batchbook/internal/http/report"
	"github.com/MrJamesThe3rd/batchbook/internal/http/sale"
	"github.com/MrJamesThe3rd/batchbook/internal/http/stream"
)

type Handlers struct {
	Auth      *authhttp.Handler
	Batches   *batch.Handler
	Sales     *sale.Handler
	Ledger    *ledger.Handler
	Backup    *backup.Handler
	Migration *migration.Handler
	Reports   *report.Handler
	Stream    *stream.Handler
}

type Options struct {
	CORSOrigins []string
	// Timeout bounds ordinary requests.
	Timeout time.Duration
}

func New(authSvc *auth.Service, h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			h.Auth.Routes(r, authSvc.Middleware)
		})

		r.Group(func(r chi.Router) {
			r.Use(authSvc.Middleware)

			// Long-lived: streams and the migration run are not bound by the
			// request timeout.
			r.Route("/stream", h.Stream.Routes)
			r.Route("/migration", h.Migration.Routes)

			r.Group(func(r chi.Router) {
				if opts.Timeout > 0 {
					r.Use(middleware.Timeout(opts.Timeout))
				}

				r.Route("/batches", func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					h.Batches.Routes(r)
				})

				r.Route("/sales", func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					h.Sales.Routes(r)
				})

				r.Route("/ledger", h.Ledger.Routes)
				r.Route("/backup", h.Backup.Routes)
				r.Route("/reports", h.Reports.Routes)
			})
		})
	})

	return router
}
