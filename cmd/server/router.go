package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vocably/srs-api/internal/api/middleware"
)

// setupRouter builds the HTTP routing table.
func (app *application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", app.authHandler.Register)
		r.Post("/auth/login", app.authHandler.Login)

		// Routes below require a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(app.authMiddleware.Authenticate)

			r.Post("/cards", app.cardHandler.CreateCard)
			r.Get("/cards/due", app.cardHandler.GetDueCards)
			r.Get("/cards/{id}", app.cardHandler.GetCard)
			r.Delete("/cards/{id}", app.cardHandler.DeleteCard)
			r.Post("/cards/{id}/suspend", app.cardHandler.SuspendCard)
			r.Post("/cards/{id}/reactivate", app.cardHandler.ReactivateCard)
			r.Post("/cards/{id}/postpone", app.cardHandler.PostponeCard)

			r.Post("/sessions", app.sessionHandler.StartSession)
			r.Get("/sessions", app.sessionHandler.GetSession)
			r.Delete("/sessions", app.sessionHandler.CancelSession)
			r.Post("/sessions/answer", app.sessionHandler.SubmitAnswer)

			r.Get("/stats", app.statsHandler.GetStats)
		})
	})

	return r
}
