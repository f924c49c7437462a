package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API routes onto a chi router.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/auth/login", s.handleLogin)
		r.Get("/cases", s.handleListCases)
		r.Post("/cases/{caseID}/start/{userID}", s.handleStartCase)
		r.Post("/cases/{caseID}/chat/{userID}", s.handleChat)
		r.Post("/cases/{caseID}/complete/{userID}", s.handleCompleteCase)
		r.Get("/summary/{userID}", s.handleFinalSummary)
		r.Post("/survey/submit/{userID}", s.handleSubmitSurvey)
		r.Get("/next-case/{userID}", s.handleNextCase)
	})

	return r
}
