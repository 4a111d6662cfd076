package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kotoba/internal/api"
	apiMiddleware "kotoba/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	setHandler := api.NewSetHandler(app.content, app.manager, app.logger)
	sessionHandler := api.NewSessionHandler(app.manager, app.content, app.logger)
	quizHandler := api.NewQuizHandler(app.manager, app.content, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sets", setHandler.ListSets)
		r.Delete("/sessions", sessionHandler.ClearAllSessions)

		r.Route("/sets/{level}/{name}", func(r chi.Router) {
			r.Get("/cards", setHandler.ListCards)

			r.Post("/session", sessionHandler.GetOrCreateSession)
			r.Put("/session/progress", sessionHandler.UpdateProgress)
			r.Delete("/session", sessionHandler.ClearSession)

			r.Post("/order", sessionHandler.SaveOrder)
			r.Get("/order", sessionHandler.LoadOrder)

			r.Post("/quiz", quizHandler.Generate)
			r.Post("/quiz/answer", quizHandler.Answer)
			r.Post("/quiz/advance", quizHandler.Advance)
			r.Post("/quiz/restart", quizHandler.Restart)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
