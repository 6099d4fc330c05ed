package main

import (
	"net/http"

	"cinecove/internal/auth"
	"cinecove/internal/logging"
	"cinecove/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *Application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", app.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	requireAdmin := auth.RequireAdmin(app.Store)

	r.Route("/api", func(r chi.Router) {
		r.Route("/media", func(r chi.Router) {
			r.Get("/", app.listMediaHandler)
			r.Post("/", app.createMediaHandler)
			r.Get("/{id}", app.getMediaHandler)
			r.Patch("/{id}", app.updateMediaHandler)
			r.Put("/{id}", app.updateMediaHandler)
			r.Delete("/{id}", app.deleteMediaHandler)
		})

		r.Get("/stats", app.statsHandler)

		r.Route("/search", func(r chi.Router) {
			r.Get("/tmdb", app.searchTMDBHandler)
			r.Get("/jikan", app.searchJikanHandler)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.registerHandler)
			r.Post("/login", app.loginHandler)
			r.With(app.Tokens.Middleware).Get("/me", app.meHandler)
		})

		// Site content is public to read; writes need an admin identity.
		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", app.listAnnouncementsHandler)
			r.With(app.Tokens.Middleware, requireAdmin).Post("/", app.createAnnouncementHandler)
			r.With(app.Tokens.Middleware, requireAdmin).Delete("/{id}", app.deleteAnnouncementHandler)
		})
		r.Route("/upcoming", func(r chi.Router) {
			r.Get("/", app.listUpcomingHandler)
			r.With(app.Tokens.Middleware, requireAdmin).Post("/", app.createUpcomingHandler)
			r.With(app.Tokens.Middleware, requireAdmin).Delete("/{id}", app.deleteUpcomingHandler)
		})
		r.Route("/admin-picks", func(r chi.Router) {
			r.Get("/", app.listAdminPicksHandler)
			r.With(app.Tokens.Middleware, requireAdmin).Post("/", app.createAdminPickHandler)
			r.With(app.Tokens.Middleware, requireAdmin).Delete("/{id}", app.deleteAdminPickHandler)
		})
	})

	return r
}
