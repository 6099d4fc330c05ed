package main

import (
	"net/http"
	"time"

	"cinecove/internal/core/database"
	"cinecove/internal/core/models"
	"cinecove/internal/core/stats"
)

func (app *Application) statsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := app.Store.ListMediaItems(r.Context(), database.MediaFilter{})
	if err != nil {
		app.serverError(w, r, err, "Failed to fetch statistics")
		return
	}
	app.writeJSON(w, http.StatusOK, stats.Compute(items))
}

// searchTMDBHandler searches TV shows for type=tv and movies otherwise.
// Provider failures surface as an empty list.
func (app *Application) searchTMDBHandler(w http.ResponseWriter, r *http.Request) {
	kind := models.MediaTypeMovie
	if r.URL.Query().Get("type") == string(models.MediaTypeTV) {
		kind = models.MediaTypeTV
	}
	results := app.Metadata.Search(r.Context(), r.URL.Query().Get("query"), kind)
	app.writeJSON(w, http.StatusOK, results)
}

func (app *Application) searchJikanHandler(w http.ResponseWriter, r *http.Request) {
	results := app.Metadata.Search(r.Context(), r.URL.Query().Get("query"), models.MediaTypeAnime)
	app.writeJSON(w, http.StatusOK, results)
}

func (app *Application) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := app.Store.Ping(r.Context()); err != nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	app.writeJSON(w, code, map[string]any{
		"status":             status,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"env":                app.Config.AppEnv,
		"backend":            app.Store.Backend(),
		"tmdbConfigured":     app.Metadata.TMDBConfigured(),
		"databaseConfigured": app.Config.DatabaseConfigured(),
	})
}
