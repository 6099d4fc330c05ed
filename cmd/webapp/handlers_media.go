package main

import (
	"net/http"

	"cinecove/internal/core/database"
	"cinecove/internal/core/models"
	"cinecove/internal/core/validation"
)

// listMediaHandler applies at most one of search, status and type, in that order.
func (app *Application) listMediaHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := database.MediaFilter{
		Status: query.Get("status"),
		Type:   query.Get("type"),
		Search: query.Get("search"),
	}

	items, err := app.Store.ListMediaItems(r.Context(), filter)
	if err != nil {
		app.serverError(w, r, err, "Failed to fetch media items")
		return
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	app.writeJSON(w, http.StatusOK, items)
}

func (app *Application) getMediaHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		app.errorJSON(w, http.StatusBadRequest, "Invalid media item ID")
		return
	}

	item, err := app.Store.GetMediaItem(r.Context(), id)
	if err != nil {
		app.storeError(w, r, err, "Media item not found", "Failed to fetch media item")
		return
	}
	app.writeJSON(w, http.StatusOK, item)
}

func (app *Application) createMediaHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMediaItemRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.badRequest(w, err)
		return
	}
	req.Normalize()
	if err := validation.ValidateStruct(req); err != nil {
		app.badRequest(w, err)
		return
	}

	item, err := app.Store.CreateMediaItem(r.Context(), req.MediaItem())
	if err != nil {
		app.storeError(w, r, err, "Media item not found", "Failed to create media item")
		return
	}
	app.writeJSON(w, http.StatusCreated, item)
}

// updateMediaHandler serves both PATCH and PUT; either way the body is a partial update.
func (app *Application) updateMediaHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		app.errorJSON(w, http.StatusBadRequest, "Invalid media item ID")
		return
	}

	var patch models.MediaItemPatch
	if err := app.readJSON(w, r, &patch); err != nil {
		app.badRequest(w, err)
		return
	}
	patch.Normalize()
	if err := validation.ValidatePatch(patch); err != nil {
		app.badRequest(w, err)
		return
	}

	item, err := app.Store.UpdateMediaItem(r.Context(), id, patch)
	if err != nil {
		app.storeError(w, r, err, "Media item not found", "Failed to update media item")
		return
	}
	app.writeJSON(w, http.StatusOK, item)
}

func (app *Application) deleteMediaHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		app.errorJSON(w, http.StatusBadRequest, "Invalid media item ID")
		return
	}

	deleted, err := app.Store.DeleteMediaItem(r.Context(), id)
	if err != nil {
		app.serverError(w, r, err, "Failed to delete media item")
		return
	}
	if !deleted {
		app.errorJSON(w, http.StatusNotFound, "Media item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
