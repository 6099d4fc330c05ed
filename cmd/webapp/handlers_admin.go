package main

import (
	"context"
	"net/http"

	"cinecove/internal/auth"
	"cinecove/internal/core/models"
	"cinecove/internal/core/validation"
)

// adminUserID is the id of the admin loaded by auth.RequireAdmin.
func adminUserID(r *http.Request) int64 {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return 0
}

// deleteContent runs del and answers {"success": true} or 404.
func (app *Application) deleteContent(w http.ResponseWriter, r *http.Request, del func(context.Context, int64) (bool, error), notFound, failed string) {
	id, ok := parseID(r)
	if !ok {
		app.errorJSON(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	deleted, err := del(r.Context(), id)
	if err != nil {
		app.storeError(w, r, err, notFound, failed)
		return
	}
	if !deleted {
		app.writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": notFound})
		return
	}
	app.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Announcements

func (app *Application) listAnnouncementsHandler(w http.ResponseWriter, r *http.Request) {
	announcements, err := app.Store.ListAnnouncements(r.Context())
	if err != nil {
		app.serverError(w, r, err, "Failed to fetch announcements")
		return
	}
	if announcements == nil {
		announcements = []models.Announcement{}
	}
	app.writeJSON(w, http.StatusOK, announcements)
}

func (app *Application) createAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAnnouncementRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.badRequest(w, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		app.badRequest(w, err)
		return
	}

	announcement, err := app.Store.CreateAnnouncement(r.Context(), models.Announcement{
		Title:   req.Title,
		Content: req.Content,
		UserID:  adminUserID(r),
	})
	if err != nil {
		app.storeError(w, r, err, "Announcement not found", "Failed to create announcement")
		return
	}
	app.writeJSON(w, http.StatusCreated, announcement)
}

func (app *Application) deleteAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	app.deleteContent(w, r, app.Store.DeleteAnnouncement, "Announcement not found", "Failed to delete announcement")
}

// Upcoming releases

func (app *Application) listUpcomingHandler(w http.ResponseWriter, r *http.Request) {
	releases, err := app.Store.ListUpcomingReleases(r.Context())
	if err != nil {
		app.serverError(w, r, err, "Failed to fetch upcoming releases")
		return
	}
	if releases == nil {
		releases = []models.UpcomingRelease{}
	}
	app.writeJSON(w, http.StatusOK, releases)
}

func (app *Application) createUpcomingHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUpcomingReleaseRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.badRequest(w, err)
		return
	}
	req.Normalize()
	if err := validation.ValidateStruct(req); err != nil {
		app.badRequest(w, err)
		return
	}

	release, err := app.Store.CreateUpcomingRelease(r.Context(), req.UpcomingRelease(adminUserID(r)))
	if err != nil {
		app.storeError(w, r, err, "Upcoming release not found", "Failed to create upcoming release")
		return
	}
	app.writeJSON(w, http.StatusCreated, release)
}

func (app *Application) deleteUpcomingHandler(w http.ResponseWriter, r *http.Request) {
	app.deleteContent(w, r, app.Store.DeleteUpcomingRelease, "Upcoming release not found", "Failed to delete upcoming release")
}

// Admin picks

func (app *Application) listAdminPicksHandler(w http.ResponseWriter, r *http.Request) {
	picks, err := app.Store.ListAdminPicks(r.Context())
	if err != nil {
		app.serverError(w, r, err, "Failed to fetch admin picks")
		return
	}
	if picks == nil {
		picks = []models.AdminPick{}
	}
	app.writeJSON(w, http.StatusOK, picks)
}

// createAdminPickHandler snapshots an existing media item when mediaItemId is
// given, and otherwise takes the descriptive fields from the body.
func (app *Application) createAdminPickHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAdminPickRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.badRequest(w, err)
		return
	}

	var pick models.AdminPick
	if req.MediaItemID != nil {
		item, err := app.Store.GetMediaItem(r.Context(), *req.MediaItemID)
		if err != nil {
			app.storeError(w, r, err, "Media item not found", "Failed to create admin pick")
			return
		}
		pick = models.PickFromMediaItem(*item, req.Featured())
	} else {
		req.Normalize()
		if err := validation.ValidateStruct(req.AdminPickFields); err != nil {
			app.badRequest(w, err)
			return
		}
		pick = req.AdminPick()
	}

	created, err := app.Store.CreateAdminPick(r.Context(), pick)
	if err != nil {
		app.storeError(w, r, err, "Admin pick not found", "Failed to create admin pick")
		return
	}
	app.writeJSON(w, http.StatusCreated, created)
}

func (app *Application) deleteAdminPickHandler(w http.ResponseWriter, r *http.Request) {
	app.deleteContent(w, r, app.Store.DeleteAdminPick, "Admin pick not found", "Failed to delete admin pick")
}
