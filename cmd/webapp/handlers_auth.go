package main

import (
	"errors"
	"net/http"
	"strings"

	"cinecove/internal/auth"
	"cinecove/internal/core/database"
	"cinecove/internal/core/models"
	"cinecove/internal/core/validation"
)

type authResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	Token    string `json:"token"`
}

func (app *Application) readCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	var creds models.Credentials
	if err := app.readJSON(w, r, &creds); err != nil {
		app.badRequest(w, err)
		return creds, false
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if err := validation.ValidateStruct(creds); err != nil {
		app.badRequest(w, err)
		return creds, false
	}
	return creds, true
}

func (app *Application) issueToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := app.Tokens.Generate(*user)
	if err != nil {
		app.serverError(w, r, err, "Failed to issue token")
		return
	}
	app.writeJSON(w, status, authResponse{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		Token:    token,
	})
}

func (app *Application) registerHandler(w http.ResponseWriter, r *http.Request) {
	creds, ok := app.readCredentials(w, r)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		app.serverError(w, r, err, "Registration failed")
		return
	}

	user, err := app.Store.CreateUser(r.Context(), models.User{Username: creds.Username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			app.errorJSON(w, http.StatusConflict, "Username already taken")
			return
		}
		app.serverError(w, r, err, "Registration failed")
		return
	}
	app.issueToken(w, r, http.StatusCreated, user)
}

func (app *Application) loginHandler(w http.ResponseWriter, r *http.Request) {
	creds, ok := app.readCredentials(w, r)
	if !ok {
		return
	}

	user, err := app.Store.GetUserByUsername(r.Context(), creds.Username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		app.serverError(w, r, err, "Login failed")
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, creds.Password) {
		app.errorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	app.issueToken(w, r, http.StatusOK, user)
}

func (app *Application) meHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		app.errorJSON(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := app.Store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			app.errorJSON(w, http.StatusUnauthorized, "Unknown user")
			return
		}
		app.serverError(w, r, err, "Failed to load user")
		return
	}
	app.writeJSON(w, http.StatusOK, user)
}
