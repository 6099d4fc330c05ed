package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"cinecove/internal/core/database"
	"cinecove/internal/core/validation"
	"cinecove/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

var (
	errEmptyBody   = errors.New("request body must not be empty")
	errInvalidBody = errors.New("request body is not valid JSON for this resource")
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Error encoding JSON")
	}
}

func (app *Application) errorJSON(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, map[string]string{"message": message})
}

// serverError logs err with the request id and answers a generic 500.
func (app *Application) serverError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logging.Error().Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(message)
	app.errorJSON(w, http.StatusInternalServerError, message)
}

// storeError maps the database sentinels onto HTTP statuses.
func (app *Application) storeError(w http.ResponseWriter, r *http.Request, err error, notFound, failed string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		app.errorJSON(w, http.StatusNotFound, notFound)
	case errors.Is(err, database.ErrUnsupported):
		app.errorJSON(w, http.StatusNotImplemented, "Not supported by the "+app.Store.Backend()+" storage backend")
	case errors.Is(err, database.ErrConflict):
		app.errorJSON(w, http.StatusConflict, "Record already exists")
	default:
		app.serverError(w, r, err, failed)
	}
}

// badRequest answers 400, listing field errors when err carries them.
func (app *Application) badRequest(w http.ResponseWriter, err error) {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		app.writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid data",
			"errors":  fieldErrs,
		})
	case errors.Is(err, errEmptyBody):
		app.errorJSON(w, http.StatusBadRequest, "Request body must not be empty")
	default:
		app.errorJSON(w, http.StatusBadRequest, "Invalid request body")
	}
}

// readJSON decodes the request body into dst. A type mismatch on a field is
// reported as a validation error on that field.
func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return errEmptyBody
	case errors.As(err, &typeErr) && typeErr.Field != "" && typeErr.Type != nil:
		field := validation.JSONPath(dst, typeErr.Field)
		return validation.Field(field, "type", field+" must be a "+typeErr.Type.String())
	default:
		return errInvalidBody
	}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
