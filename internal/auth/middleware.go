package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cinecove/internal/core/database"
	"cinecove/internal/core/models"
	"cinecove/internal/logging"

	"github.com/goccy/go-json"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	userContextKey   contextKey = "user"
)

// UserLookup loads the current record of a user.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Middleware attaches the claims of a valid Bearer token to the request
// context. Requests without a token pass through anonymously; a malformed or
// invalid token is rejected with 401.
func (m *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		claims, err := m.Validate(tokenString)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				writeError(w, http.StatusUnauthorized, "Token expired")
			} else {
				writeError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// UserFromContext returns the user loaded by RequireAdmin.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// RequireAdmin rejects requests without a verified identity (401) or whose
// user is not an admin (403). The user record is re-read on every request so
// a revoked flag takes effect immediately.
func RequireAdmin(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "Unknown user")
					return
				}
				logging.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to load user for admin check")
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !user.IsAdmin {
				writeError(w, http.StatusForbidden, "Admin access required")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
