package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hongminglow/faithpath-be/internal/auth"
	"github.com/hongminglow/faithpath-be/internal/http/respond"
)

type contextKey string

const contextUserIDKey contextKey = "userID"

// SessionResolver maps a session token to the user it asserts.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (uuid.UUID, bool)
}

// RequireSession rejects requests without a valid session cookie and stores
// the session's user id in the request context.
func RequireSession(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sessions.ResolveSession(r.Context(), auth.SessionToken(r))
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), contextUserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the user id stored by RequireSession.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(contextUserIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
