// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"mailcraft/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
	// TokenKey is the context key for the bearer token that resolved the session.
	TokenKey contextKey = "token"
)

// SessionGetter resolves a bearer token to its session.
type SessionGetter interface {
	Get(ctx context.Context, token string) (*session.Data, error)
}

// RequireBearer rejects requests without a live bearer token with 401 and
// stores the session and token in the request context otherwise. A Valkey
// failure yields 503 so clients do not discard a token that may still be
// valid.
func RequireBearer(store SessionGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				jsonError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			data, err := store.Get(r.Context(), token)
			if err != nil {
				slog.Error("session lookup failed", "error", err, "path", r.URL.Path)
				jsonError(w, http.StatusServiceUnavailable, "Session store unavailable")
				return
			}
			if data == nil {
				jsonError(w, http.StatusUnauthorized, "Session expired")
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, data)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// TokenFromCtx returns the bearer token stored by RequireBearer, or "".
func TokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}
