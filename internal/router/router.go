// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// mailcraft API. Everything except the health check lives under /api and,
// apart from register and login, requires a bearer token.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mailcraft/internal/handlers"
	"mailcraft/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. authLimiter may be nil to disable rate
// limiting on the auth endpoints.
func New(
	sessions middleware.SessionGetter,
	authLimiter *middleware.RateLimiter,
	auth *handlers.Auth,
	templates *handlers.Templates,
	media *handlers.Media,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(notFound)
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Credential exchange, open to anonymous clients.
		r.Group(func(r chi.Router) {
			if authLimiter != nil {
				r.Use(authLimiter.Middleware)
			}
			r.Post("/auth/register", auth.Register)
			r.Post("/auth/login", auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireBearer(sessions))

			r.Get("/auth/me", auth.Me)
			r.Post("/auth/logout", auth.Logout)

			r.Get("/templates", templates.List)
			r.Post("/template", templates.Create)
			r.Get("/template/{id}", templates.Get)

			// Rendered email HTML gets a locked-down CSP.
			r.Group(func(r chi.Router) {
				r.Use(middleware.EmailCSP)
				r.Get("/template/{id}/render", templates.Render)
				r.Get("/template/{id}/download", templates.Download)
			})

			r.Delete("/email/template/{id}", templates.Delete)
			r.Post("/email/upload-image", media.UploadImage)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"Not found"}`)) //nolint:errcheck
}
