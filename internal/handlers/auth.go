// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mailcraft/internal/middleware"
	"mailcraft/internal/models"
	"mailcraft/internal/session"
	"mailcraft/internal/store"
	"mailcraft/internal/validate"
)

// UserRepository is the user persistence the auth handlers need.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, name, email, password string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// SessionStore issues and revokes bearer tokens.
type SessionStore interface {
	Create(ctx context.Context, data *session.Data) (string, error)
	Destroy(ctx context.Context, token string) error
}

// Auth groups all account-related HTTP handlers.
type Auth struct {
	users    UserRepository
	sessions SessionStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(users UserRepository, sessions SessionStore) *Auth {
	return &Auth{users: users, sessions: sessions}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User models.User `json:"user"`
}

// Register creates an account and signs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if v := validate.Signup(req.Name, req.Email, req.Password); len(v) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", v...)
		return
	}

	user, err := a.users.Create(r.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "Email is already registered", "Email is already registered")
		return
	}
	if err != nil {
		serverError(w, r, "register failed", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	a.issueToken(w, r, user, http.StatusCreated)
}

// Login exchanges email and password for a bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var missing []string
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "Email is required")
	}
	if req.Password == "" {
		missing = append(missing, "Password is required")
	}
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", missing...)
		return
	}

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		serverError(w, r, "login lookup failed", err)
		return
	}

	if user == nil || !a.users.CheckPassword(user, req.Password) {
		slog.Info("login rejected", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	a.issueToken(w, r, user, http.StatusOK)
}

// Me returns the identity behind the bearer token. A token whose user no
// longer exists is treated as expired.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		serverError(w, r, "me lookup failed", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Session expired")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: *user})
}

// Logout revokes the bearer token that authenticated the request.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromCtx(r.Context())
	if err := a.sessions.Destroy(r.Context(), token); err != nil {
		serverError(w, r, "logout failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Auth) issueToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, err := a.sessions.Create(r.Context(), &session.Data{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		serverError(w, r, "session create failed", err)
		return
	}

	writeJSON(w, status, models.AuthResponse{Token: token, User: *user})
}
