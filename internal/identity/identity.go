// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity tracks who is signed in on the client. It owns the
// current user and drives the credential slot through login, signup,
// bootstrap and logout.
//
// States: Unauthenticated -> Checking -> {Authenticated, Unauthenticated}.
// A token rejected by the server is discarded; a transport failure keeps it
// so the caller can retry later.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"mailcraft/internal/apiclient"
	"mailcraft/internal/credential"
	"mailcraft/internal/models"
	"mailcraft/internal/validate"
)

// State is the authentication state of the session.
type State int

const (
	Unauthenticated State = iota
	Checking
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Remote is the subset of the API client the session needs.
type Remote interface {
	Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// Session holds the current identity. It is safe for concurrent use.
type Session struct {
	remote Remote
	slot   credential.Slot
	logger *slog.Logger

	mu    sync.RWMutex
	state State
	user  *models.User
}

// New creates an unauthenticated session. slot must be the same slot the
// remote client reads its token from.
func New(remote Remote, slot credential.Slot) *Session {
	return &Session{
		remote: remote,
		slot:   slot,
		logger: slog.Default(),
		state:  Unauthenticated,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Bootstrap resolves the identity behind a stored credential. With no
// stored credential it settles on Unauthenticated without a network call.
func (s *Session) Bootstrap(ctx context.Context) error {
	token := s.slot.Token()
	if token == "" {
		s.set(Unauthenticated, nil)
		return nil
	}

	s.set(Checking, nil)

	user, err := s.remote.Me(ctx)
	if err == nil {
		s.set(Authenticated, user)
		s.logger.Info("session restored", "user_id", user.ID)
		return nil
	}

	s.set(Unauthenticated, nil)

	if errors.Is(err, apiclient.ErrSessionExpired) {
		if _, cerr := s.slot.ClearIf(token); cerr != nil {
			s.logger.Warn("failed to discard rejected credential", "error", cerr)
		}
		s.logger.Info("stored credential rejected, signed out")
		return nil
	}

	// Transport or server trouble: keep the credential for a later retry.
	s.logger.Warn("session bootstrap failed, credential kept", "error", err)
	return classify(err)
}

// Login exchanges email and password for a credential. On failure nothing
// changes.
func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)

	var violations []string
	if email == "" {
		violations = append(violations, "Email is required")
	}
	if password == "" {
		violations = append(violations, "Password is required")
	}
	if len(violations) > 0 {
		return &Error{Kind: KindValidationFailed, Violations: violations}
	}

	resp, err := s.remote.Login(ctx, email, password)
	if err != nil {
		return classify(err)
	}
	return s.establish(resp)
}

// SignUp registers an account and signs it in. The form is validated
// locally first; violations fail without a network call.
func (s *Session) SignUp(ctx context.Context, name, email, password string) error {
	if v := validate.Signup(name, email, password); len(v) > 0 {
		return &Error{Kind: KindValidationFailed, Violations: v}
	}

	resp, err := s.remote.Register(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	if err != nil {
		return classify(err)
	}
	return s.establish(resp)
}

// Logout discards the credential and the identity. It always succeeds.
func (s *Session) Logout() {
	if err := s.slot.Clear(); err != nil {
		s.logger.Warn("failed to clear credential on logout", "error", err)
	}
	s.set(Unauthenticated, nil)
}

func (s *Session) establish(resp *models.AuthResponse) error {
	if resp == nil || resp.Token == "" {
		return &Error{Kind: KindServer, Err: errors.New("response carried no token")}
	}
	if err := s.slot.Set(resp.Token); err != nil {
		return &Error{Kind: KindServer, Err: fmt.Errorf("store credential: %w", err)}
	}
	user := resp.User
	s.set(Authenticated, &user)
	s.logger.Info("signed in", "user_id", user.ID)
	return nil
}

func (s *Session) set(state State, user *models.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}
