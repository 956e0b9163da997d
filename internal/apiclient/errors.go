// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error classes. Every error returned by Client matches exactly one of these
// with errors.Is.
var (
	// ErrNetwork means no response was received. Retrying is safe.
	ErrNetwork = errors.New("network error")
	// ErrInvalidCredentials is a 401 from login or register.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is a 401 on an authenticated request. The stored
	// token has been cleared.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotFound means the referenced resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the server rejected the request payload.
	ErrValidation = errors.New("validation failed")
	// ErrServer covers 5xx and any response the client cannot interpret.
	ErrServer = errors.New("server error")
)

// Error is a classified non-2xx response.
type Error struct {
	Status  int
	Message string
	Details []string
	kind    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return fmt.Sprintf("%s (status %d): %s", e.kind, e.Status, msg)
}

// Unwrap returns the error class so errors.Is works against the sentinels.
func (e *Error) Unwrap() error { return e.kind }

// errorBody is the JSON error shape produced by the server.
type errorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// classify maps an HTTP status to an error class. authEndpoint selects the
// meaning of 401: bad credentials on login/register, an expired session
// everywhere else.
func classify(status int, authEndpoint bool) error {
	switch {
	case status == http.StatusUnauthorized && authEndpoint:
		return ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		return ErrSessionExpired
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusRequestEntityTooLarge,
		status == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}
