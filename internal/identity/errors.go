// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package identity

import (
	"errors"
	"fmt"
	"strings"

	"mailcraft/internal/apiclient"
)

// Kind classifies a failed login, signup or bootstrap.
type Kind int

const (
	KindInvalidCredentials Kind = iota + 1
	KindValidationFailed
	KindNetwork
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindValidationFailed:
		return "validation failed"
	case KindNetwork:
		return "network error"
	case KindServer:
		return "server error"
	}
	return "unknown"
}

// Sentinels matching each Kind with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidationFailed   = errors.New("validation failed")
	ErrNetwork            = errors.New("network error")
	ErrServer             = errors.New("server error")
)

// Error is a classified authentication failure.
type Error struct {
	Kind       Kind
	Violations []string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Violations) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Violations, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	out := []error{e.sentinel()}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindValidationFailed:
		return ErrValidationFailed
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrServer
	}
}

// classify turns an API client error into an *Error.
func classify(err error) *Error {
	var apiErr *apiclient.Error
	details := []string(nil)
	if errors.As(err, &apiErr) {
		details = apiErr.Details
	}

	switch {
	case errors.Is(err, apiclient.ErrInvalidCredentials):
		return &Error{Kind: KindInvalidCredentials, Err: err}
	case errors.Is(err, apiclient.ErrValidation):
		return &Error{Kind: KindValidationFailed, Violations: details, Err: err}
	case errors.Is(err, apiclient.ErrNetwork):
		return &Error{Kind: KindNetwork, Err: err}
	default:
		return &Error{Kind: KindServer, Err: err}
	}
}
