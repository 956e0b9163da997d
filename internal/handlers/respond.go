// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the mailcraft JSON API: account endpoints,
// owner-scoped email templates and header image uploads.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// maxJSONBody caps request bodies for JSON endpoints. Content is limited to
// 100k characters, so 1 MiB leaves room for escaping.
const maxJSONBody = 1 << 20

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// writeJSON serialises data as the response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

// writeError sends the standard error body. details lists individual
// violations and may be empty.
func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	if details == nil {
		details = []string{}
	}
	writeJSON(w, status, errorResponse{Message: message, Errors: details})
}

// serverError logs err and sends a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "method", r.Method, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON reads a size-limited JSON body into dst. On failure it writes
// a 400 or 413 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "Request body is empty")
	default:
		writeError(w, http.StatusBadRequest, "Request body is not valid JSON")
	}
	return false
}
