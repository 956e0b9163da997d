// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"errors"
	"fmt"
	"strings"

	"mailcraft/internal/validate"
)

var (
	// ErrAlreadyInProgress is returned by Save while another save of the
	// same draft is outstanding.
	ErrAlreadyInProgress = errors.New("save already in progress")
	// ErrConsumed is returned once the draft has been saved successfully.
	ErrConsumed = errors.New("draft already saved")
)

// ValidationError lists the rule violations that blocked a save. No network
// call was made.
type ValidationError struct {
	Violations []validate.Violation
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// PersistenceError wraps a store or transport failure during save. The
// draft is unchanged and the save may be retried.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save failed: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// Upload failure reasons.
const (
	ReasonNotImage  = "not an image"
	ReasonTooLarge  = "too large"
	ReasonEmpty     = "empty file"
	ReasonTransport = "upload failed"
)

// UploadError reports why an image could not be attached. The draft is
// unchanged.
type UploadError struct {
	Reason string
	Cause  error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("image upload: %s: %v", e.Reason, e.Cause)
	}
	return "image upload: " + e.Reason
}

func (e *UploadError) Unwrap() error { return e.Cause }
