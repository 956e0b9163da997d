// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor holds the in-memory state of one email template draft and
// mediates every mutation and the save to the remote store. It guarantees
// at most one outstanding save per draft.
package editor

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"mailcraft/internal/models"
)

// DefaultMaxImageBytes is the upload ceiling for header images (5 MiB).
const DefaultMaxImageBytes = 5 << 20

// Store persists a template document.
type Store interface {
	CreateTemplate(ctx context.Context, doc *models.TemplateDocument) (*models.TemplateDocument, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, filename string, data []byte, mimeType string) (string, error)
}

// Editor owns one draft. All methods are safe for concurrent use.
type Editor struct {
	store    Store
	uploader ImageUploader
	maxImage int64
	logger   *slog.Logger

	mu       sync.Mutex
	draft    Draft
	saving   bool
	consumed bool
	cancel   context.CancelFunc
	attempt  uint64
}

// Option configures an Editor.
type Option func(*Editor)

// WithMaxImageBytes sets the upload ceiling for AttachImage.
func WithMaxImageBytes(n int64) Option {
	return func(e *Editor) { e.maxImage = n }
}

// WithDraft starts the editor from d instead of the defaults.
func WithDraft(d Draft) Option {
	return func(e *Editor) { e.draft = d }
}

// WithLogger sets the editor's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// New creates an editor holding a fresh default draft.
func New(store Store, uploader ImageUploader, opts ...Option) *Editor {
	e := &Editor{
		store:    store,
		uploader: uploader,
		maxImage: DefaultMaxImageBytes,
		logger:   slog.Default(),
		draft:    NewDraft(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Saving reports whether a save is outstanding.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Consumed reports whether the draft has been saved.
func (e *Editor) Consumed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consumed
}

// Update applies one field change and returns the new draft.
func (e *Editor) Update(path, value string) (Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.consumed {
		return e.draft, ErrConsumed
	}
	next, err := UpdateField(e.draft, path, value)
	if err != nil {
		return e.draft, err
	}
	e.draft = next
	return next, nil
}

// Save validates the draft and submits it to the store.
//
// Violations fail with *ValidationError before any network call. A store
// failure yields *PersistenceError and leaves the draft editable. A second
// call while one is outstanding fails with ErrAlreadyInProgress. On success
// the draft is consumed and the persisted document is returned. An attempt
// released by Abandon that still succeeds returns its document without
// consuming the draft.
func (e *Editor) Save(ctx context.Context) (*models.TemplateDocument, error) {
	e.mu.Lock()
	if e.consumed {
		e.mu.Unlock()
		return nil, ErrConsumed
	}
	if e.saving {
		e.mu.Unlock()
		return nil, ErrAlreadyInProgress
	}
	if v := e.draft.Violations(); len(v) > 0 {
		e.mu.Unlock()
		return nil, &ValidationError{Violations: v}
	}

	doc := e.draft.Document()
	ctx, cancel := context.WithCancel(ctx)
	e.saving = true
	e.cancel = cancel
	e.attempt++
	attempt := e.attempt
	e.mu.Unlock()

	defer cancel()

	saved, err := e.store.CreateTemplate(ctx, &doc)

	e.mu.Lock()
	defer e.mu.Unlock()

	// Abandon may already have released this attempt, in which case a
	// late result must not touch the state of a retry.
	current := e.attempt == attempt
	if current {
		e.saving = false
		e.cancel = nil
	}

	if err != nil {
		e.logger.Warn("template save failed", "name", doc.Name, "error", err)
		return nil, &PersistenceError{Cause: err}
	}

	if !current {
		e.logger.Warn("abandoned save completed", "id", saved.ID, "name", saved.Name)
		return saved, nil
	}
	e.consumed = true
	e.logger.Info("template saved", "id", saved.ID, "name", saved.Name)
	return saved, nil
}

// Abandon cancels an outstanding save and clears the pending flag so an
// explicit retry can proceed. It is a no-op when nothing is pending.
func (e *Editor) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.saving {
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.saving = false
	e.cancel = nil
	e.attempt++
}

// AttachImage uploads an image and points the draft's header at it.
// Non-image content and payloads above the configured ceiling are rejected
// before any request is made.
func (e *Editor) AttachImage(ctx context.Context, filename string, data []byte, mimeType string) (Draft, error) {
	e.mu.Lock()
	if e.consumed {
		d := e.draft
		e.mu.Unlock()
		return d, ErrConsumed
	}
	maxImage := e.maxImage
	e.mu.Unlock()

	if err := checkImage(data, mimeType, maxImage); err != nil {
		return e.Draft(), err
	}

	url, err := e.uploader.UploadImage(ctx, filename, data, mimeType)
	if err != nil {
		e.logger.Warn("image upload failed", "filename", filename, "error", err)
		return e.Draft(), &UploadError{Reason: ReasonTransport, Cause: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.consumed {
		return e.draft, ErrConsumed
	}
	e.draft.Config.ImageURL = url
	return e.draft, nil
}

// checkImage applies the client-side upload policy.
func checkImage(data []byte, mimeType string, maxBytes int64) error {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if !strings.HasPrefix(mt, "image/") {
		return &UploadError{Reason: ReasonNotImage}
	}
	if len(data) == 0 {
		return &UploadError{Reason: ReasonEmpty}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return &UploadError{Reason: ReasonTooLarge}
	}
	return nil
}
