// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"mailcraft/internal/editor"
	"mailcraft/internal/middleware"
	"mailcraft/internal/models"
	"mailcraft/internal/render"
	"mailcraft/internal/slug"
	"mailcraft/internal/store"
	"mailcraft/internal/validate"
)

// TemplateRepository is the owner-scoped template persistence.
type TemplateRepository interface {
	ListByOwner(ctx context.Context, userID string) ([]models.TemplateDocument, error)
	FindByID(ctx context.Context, userID, id string) (*models.TemplateDocument, error)
	Create(ctx context.Context, userID string, doc models.TemplateDocument) (*models.TemplateDocument, error)
	Delete(ctx context.Context, userID, id string) error
}

// RenderCache holds rendered HTML by template id.
type RenderCache interface {
	Get(ctx context.Context, id string) ([]byte, bool)
	Set(ctx context.Context, id string, html []byte)
	Invalidate(ctx context.Context, id string)
}

// ImageRemover deletes uploaded header images by their public URL.
type ImageRemover interface {
	ExtractKey(rawURL string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// Templates groups the email template handlers.
type Templates struct {
	templates TemplateRepository
	renderer  *render.Renderer
	cache     RenderCache  // optional
	images    ImageRemover // optional
	group     singleflight.Group
}

// NewTemplates creates the template handler group. cache and images may
// be nil.
func NewTemplates(templates TemplateRepository, renderer *render.Renderer, cache RenderCache, images ImageRemover) *Templates {
	return &Templates{templates: templates, renderer: renderer, cache: cache, images: images}
}

// List returns the caller's templates, newest first.
func (t *Templates) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	docs, err := t.templates.ListByOwner(r.Context(), sess.UserID)
	if err != nil {
		serverError(w, r, "list templates failed", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Create validates and stores a new template for the caller. Any id,
// owner or timestamps in the body are ignored.
func (t *Templates) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var in models.TemplateDocument
	if !decodeJSON(w, r, &in) {
		return
	}

	// Same normalisation the editor applies before submitting.
	doc := editor.FromDocument(in).Document()
	if v := validate.Template(doc); len(v) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", v...)
		return
	}

	saved, err := t.templates.Create(r.Context(), sess.UserID, doc)
	if err != nil {
		serverError(w, r, "create template failed", err)
		return
	}

	slog.Info("template created", "template_id", saved.ID, "user_id", sess.UserID)
	writeJSON(w, http.StatusCreated, saved)
}

// Get returns one of the caller's templates.
func (t *Templates) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := t.find(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Render serves the template as email HTML.
func (t *Templates) Render(w http.ResponseWriter, r *http.Request) {
	doc, ok := t.find(w, r)
	if !ok {
		return
	}

	html, err := t.html(r.Context(), doc)
	if err != nil {
		serverError(w, r, "render template failed", err)
		return
	}

	writeHTML(w, html)
}

// Download serves the rendered HTML as an attachment named after the template.
func (t *Templates) Download(w http.ResponseWriter, r *http.Request) {
	doc, ok := t.find(w, r)
	if !ok {
		return
	}

	html, err := t.html(r.Context(), doc)
	if err != nil {
		serverError(w, r, "render template failed", err)
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": slug.Filename(doc.Name, doc.ID),
	}))
	writeHTML(w, html)
}

// Delete removes one of the caller's templates, its cached rendering and
// the header image it references when that image lives in our storage.
func (t *Templates) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	doc, ok := t.find(w, r)
	if !ok {
		return
	}

	err := t.templates.Delete(r.Context(), sess.UserID, doc.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	if err != nil {
		serverError(w, r, "delete template failed", err)
		return
	}

	if t.cache != nil {
		t.cache.Invalidate(r.Context(), doc.ID)
	}
	t.removeImage(r.Context(), sess.UserID, doc)

	slog.Info("template deleted", "template_id", doc.ID, "user_id", sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// removeImage deletes the template's header image object when it is one
// of the owner's own uploads and no other template of theirs still uses
// it. Failures are logged only; the template row is already gone.
func (t *Templates) removeImage(ctx context.Context, userID string, doc *models.TemplateDocument) {
	if t.images == nil || doc.Config.ImageURL == "" {
		return
	}
	key, ok := t.images.ExtractKey(doc.Config.ImageURL)
	if !ok || !strings.HasPrefix(key, headerImagePrefix(userID)) {
		return
	}

	remaining, err := t.templates.ListByOwner(ctx, userID)
	if err != nil {
		slog.Warn("keeping header image, could not check other templates", "template_id", doc.ID, "key", key, "error", err)
		return
	}
	for _, other := range remaining {
		if other.ID != doc.ID && other.Config.ImageURL == doc.Config.ImageURL {
			return
		}
	}

	if err := t.images.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete header image", "template_id", doc.ID, "key", key, "error", err)
	}
}

// find loads the {id} template for the caller, answering 404 itself when
// it is absent or owned by someone else.
func (t *Templates) find(w http.ResponseWriter, r *http.Request) (*models.TemplateDocument, bool) {
	sess := middleware.SessionFromCtx(r.Context())

	doc, err := t.templates.FindByID(r.Context(), sess.UserID, chi.URLParam(r, "id"))
	if err != nil {
		serverError(w, r, "find template failed", err)
		return nil, false
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "Template not found")
		return nil, false
	}
	return doc, true
}

// html returns the rendered template, from cache when possible. Concurrent
// renders of the same template share one execution.
func (t *Templates) html(ctx context.Context, doc *models.TemplateDocument) ([]byte, error) {
	if t.cache != nil {
		if html, ok := t.cache.Get(ctx, doc.ID); ok {
			return html, nil
		}
	}

	v, err, _ := t.group.Do(doc.ID, func() (any, error) {
		html, err := t.renderer.Bytes(*doc)
		if err != nil {
			return nil, err
		}
		if t.cache != nil {
			t.cache.Set(ctx, doc.ID, html)
		}
		return html, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(html)))
	w.WriteHeader(http.StatusOK)
	w.Write(html) //nolint:errcheck
}
