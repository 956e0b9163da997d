// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package collection is the logic behind the saved-templates view: listing,
// deleting and fetching rendered HTML. Listings are always cold reads; after
// a mutation the whole list is fetched again rather than patched locally.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mailcraft/internal/apiclient"
	"mailcraft/internal/models"
)

var (
	// ErrNotFound is returned when the referenced template does not exist.
	ErrNotFound = errors.New("template not found")
	// ErrRefresh is returned by Remove when the delete succeeded but the
	// listing could not be fetched afterwards.
	ErrRefresh = errors.New("listing refresh failed")
)

// Remote is the subset of the API client the view needs.
type Remote interface {
	ListTemplates(ctx context.Context) ([]models.TemplateDocument, error)
	GetTemplate(ctx context.Context, id string) (*models.TemplateDocument, error)
	DeleteTemplate(ctx context.Context, id string) error
	RenderURL(id string) string
	RenderTemplate(ctx context.Context, id string) ([]byte, error)
	DownloadTemplate(ctx context.Context, id string) ([]byte, string, error)
}

// View lists and manages persisted templates.
type View struct {
	remote Remote
	logger *slog.Logger
}

// New creates a view backed by remote.
func New(remote Remote) *View {
	return &View{remote: remote, logger: slog.Default()}
}

// List fetches the templates in the order the store returns them.
func (v *View) List(ctx context.Context) ([]models.TemplateDocument, error) {
	items, err := v.remote.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if items == nil {
		items = []models.TemplateDocument{}
	}
	return items, nil
}

// Get fetches one template.
func (v *View) Get(ctx context.Context, id string) (*models.TemplateDocument, error) {
	doc, err := v.remote.GetTemplate(ctx, id)
	if err != nil {
		return nil, v.wrap("get template", id, err)
	}
	return doc, nil
}

// Remove deletes a template and returns the freshly fetched listing.
// Deleting an absent id fails with ErrNotFound, distinct from transport
// errors. When only the follow-up listing fails the error wraps ErrRefresh
// and the template is gone; retrying the delete would report ErrNotFound.
func (v *View) Remove(ctx context.Context, id string) ([]models.TemplateDocument, error) {
	if err := v.remote.DeleteTemplate(ctx, id); err != nil {
		return nil, v.wrap("delete template", id, err)
	}
	v.logger.Info("template deleted", "id", id)

	items, err := v.List(ctx)
	if err != nil {
		v.logger.Warn("listing refresh after delete failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w after deleting %s: %w", ErrRefresh, id, err)
	}
	return items, nil
}

// RenderURL returns the reference to a template's rendered HTML.
func (v *View) RenderURL(id string) string {
	return v.remote.RenderURL(id)
}

// Render fetches the rendered HTML of a template.
func (v *View) Render(ctx context.Context, id string) ([]byte, error) {
	html, err := v.remote.RenderTemplate(ctx, id)
	if err != nil {
		return nil, v.wrap("render template", id, err)
	}
	return html, nil
}

// Download fetches the rendered HTML together with a suggested filename.
func (v *View) Download(ctx context.Context, id string) ([]byte, string, error) {
	html, name, err := v.remote.DownloadTemplate(ctx, id)
	if err != nil {
		return nil, "", v.wrap("download template", id, err)
	}
	return html, name, nil
}

// wrap adds context and maps the client's not-found class onto ErrNotFound.
func (v *View) wrap(op, id string, err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return fmt.Errorf("%s %s: %w: %w", op, id, ErrNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}
