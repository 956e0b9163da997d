// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns a stored template document into standalone email
// HTML. Each layout is parsed together with a shared base document so the
// doctype, head and footer stay identical across layouts.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"mailcraft/internal/models"
)

//go:embed templates/email/*.html
var emailFS embed.FS

// ErrUnknownLayout is returned when a document names a layout with no template.
var ErrUnknownLayout = errors.New("unknown layout")

// Renderer executes the embedded email layouts.
type Renderer struct {
	layouts map[models.Layout]*template.Template
}

// view is the data handed to a layout.
type view struct {
	Name   string
	Config models.TemplateConfig
	Styles models.Styles
}

var funcMap = template.FuncMap{
	// lines splits content on newlines so layouts can emit one <br> per break.
	"lines": func(s string) []string {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return strings.Split(s, "\n")
	},
}

// New parses every known layout paired with the base document.
func New() (*Renderer, error) {
	r := &Renderer{layouts: make(map[models.Layout]*template.Template)}

	for _, layout := range models.Layouts {
		name := string(layout) + ".html"
		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			emailFS, "templates/email/base.html", "templates/email/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", name, err)
		}
		r.layouts[layout] = tmpl
	}

	return r, nil
}

// Render writes the HTML for doc to w. Unset styling falls back to defaults.
func (r *Renderer) Render(w io.Writer, doc models.TemplateDocument) error {
	layout := doc.Layout
	if layout == "" {
		layout = models.LayoutDefault
	}
	tmpl, ok := r.layouts[layout]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayout, doc.Layout)
	}

	v := view{
		Name:   doc.Name,
		Config: doc.Config,
		Styles: doc.Config.Styles.WithDefaults(),
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", v); err != nil {
		return fmt.Errorf("execute layout %s: %w", layout, err)
	}
	return nil
}

// Bytes renders doc into a byte slice.
func (r *Renderer) Bytes(doc models.TemplateDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
