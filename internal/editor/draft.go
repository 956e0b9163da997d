// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"errors"
	"fmt"
	"strings"

	"mailcraft/internal/models"
	"mailcraft/internal/validate"
)

var (
	// ErrUnknownField is returned by UpdateField for a path it does not know.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when a styling value is outside its domain.
	ErrInvalidValue = errors.New("invalid value")
)

// Field paths accepted by UpdateField.
const (
	FieldName            = "name"
	FieldLayout          = "layout"
	FieldTitle           = "config.title"
	FieldContent         = "config.content"
	FieldImageURL        = "config.imageUrl"
	FieldFooter          = "config.footer"
	FieldTitleColor      = "config.styles.titleColor"
	FieldContentColor    = "config.styles.contentColor"
	FieldBackgroundColor = "config.styles.backgroundColor"
	FieldFontSize        = "config.styles.fontSize"
)

// Fields lists every path UpdateField accepts, in form order.
var Fields = []string{
	FieldName, FieldLayout,
	FieldTitle, FieldContent, FieldImageURL, FieldFooter,
	FieldTitleColor, FieldContentColor, FieldBackgroundColor, FieldFontSize,
}

// Draft is an unsaved template document. It holds only value fields, so
// copying a Draft never aliases the original.
type Draft struct {
	Name   string
	Layout models.Layout
	Config models.TemplateConfig
}

// NewDraft returns a draft filled with the fixed defaults. The defaults
// always pass validate.TemplateConfig.
func NewDraft() Draft {
	return Draft{
		Name:   models.DefaultName,
		Layout: models.LayoutDefault,
		Config: models.TemplateConfig{
			Title:   models.DefaultTitle,
			Content: models.DefaultContent,
			Footer:  models.DefaultFooter,
			Styles:  models.DefaultStyles(),
		},
	}
}

// UpdateField returns a copy of d with the field at path set to value.
// d itself is never modified.
func UpdateField(d Draft, path, value string) (Draft, error) {
	switch path {
	case FieldName:
		d.Name = value
	case FieldLayout:
		l := models.Layout(value)
		if value != "" && !l.Valid() {
			return d, fmt.Errorf("%w: layout %q", ErrInvalidValue, value)
		}
		d.Layout = l
	case FieldTitle:
		d.Config.Title = value
	case FieldContent:
		d.Config.Content = value
	case FieldImageURL:
		d.Config.ImageURL = value
	case FieldFooter:
		d.Config.Footer = value
	case FieldTitleColor, FieldContentColor, FieldBackgroundColor:
		if value != "" && !validate.HexColor(value) {
			return d, fmt.Errorf("%w: %s must be a hex color, got %q", ErrInvalidValue, path, value)
		}
		switch path {
		case FieldTitleColor:
			d.Config.Styles.TitleColor = value
		case FieldContentColor:
			d.Config.Styles.ContentColor = value
		default:
			d.Config.Styles.BackgroundColor = value
		}
	case FieldFontSize:
		fs, ok := models.ParseFontSize(value)
		if !ok {
			return d, fmt.Errorf("%w: font size %q (want small, medium or large)", ErrInvalidValue, value)
		}
		d.Config.Styles.FontSize = fs
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	return d, nil
}

// Violations runs the template rules over the draft: the name check and
// every config check.
func (d Draft) Violations() []validate.Violation {
	return validate.Template(models.TemplateDocument{Name: d.Name, Layout: d.Layout, Config: d.Config})
}

// Document converts the draft into the payload sent to the store: required
// text trimmed, the layout and unset styling filled with defaults.
func (d Draft) Document() models.TemplateDocument {
	cfg := d.Config
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.Content = strings.TrimSpace(cfg.Content)
	cfg.Footer = strings.TrimSpace(cfg.Footer)
	cfg.ImageURL = strings.TrimSpace(cfg.ImageURL)
	cfg.Styles = cfg.Styles.WithDefaults()

	layout := d.Layout
	if layout == "" {
		layout = models.LayoutDefault
	}

	return models.TemplateDocument{
		Name:   strings.TrimSpace(d.Name),
		Layout: layout,
		Config: cfg,
	}
}

// FromDocument starts a draft from an existing document's content. Store
// identity is dropped; saving it creates a new template.
func FromDocument(doc models.TemplateDocument) Draft {
	return Draft{Name: doc.Name, Layout: doc.Layout, Config: doc.Config}
}
