// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Layout names a server-side rendering layout.
type Layout string

const (
	LayoutDefault Layout = "default-layout"
	LayoutPlain   Layout = "plain-layout"
)

// Layouts lists every layout the renderer knows about.
var Layouts = []Layout{LayoutDefault, LayoutPlain}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	for _, known := range Layouts {
		if l == known {
			return true
		}
	}
	return false
}

// FontSize is the title font size. Only the three enumerated values are
// ever stored.
type FontSize string

const (
	FontSizeSmall  FontSize = "14px"
	FontSizeMedium FontSize = "16px"
	FontSizeLarge  FontSize = "20px"
)

// ParseFontSize accepts either the pixel value or its name
// (small, medium, large).
func ParseFontSize(s string) (FontSize, bool) {
	switch s {
	case "14px", "small":
		return FontSizeSmall, true
	case "16px", "medium":
		return FontSizeMedium, true
	case "20px", "large":
		return FontSizeLarge, true
	}
	return "", false
}

// Valid reports whether f is one of the enumerated sizes.
func (f FontSize) Valid() bool {
	return f == FontSizeSmall || f == FontSizeMedium || f == FontSizeLarge
}

// Styles holds the color and typography settings of a template.
type Styles struct {
	TitleColor      string   `json:"titleColor"`
	ContentColor    string   `json:"contentColor"`
	BackgroundColor string   `json:"backgroundColor"`
	FontSize        FontSize `json:"fontSize"`
}

// TemplateConfig is the structured content of an email template.
// Content is an opaque text blob; newlines are significant.
type TemplateConfig struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	Footer   string `json:"footer"`
	Styles   Styles `json:"styles"`
}

// TemplateDocument is an email template. ID, UserID and the timestamps are
// assigned by the store and are empty on an unsaved draft.
type TemplateDocument struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Layout    Layout         `json:"layout"`
	Config    TemplateConfig `json:"config"`
	UserID    string         `json:"userId,omitempty"`
	CreatedAt *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// IsPersisted reports whether the document carries store-assigned identity.
func (d *TemplateDocument) IsPersisted() bool {
	return d.ID != "" && d.CreatedAt != nil && d.UserID != ""
}

// Default values for a new draft and for styling left unset on save.
const (
	DefaultName            = "Untitled Template"
	DefaultTitle           = "Welcome to our Newsletter"
	DefaultContent         = "This is the main content of your email."
	DefaultFooter          = "© 2024 Your Company"
	DefaultTitleColor      = "#000000"
	DefaultContentColor    = "#333333"
	DefaultBackgroundColor = "#ffffff"
	DefaultFontSize        = FontSizeMedium
)

// DefaultStyles returns the styling used when nothing else is chosen.
func DefaultStyles() Styles {
	return Styles{
		TitleColor:      DefaultTitleColor,
		ContentColor:    DefaultContentColor,
		BackgroundColor: DefaultBackgroundColor,
		FontSize:        DefaultFontSize,
	}
}

// WithDefaults returns a copy of s with every empty field set to its
// default value.
func (s Styles) WithDefaults() Styles {
	def := DefaultStyles()
	if s.TitleColor == "" {
		s.TitleColor = def.TitleColor
	}
	if s.ContentColor == "" {
		s.ContentColor = def.ContentColor
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = def.BackgroundColor
	}
	if s.FontSize == "" {
		s.FontSize = def.FontSize
	}
	return s
}
