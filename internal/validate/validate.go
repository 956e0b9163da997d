// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate holds the field rules shared by the API server and the
// client: signup fields and email template documents. Every function is pure
// and reports all violations it finds instead of stopping at the first.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"mailcraft/internal/models"
)

// Violation is a single human-readable validation failure.
type Violation = string

// Validation limits for template fields.
const (
	minPasswordLen = 6
	maxNameLen     = 200
	maxTitleLen    = 300
	maxContentLen  = 100_000
	maxFooterLen   = 1_000
	maxImageURLLen = 2_048
	maxUserNameLen = 100
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Email reports whether s has the local@domain.tld shape with no whitespace.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// HexColor reports whether s is a #rgb or #rrggbb color.
func HexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// Password checks password strength. An empty result means valid.
func Password(s string) []Violation {
	var out []Violation
	if utf8.RuneCountInString(s) < minPasswordLen {
		out = append(out, "Password must be at least 6 characters long")
	}
	if !strings.ContainsFunc(s, isASCIIUpper) {
		out = append(out, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(s, isASCIILower) {
		out = append(out, "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsFunc(s, isASCIIDigit) {
		out = append(out, "Password must contain at least one number")
	}
	return out
}

// Password classes are ASCII only; other scripts' letters and digits
// count towards length but satisfy none of the class rules.
func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

// Signup checks the registration form in name, email, password order.
func Signup(name, email, password string) []Violation {
	var out []Violation

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		out = append(out, "Name is required")
	case utf8.RuneCountInString(name) > maxUserNameLen:
		out = append(out, "Name is too long (max 100 characters)")
	}

	email = strings.TrimSpace(email)
	switch {
	case email == "":
		out = append(out, "Email is required")
	case !Email(email):
		out = append(out, "Email is invalid")
	}

	switch {
	case password == "":
		out = append(out, "Password is required")
	case utf8.RuneCountInString(password) < minPasswordLen:
		out = append(out, "Password must be at least 6 characters long")
	}

	return out
}

// TemplateConfig checks the required text fields of a template config.
// Each of title, content and footer must be non-empty after trimming.
func TemplateConfig(cfg models.TemplateConfig) []Violation {
	var out []Violation
	if strings.TrimSpace(cfg.Title) == "" {
		out = append(out, "Title is required")
	}
	if strings.TrimSpace(cfg.Content) == "" {
		out = append(out, "Content is required")
	}
	if strings.TrimSpace(cfg.Footer) == "" {
		out = append(out, "Footer is required")
	}
	return out
}

// Template checks a whole document before it is persisted: the name, the
// config's required fields, field lengths, the layout and any styling that
// is set. Empty styling fields are allowed; they are filled with defaults.
func Template(doc models.TemplateDocument) []Violation {
	var out []Violation

	name := strings.TrimSpace(doc.Name)
	switch {
	case name == "":
		out = append(out, "Name is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		out = append(out, "Name is too long (max 200 characters)")
	}

	if doc.Layout != "" && !doc.Layout.Valid() {
		out = append(out, "Layout is unknown")
	}

	cfg := doc.Config
	out = append(out, TemplateConfig(cfg)...)

	if utf8.RuneCountInString(cfg.Title) > maxTitleLen {
		out = append(out, "Title is too long (max 300 characters)")
	}
	if utf8.RuneCountInString(cfg.Content) > maxContentLen {
		out = append(out, "Content is too long (max 100,000 characters)")
	}
	if utf8.RuneCountInString(cfg.Footer) > maxFooterLen {
		out = append(out, "Footer is too long (max 1,000 characters)")
	}
	if len(cfg.ImageURL) > maxImageURLLen {
		out = append(out, "Image URL is too long")
	}

	colors := []struct {
		label, value string
	}{
		{"Title color", cfg.Styles.TitleColor},
		{"Content color", cfg.Styles.ContentColor},
		{"Background color", cfg.Styles.BackgroundColor},
	}
	for _, c := range colors {
		if c.value != "" && !HexColor(c.value) {
			out = append(out, c.label+" must be a hex color")
		}
	}
	if fs := cfg.Styles.FontSize; fs != "" && !fs.Valid() {
		out = append(out, "Font size must be one of 14px, 16px, 20px")
	}

	return out
}
