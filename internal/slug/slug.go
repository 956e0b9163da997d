// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns template names into safe download filenames.
package slug

import (
	"regexp"
	"strings"
)

// maxLength caps a slug so filenames stay portable.
const maxLength = 80

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of spaces, tabs and newlines.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a lowercase, hyphenated slug from s.
// Example: "Spring Sale: 20% off!" → "spring-sale-20-off"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > maxLength {
		result = strings.TrimRight(result[:maxLength], "-")
	}
	return result
}

// Filename returns the attachment name for a rendered template: the slugged
// name with an .html extension, or "template-<id>.html" when the name has
// nothing sluggable in it.
func Filename(name, id string) string {
	if s := Generate(name); s != "" {
		return s + ".html"
	}
	return "template-" + id + ".html"
}
