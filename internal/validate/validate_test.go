// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package validate

import (
	"strings"
	"testing"

	"mailcraft/internal/models"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.com", true},
		{"first.last@mail.example.org", true},
		{"", false},
		{"plain", false},
		{"a@b", false},
		{"@b.com", false},
		{"a b@c.com", false},
		{"a@b .com", false},
		{"a@@b.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Email(tt.in); got != tt.want {
				t.Errorf("Email(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHexColor(t *testing.T) {
	valid := []string{"#000", "#ffffff", "#A1b2C3"}
	invalid := []string{"", "000000", "#12", "#1234", "#gggggg", "red"}

	for _, c := range valid {
		if !HexColor(c) {
			t.Errorf("HexColor(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if HexColor(c) {
			t.Errorf("HexColor(%q) = true, want false", c)
		}
	}
}

// TestPassword checks that every rule is evaluated independently.
func TestPassword(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		wantCount int
		wantShort bool
	}{
		{"valid minimal", "Abc123", 0, false},
		{"valid long", "CorrectHorse9", 0, false},
		{"short but complete", "Ab1", 1, true},
		{"empty", "", 4, true},
		{"lowercase only", "abcdefg", 2, false},
		{"digits only short", "12345", 3, true},
		{"no digit", "Abcdefg", 1, false},
		{"arabic-indic digits", "Abcd\u0661\u0662", 1, false},
		{"accented letters only", "\u00c9\u00e9\u00c9\u00e9\u00c9\u00e9", 3, false},
		{"ascii classes among others", "\u00c9A\u00e9b3\u00fc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Password(tt.password)
			if len(got) != tt.wantCount {
				t.Fatalf("Password(%q) = %v, want %d violations", tt.password, got, tt.wantCount)
			}
			hasShort := false
			for _, v := range got {
				if strings.Contains(v, "at least 6") {
					hasShort = true
				}
			}
			if hasShort != tt.wantShort {
				t.Errorf("length violation present = %v, want %v", hasShort, tt.wantShort)
			}
		})
	}
}

func TestPasswordShortAlwaysReportsLength(t *testing.T) {
	for _, p := range []string{"A", "Ab", "Ab1", "aB3d", "XyZ12"} {
		got := Password(p)
		if len(got) == 0 || got[0] != "Password must be at least 6 characters long" {
			t.Errorf("Password(%q) = %v, want length violation first", p, got)
		}
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		email    string
		password string
		want     []string
	}{
		{"valid", "Ann", "ann@example.com", "secret", nil},
		{"all missing", "", "", "", []string{"Name is required", "Email is required", "Password is required"}},
		{"whitespace name", "   ", "ann@example.com", "secret", []string{"Name is required"}},
		{"bad email", "Ann", "ann.example.com", "secret", []string{"Email is invalid"}},
		{"short password", "Ann", "ann@example.com", "abc", []string{"Password must be at least 6 characters long"}},
		{"order preserved", "", "nope", "abc", []string{"Name is required", "Email is invalid", "Password must be at least 6 characters long"}},
		{"name too long", strings.Repeat("n", 101), "ann@example.com", "secret", []string{"Name is too long (max 100 characters)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Signup(tt.user, tt.email, tt.password)
			if len(got) != len(tt.want) {
				t.Fatalf("Signup() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("violation[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestTemplateConfig verifies the violations name exactly the empty fields.
func TestTemplateConfig(t *testing.T) {
	blanks := []string{"", " ", "\t\n  "}

	// Every combination of empty fields, with each blank variant.
	for mask := 0; mask < 8; mask++ {
		for _, blank := range blanks {
			cfg := models.TemplateConfig{Title: "T", Content: "C", Footer: "F"}
			var want []string
			if mask&1 != 0 {
				cfg.Title = blank
				want = append(want, "Title is required")
			}
			if mask&2 != 0 {
				cfg.Content = blank
				want = append(want, "Content is required")
			}
			if mask&4 != 0 {
				cfg.Footer = blank
				want = append(want, "Footer is required")
			}

			got := TemplateConfig(cfg)
			if len(got) != len(want) {
				t.Fatalf("mask %03b blank %q: got %v, want %v", mask, blank, got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Errorf("mask %03b: violation[%d] = %q, want %q", mask, i, got[i], want[i])
				}
			}
		}
	}
}

func TestTemplateConfigIgnoresOptionalFields(t *testing.T) {
	cfg := models.TemplateConfig{Title: "T", Content: "C", Footer: "F"}
	if got := TemplateConfig(cfg); len(got) != 0 {
		t.Errorf("empty image and styles should be allowed, got %v", got)
	}
}

func TestTemplate(t *testing.T) {
	valid := models.TemplateDocument{
		Name:   "Promo",
		Layout: models.LayoutDefault,
		Config: models.TemplateConfig{
			Title: "Hi", Content: "Body", Footer: "Bye",
			Styles: models.DefaultStyles(),
		},
	}

	tests := []struct {
		name      string
		mutate    func(d *models.TemplateDocument)
		wantError string
	}{
		{"valid", func(d *models.TemplateDocument) {}, ""},
		{"empty layout allowed", func(d *models.TemplateDocument) { d.Layout = "" }, ""},
		{"empty styles allowed", func(d *models.TemplateDocument) { d.Config.Styles = models.Styles{} }, ""},
		{"missing name", func(d *models.TemplateDocument) { d.Name = "  " }, "Name is required"},
		{"name too long", func(d *models.TemplateDocument) { d.Name = strings.Repeat("a", 201) }, "Name is too long"},
		{"unknown layout", func(d *models.TemplateDocument) { d.Layout = "fancy" }, "Layout is unknown"},
		{"missing title", func(d *models.TemplateDocument) { d.Config.Title = "" }, "Title is required"},
		{"title too long", func(d *models.TemplateDocument) { d.Config.Title = strings.Repeat("a", 301) }, "Title is too long"},
		{"content too long", func(d *models.TemplateDocument) { d.Config.Content = strings.Repeat("a", 100_001) }, "Content is too long"},
		{"footer too long", func(d *models.TemplateDocument) { d.Config.Footer = strings.Repeat("a", 1_001) }, "Footer is too long"},
		{"bad title color", func(d *models.TemplateDocument) { d.Config.Styles.TitleColor = "red" }, "Title color must be a hex color"},
		{"bad background", func(d *models.TemplateDocument) { d.Config.Styles.BackgroundColor = "#12345" }, "Background color must be a hex color"},
		{"bad font size", func(d *models.TemplateDocument) { d.Config.Styles.FontSize = "18px" }, "Font size must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid
			tt.mutate(&doc)
			got := Template(doc)

			if tt.wantError == "" {
				if len(got) != 0 {
					t.Errorf("unexpected violations: %v", got)
				}
				return
			}
			if len(got) != 1 || !strings.HasPrefix(got[0], tt.wantError) {
				t.Errorf("Template() = %v, want single violation starting with %q", got, tt.wantError)
			}
		})
	}
}
