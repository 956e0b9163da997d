// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mailcraft/internal/models"
)

// Demo account created by Seed.
const (
	SeedEmail    = "demo@mailcraft.local"
	SeedPassword = "Demo1234"
	SeedName     = "Demo User"
)

// Seed populates an empty database with a demo user owning one sample
// template. It does nothing once any user exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var userID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, SeedName, SeedEmail, string(hash)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	cfg := models.TemplateConfig{
		Title:   "Spring Sale",
		Content: "Everything is 20% off this week.\n\nUse code SPRING at checkout.",
		Footer:  models.DefaultFooter,
		Styles:  models.DefaultStyles(),
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("seed encode config: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO email_templates (id, user_id, name, layout, config)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userID, "Spring Sale Announcement", models.LayoutDefault, raw)
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo user",
		"email", SeedEmail,
		"password", SeedPassword,
	)

	return nil
}
