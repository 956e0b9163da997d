// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mailcraft/internal/models"
)

// ErrNotFound is returned when a row is absent or owned by someone else.
var ErrNotFound = errors.New("not found")

// TemplateStore handles email template persistence. Every query is scoped
// to the owning user.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, user_id, name, layout, config, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*models.TemplateDocument, error) {
	var (
		d                models.TemplateDocument
		raw              []byte
		created, updated time.Time
	)
	if err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Layout, &raw, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &d.Config); err != nil {
		return nil, fmt.Errorf("decode template config %s: %w", d.ID, err)
	}
	d.CreatedAt = &created
	d.UpdatedAt = &updated
	return &d, nil
}

// ListByOwner returns the user's templates, newest first.
func (s *TemplateStore) ListByOwner(ctx context.Context, userID string) ([]models.TemplateDocument, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []models.TemplateDocument{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.TemplateDocument{}
	for rows.Next() {
		d, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *d)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template owned by userID. Returns nil if absent,
// owned by another user, or if id is not a UUID.
func (s *TemplateStore) FindByID(ctx context.Context, userID, id string) (*models.TemplateDocument, error) {
	tid, err1 := uuid.Parse(id)
	uid, err2 := uuid.Parse(userID)
	if err1 != nil || err2 != nil {
		return nil, nil
	}

	d, err := scanTemplate(s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates WHERE id = $1 AND user_id = $2
	`, tid, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return d, nil
}

// Create persists doc for userID and returns the stored document with its
// id, owner and timestamps assigned. Any id on doc is ignored.
func (s *TemplateStore) Create(ctx context.Context, userID string, doc models.TemplateDocument) (*models.TemplateDocument, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("create template: invalid owner %q", userID)
	}

	raw, err := json.Marshal(doc.Config)
	if err != nil {
		return nil, fmt.Errorf("encode template config: %w", err)
	}

	d, err := scanTemplate(s.db.QueryRowContext(ctx, `
		INSERT INTO email_templates (id, user_id, name, layout, config)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+templateColumns+`
	`, uuid.New(), uid, doc.Name, doc.Layout, raw))
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return d, nil
}

// Delete removes a template owned by userID. Returns ErrNotFound when no
// such template exists for that user.
func (s *TemplateStore) Delete(ctx context.Context, userID, id string) error {
	tid, err1 := uuid.Parse(id)
	uid, err2 := uuid.Parse(userID)
	if err1 != nil || err2 != nil {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM email_templates WHERE id = $1 AND user_id = $2
	`, tid, uid)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
