// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mailcraft/internal/models"
)

func sampleDocument(name string) models.TemplateDocument {
	return models.TemplateDocument{
		Name:   name,
		Layout: models.LayoutPlain,
		Config: models.TemplateConfig{
			Title:    "Promo",
			Content:  "line one\nline two",
			ImageURL: "https://cdn.example.com/a.png",
			Footer:   "Thanks",
			Styles:   models.DefaultStyles(),
		},
	}
}

func TestTemplateStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "tmpl-owner@store-test.local")
	s := NewTemplateStore(db)
	ctx := context.Background()

	in := sampleDocument("Promo")
	got, err := s.Create(ctx, owner.ID, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !got.IsPersisted() {
		t.Fatal("created template should carry id and timestamps")
	}
	if got.UserID != owner.ID {
		t.Errorf("UserID: got %q, want %q", got.UserID, owner.ID)
	}
	if diff := cmp.Diff(in.Config, got.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	found, err := s.FindByID(ctx, owner.ID, got.ID)
	if err != nil || found == nil {
		t.Fatalf("FindByID: %v, %v", found, err)
	}
	if found.Name != "Promo" || found.Layout != models.LayoutPlain {
		t.Errorf("found: got %q/%q", found.Name, found.Layout)
	}
}

func TestTemplateStoreOwnership(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "tmpl-a@store-test.local")
	other := testUser(t, db, "tmpl-b@store-test.local")
	s := NewTemplateStore(db)
	ctx := context.Background()

	doc, err := s.Create(ctx, owner.ID, sampleDocument("Mine"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := s.FindByID(ctx, other.ID, doc.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Error("another user must not see the template")
	}

	if err := s.Delete(ctx, other.ID, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete by other user: got %v, want ErrNotFound", err)
	}

	list, err := s.ListByOwner(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("other user list: got %d templates, want 0", len(list))
	}
}

func TestTemplateStoreListNewestFirst(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "tmpl-list@store-test.local")
	s := NewTemplateStore(db)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.Create(ctx, owner.ID, sampleDocument(name)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	list, err := s.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len: got %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(*list[i-1].CreatedAt) {
			t.Errorf("list not newest first at %d", i)
		}
	}
}

func TestTemplateStoreDelete(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "tmpl-del@store-test.local")
	s := NewTemplateStore(db)
	ctx := context.Background()

	doc, err := s.Create(ctx, owner.ID, sampleDocument("Doomed"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(ctx, owner.ID, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, owner.ID, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, owner.ID, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(not-a-uuid): got %v, want ErrNotFound", err)
	}
}
