// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes and request helpers shared by
// the handler tests.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mailcraft/internal/middleware"
	"mailcraft/internal/models"
	"mailcraft/internal/render"
	"mailcraft/internal/session"
	"mailcraft/internal/store"
)

// memUsers is an in-memory UserRepository. Passwords are stored as-is.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	seq   int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}}
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *memUsers) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	if u, _ := m.FindByEmail(ctx, email); u != nil {
		return nil, store.ErrEmailTaken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	u := &models.User{
		ID:           fmt.Sprintf("user-%d", m.seq),
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: password,
	}
	m.users[u.ID] = u
	c := *u
	return &c, nil
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	return u.PasswordHash == password
}

// memSessions implements both the middleware's SessionGetter and SessionStore.
type memSessions struct {
	mu     sync.Mutex
	tokens map[string]*session.Data
	seq    int
}

func newMemSessions() *memSessions {
	return &memSessions{tokens: map[string]*session.Data{}}
}

func (m *memSessions) Create(_ context.Context, data *session.Data) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	token := fmt.Sprintf("tok-%d", m.seq)
	c := *data
	m.tokens[token] = &c
	return token, nil
}

func (m *memSessions) Get(_ context.Context, token string) (*session.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[token], nil
}

func (m *memSessions) Destroy(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

// memTemplates is an in-memory TemplateRepository.
type memTemplates struct {
	mu   sync.Mutex
	docs map[string]models.TemplateDocument
	seq  int
	err  error
}

func newMemTemplates() *memTemplates {
	return &memTemplates{docs: map[string]models.TemplateDocument{}}
}

func (m *memTemplates) ListByOwner(_ context.Context, userID string) ([]models.TemplateDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.TemplateDocument{}
	for _, d := range m.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(*out[j].CreatedAt) })
	return out, nil
}

func (m *memTemplates) FindByID(_ context.Context, userID, id string) (*models.TemplateDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return &d, nil
}

func (m *memTemplates) Create(_ context.Context, userID string, doc models.TemplateDocument) (*models.TemplateDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.seq++
	ts := time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	doc.ID = fmt.Sprintf("tmpl-%d", m.seq)
	doc.UserID = userID
	doc.CreatedAt = &ts
	doc.UpdatedAt = &ts
	m.docs[doc.ID] = doc
	return &doc, nil
}

func (m *memTemplates) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// memCache is an in-memory RenderCache that counts operations.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	sets        int
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, id string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[id]
	return v, ok
}

func (c *memCache) Set(_ context.Context, id string, html []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[id] = html
}

func (c *memCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
}

// memStorage is an in-memory ObjectStorage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStorage) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memStorage) FileURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (s *memStorage) ExtractKey(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, "https://cdn.example.com/")
	return key, ok && key != ""
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

// doJSON performs a request against h with an optional JSON body and
// bearer token.
func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// decodeBody unmarshals the recorder body into v.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
}

// decodeError unmarshals an error body.
func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	decodeBody(t, rr, &e)
	return e
}

// testEnv wires the handlers to in-memory fakes behind a chi router laid
// out like the real API.
type testEnv struct {
	users     *memUsers
	sessions  *memSessions
	templates *memTemplates
	cache     *memCache
	storage   *memStorage
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	env := &testEnv{
		users:     newMemUsers(),
		sessions:  newMemSessions(),
		templates: newMemTemplates(),
		cache:     newMemCache(),
		storage:   newMemStorage(),
	}

	auth := NewAuth(env.users, env.sessions)
	tmpl := NewTemplates(env.templates, renderer, env.cache, env.storage)
	media := NewMedia(env.storage, 1<<20)

	r := chi.NewRouter()
	r.Post("/auth/register", auth.Register)
	r.Post("/auth/login", auth.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireBearer(env.sessions))
		r.Get("/auth/me", auth.Me)
		r.Post("/auth/logout", auth.Logout)
		r.Get("/templates", tmpl.List)
		r.Post("/template", tmpl.Create)
		r.Get("/template/{id}", tmpl.Get)
		r.Get("/template/{id}/render", tmpl.Render)
		r.Get("/template/{id}/download", tmpl.Download)
		r.Delete("/email/template/{id}", tmpl.Delete)
		r.Post("/email/upload-image", media.UploadImage)
	})
	env.handler = r
	return env
}

// signUp registers a user and returns its token and id.
func (e *testEnv) signUp(t *testing.T, email string) (token, userID string) {
	t.Helper()
	rr := doJSON(t, e.handler, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Test", "email": email, "password": "Secret1",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, rr.Code, rr.Body.String())
	}
	var resp models.AuthResponse
	decodeBody(t, rr, &resp)
	return resp.Token, resp.User.ID
}
