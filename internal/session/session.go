// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed bearer-token sessions.
// A token is an opaque random string sent in the Authorization header; its
// payload is stored as JSON in Valkey with automatic TTL expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a token lives in Valkey before automatic expiry.
	DefaultTTL = 7 * 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// tokenLength is the byte length of the random token (32 bytes = 64 hex chars).
	tokenLength = 32
)

// Data holds the session payload stored in Valkey.
type Data struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages token lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store backed by the given Valkey client. A
// zero ttl selects DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Create issues a new token for data and stores it in Valkey.
func (s *Store) Create(ctx context.Context, data *Data) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	return token, nil
}

// Get returns the session for token, or nil if it is unknown or expired.
func (s *Store) Get(ctx context.Context, token string) (*Data, error) {
	if token == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Destroy revokes token. Unknown tokens are not an error.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// TokenFromRequest extracts the bearer token from the Authorization header.
// Returns "" when the header is missing or uses another scheme.
func TokenFromRequest(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// generateToken creates a cryptographically random token.
func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
