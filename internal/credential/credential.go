// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package credential holds the bearer token used by the API client.
// A Slot is read before every outgoing request, written on login or signup
// and cleared on logout or when the server rejects the token.
package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Slot is a process-wide holder for a single bearer token.
// All implementations are safe for concurrent use.
type Slot interface {
	// Token returns the stored token, or "" when none is stored.
	Token() string
	// Set replaces the stored token.
	Set(token string) error
	// Clear removes the stored token.
	Clear() error
	// ClearIf removes the stored token only if it still equals token.
	// It reports whether the slot was cleared.
	ClearIf(token string) (bool, error)
}

// Memory is an in-process Slot.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns a Slot pre-loaded with token (which may be empty).
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Memory) Set(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear() error {
	return m.Set("")
}

func (m *Memory) ClearIf(token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" || m.token != token {
		return false, nil
	}
	m.token = ""
	return true, nil
}

// File is a Slot persisted to a single file so a later process can resume
// the session. The file is written with 0600 permissions.
type File struct {
	mu   sync.Mutex
	path string
	mem  Memory
}

// OpenFile loads the token stored at path. A missing file is an empty slot.
func OpenFile(path string) (*File, error) {
	f := &File{path: path}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credential read %s: %w", path, err)
	}

	f.mem.token = strings.TrimSpace(string(b))
	return f, nil
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

func (f *File) Token() string {
	return f.mem.Token()
}

func (f *File) Set(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("credential mkdir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("credential write %s: %w", f.path, err)
	}
	return f.mem.Set(token)
}

func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearLocked()
}

func (f *File) ClearIf(token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if token == "" || f.mem.Token() != token {
		return false, nil
	}
	if err := f.clearLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (f *File) clearLocked() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credential remove %s: %w", f.path, err)
	}
	return f.mem.Clear()
}
