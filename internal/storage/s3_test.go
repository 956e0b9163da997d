// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestNewUnconfigured(t *testing.T) {
	c, err := New("", "fsn1", "", "", "images", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Error("expected nil client without endpoint or credentials")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New("https://s3.example.com", "fsn1", "ak", "sk", "", ""); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestFileURLAndExtractKey(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		wantURL   string
	}{
		{"path style", "", "https://s3.example.com/images/header/a.png"},
		{"cdn", "https://cdn.example.com/", "https://cdn.example.com/header/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New("https://s3.example.com/", "fsn1", "ak", "sk", "images", tt.publicURL)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			url := c.FileURL("header/a.png")
			if url != tt.wantURL {
				t.Errorf("FileURL = %q, want %q", url, tt.wantURL)
			}

			key, ok := c.ExtractKey(url)
			if !ok || key != "header/a.png" {
				t.Errorf("ExtractKey(%q) = %q, %v", url, key, ok)
			}

			if _, ok := c.ExtractKey("https://elsewhere.example.com/a.png"); ok {
				t.Error("ExtractKey accepted a foreign URL")
			}
		})
	}
}

func TestUploadAndDelete(t *testing.T) {
	type call struct {
		method, path, contentType, acl string
		body                           []byte
	}
	var (
		mu    sync.Mutex
		calls []call
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, call{r.Method, r.URL.Path, r.Header.Get("Content-Type"), r.Header.Get("X-Amz-Acl"), body})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "us-east-1", "ak", "sk", "images", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := []byte("png-bytes")
	if err := c.Upload(context.Background(), "header/a.png", "image/png", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := c.Delete(context.Background(), "header/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("got %d requests, want 2", len(calls))
	}
	put := calls[0]
	if put.method != http.MethodPut || put.path != "/images/header/a.png" {
		t.Errorf("upload request: %s %s", put.method, put.path)
	}
	if put.contentType != "image/png" {
		t.Errorf("content type: %q", put.contentType)
	}
	if put.acl != "public-read" {
		t.Errorf("acl: %q", put.acl)
	}
	if !bytes.Equal(put.body, data) {
		t.Errorf("body: %q", put.body)
	}
	if calls[1].method != http.MethodDelete || calls[1].path != "/images/header/a.png" {
		t.Errorf("delete request: %s %s", calls[1].method, calls[1].path)
	}
}
