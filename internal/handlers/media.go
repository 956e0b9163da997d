// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"mailcraft/internal/imaging"
	"mailcraft/internal/middleware"
)

// imageField is the multipart field carrying the upload.
const imageField = "image"

// multipartOverhead is allowed on top of the image ceiling for boundaries
// and part headers.
const multipartOverhead = 64 << 10

// allowedImageTypes lists the sniffed types accepted as header images.
// SVG is excluded because it can carry script.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStorage stores public objects.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// Media handles header image uploads.
type Media struct {
	storage  ObjectStorage
	maxBytes int64
}

// NewMedia creates the media handler. storage may be nil, in which case
// uploads answer 503.
func NewMedia(storage ObjectStorage, maxBytes int64) *Media {
	return &Media{storage: storage, maxBytes: maxBytes}
}

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// UploadImage accepts one image in the "image" multipart field, sniffs its
// real type, downscales it if it is wider than the email column and stores
// it publicly.
func (m *Media) UploadImage(w http.ResponseWriter, r *http.Request) {
	if m.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, m.maxBytes+multipartOverhead)

	data, err := m.readImagePart(r)
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errTooLarge), errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Image must be at most %d bytes", m.maxBytes))
		return
	case errors.Is(err, errNoImage):
		writeError(w, http.StatusBadRequest, "An image file is required", "Field \"image\" is missing or empty")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Upload must be multipart/form-data")
		return
	}

	detected := mimetype.Detect(data).String()
	if _, ok := allowedImageTypes[detected]; !ok {
		writeError(w, http.StatusBadRequest, "File is not a supported image",
			fmt.Sprintf("Detected type %s; allowed: JPEG, PNG, GIF, WebP", detected))
		return
	}

	img, err := imaging.Normalize(data, detected, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image could not be decoded")
		return
	}

	key := headerImagePrefix(sess.UserID) + uuid.NewString() + allowedImageTypes[img.ContentType]
	if err := m.storage.Upload(r.Context(), key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		serverError(w, r, "image upload failed", err)
		return
	}

	slog.Info("header image uploaded",
		"user_id", sess.UserID,
		"key", key,
		"bytes", len(img.Data),
		"resized", img.Resized,
	)
	writeJSON(w, http.StatusCreated, uploadResponse{ImageURL: m.storage.FileURL(key)})
}

// headerImagePrefix is the storage key prefix under which a user's
// uploads live.
func headerImagePrefix(userID string) string {
	return "header-images/" + userID + "/"
}

var (
	errNoImage  = errors.New("no image part")
	errTooLarge = errors.New("image too large")
)

// readImagePart streams the multipart body and returns the bytes of the
// image field, reading at most maxBytes+1 to detect oversize uploads.
func (m *Media) readImagePart(r *http.Request) ([]byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoImage
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != imageField {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, m.maxBytes+1))
		part.Close()
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > m.maxBytes {
			return nil, errTooLarge
		}
		if len(data) == 0 {
			return nil, errNoImage
		}
		return data, nil
	}
}
