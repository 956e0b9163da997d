// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded header images. Images wider than the
// email content column are scaled down so a single asset renders sharply in
// mail clients without being several megabytes large. Narrower images pass
// through untouched; nothing is ever upscaled.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxHeaderWidth is the widest header image kept as-is, in pixels.
const MaxHeaderWidth = 1200

// jpegQuality is used when a downscaled image is re-encoded as JPEG.
const jpegQuality = 85

// Result is a normalised image ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

// Normalize decodes data and, if it is wider than maxWidth, scales it to
// maxWidth keeping the aspect ratio. A maxWidth of zero selects
// MaxHeaderWidth. PNG and GIF sources are re-encoded as PNG to keep
// transparency; JPEG and WebP sources become JPEG.
func Normalize(data []byte, contentType string, maxWidth int) (*Result, error) {
	if maxWidth <= 0 {
		maxWidth = MaxHeaderWidth
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode config: %w", err)
	}

	if cfg.Width <= maxWidth {
		return &Result{
			Data:        data,
			ContentType: contentType,
			Width:       cfg.Width,
			Height:      cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", format, err)
	}

	height := cfg.Height * maxWidth / cfg.Width
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	outType := "image/jpeg"
	switch format {
	case "png", "gif":
		outType = "image/png"
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", outType, err)
	}

	slog.Debug("header image downscaled",
		"format", format,
		"from_width", cfg.Width,
		"to_width", maxWidth,
		"bytes_in", len(data),
		"bytes_out", buf.Len(),
	)

	return &Result{
		Data:        buf.Bytes(),
		ContentType: outType,
		Width:       maxWidth,
		Height:      height,
		Resized:     true,
	}, nil
}
