// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the mailcraft API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mailcraft/internal/cache"
	"mailcraft/internal/config"
	"mailcraft/internal/database"
	"mailcraft/internal/handlers"
	"mailcraft/internal/middleware"
	"mailcraft/internal/render"
	"mailcraft/internal/router"
	"mailcraft/internal/session"
	"mailcraft/internal/storage"
	"mailcraft/internal/store"
)

// authRateLimit bounds register and login attempts per client IP.
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"upload_max_bytes", cfg.UploadMaxBytes,
	)

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DSN(), database.DefaultPool)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey holds bearer sessions and rendered email HTML.
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SessionTTL)

	// Layout files may have changed since the last deploy.
	renderCache := cache.NewRenderCache(valkeyClient, cache.DefaultRenderTTL)
	renderCache.InvalidateAll(ctx)

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize email renderer", "error", err)
		os.Exit(1)
	}

	userStore := store.NewUserStore(db)
	templateStore := store.NewTemplateStore(db)

	// S3-compatible object storage is optional; without it uploads answer 503.
	var (
		objectStorage handlers.ObjectStorage
		imageRemover  handlers.ImageRemover
	)
	if cfg.StorageEnabled() {
		client, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if client != nil {
			objectStorage = client
			imageRemover = client
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", client.Bucket())
		}
	} else {
		slog.Warn("s3 storage not configured, header image uploads disabled")
	}

	authLimiter := middleware.NewRateLimiter(authRateLimit, authRateWindow)
	defer authLimiter.Stop()

	authHandlers := handlers.NewAuth(userStore, sessionStore)
	templateHandlers := handlers.NewTemplates(templateStore, renderer, renderCache, imageRemover)
	mediaHandlers := handlers.NewMedia(objectStorage, cfg.UploadMaxBytes)

	r := router.New(sessionStore, authLimiter, authHandlers, templateHandlers, mediaHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger outputs text at debug level in development and JSON otherwise.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
