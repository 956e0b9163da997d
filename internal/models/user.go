// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures shared by the mailcraft server
// and its API client: users and email template documents.
package models

import "time"

// User is the identity of an account holder. The JSON shape is what the
// API returns from /auth/login, /auth/register and /auth/me.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// AuthResponse is returned by the register and login endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
