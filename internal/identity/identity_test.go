// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcraft/internal/apiclient"
	"mailcraft/internal/credential"
	"mailcraft/internal/models"
)

type fakeRemote struct {
	slot credential.Slot

	loginErr    error
	registerErr error
	meErr       error
	user        models.User

	logins, registers, mes int
}

func (f *fakeRemote) Register(_ context.Context, name, email, _ string) (*models.AuthResponse, error) {
	f.registers++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.AuthResponse{Token: "tok-new", User: models.User{ID: "u-2", Name: name, Email: email}}, nil
}

func (f *fakeRemote) Login(_ context.Context, email, _ string) (*models.AuthResponse, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.AuthResponse{Token: "tok-1", User: models.User{ID: "u-1", Email: email}}, nil
}

func (f *fakeRemote) Me(context.Context) (*models.User, error) {
	f.mes++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func apiErr(sentinel error) error {
	return fmt.Errorf("%w: request failed", sentinel)
}

func TestLoginStoresCredential(t *testing.T) {
	slot := credential.NewMemory("")
	remote := &fakeRemote{}
	s := New(remote, slot)

	require.NoError(t, s.Login(context.Background(), " ana@example.com ", "Secret1"))

	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "tok-1", slot.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "ana@example.com", s.User().Email)
}

func TestLoginRejectedLeavesSlotEmpty(t *testing.T) {
	slot := credential.NewMemory("")
	remote := &fakeRemote{loginErr: apiErr(apiclient.ErrInvalidCredentials)}
	s := New(remote, slot)

	err := s.Login(context.Background(), "ana@example.com", "wrong")

	var idErr *Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, KindInvalidCredentials, idErr.Kind)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, slot.Token())
	assert.Equal(t, Unauthenticated, s.State())
	assert.Nil(t, s.User())
}

func TestLoginRequiresFields(t *testing.T) {
	remote := &fakeRemote{}
	s := New(remote, credential.NewMemory(""))

	err := s.Login(context.Background(), "", "")

	var idErr *Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, KindValidationFailed, idErr.Kind)
	assert.Equal(t, []string{"Email is required", "Password is required"}, idErr.Violations)
	assert.Zero(t, remote.logins)
}

func TestLoginErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"network", apiErr(apiclient.ErrNetwork), KindNetwork},
		{"server", apiErr(apiclient.ErrServer), KindServer},
		{"unclassified", errors.New("boom"), KindServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeRemote{loginErr: tt.err}, credential.NewMemory(""))
			err := s.Login(context.Background(), "a@b.co", "x")

			var idErr *Error
			require.ErrorAs(t, err, &idErr)
			assert.Equal(t, tt.want, idErr.Kind)
		})
	}
}

// brokenSlot is a credential slot whose writes fail.
type brokenSlot struct{ credential.Slot }

func (brokenSlot) Set(string) error { return errors.New("read-only file system") }

func TestLoginCredentialWriteFailureIsClassified(t *testing.T) {
	s := New(&fakeRemote{}, brokenSlot{credential.NewMemory("")})

	err := s.Login(context.Background(), "ana@example.com", "Secret1")

	var idErr *Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, KindServer, idErr.Kind)
	assert.ErrorIs(t, err, ErrServer)
	assert.ErrorContains(t, err, "read-only file system")
	assert.Equal(t, Unauthenticated, s.State())
	assert.Nil(t, s.User())
}

func TestSignUpValidatesLocally(t *testing.T) {
	remote := &fakeRemote{}
	s := New(remote, credential.NewMemory(""))

	err := s.SignUp(context.Background(), "", "not-an-email", "123")

	var idErr *Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, KindValidationFailed, idErr.Kind)
	assert.Contains(t, idErr.Violations, "Name is required")
	assert.Contains(t, idErr.Violations, "Email is invalid")
	assert.Contains(t, idErr.Violations, "Password must be at least 6 characters long")
	assert.Zero(t, remote.registers)
}

func TestSignUpSignsIn(t *testing.T) {
	slot := credential.NewMemory("")
	s := New(&fakeRemote{}, slot)

	require.NoError(t, s.SignUp(context.Background(), "Ana", "ana@example.com", "Secret1"))

	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "tok-new", slot.Token())
	assert.Equal(t, "Ana", s.User().Name)
}

func TestBootstrapWithoutCredentialSkipsNetwork(t *testing.T) {
	remote := &fakeRemote{}
	s := New(remote, credential.NewMemory(""))

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.Equal(t, Unauthenticated, s.State())
	assert.Zero(t, remote.mes)
}

func TestBootstrapRestoresUser(t *testing.T) {
	slot := credential.NewMemory("")
	require.NoError(t, slot.Set("tok-1"))
	remote := &fakeRemote{user: models.User{ID: "u-1", Email: "ana@example.com"}}
	s := New(remote, slot)

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "u-1", s.User().ID)
}

func TestBootstrapRejectedTokenIsDiscarded(t *testing.T) {
	slot := credential.NewMemory("")
	require.NoError(t, slot.Set("tok-stale"))
	s := New(&fakeRemote{meErr: apiErr(apiclient.ErrSessionExpired)}, slot)

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.Equal(t, Unauthenticated, s.State())
	assert.Empty(t, slot.Token())
}

func TestBootstrapTransportFailureKeepsToken(t *testing.T) {
	slot := credential.NewMemory("")
	require.NoError(t, slot.Set("tok-1"))
	s := New(&fakeRemote{meErr: apiErr(apiclient.ErrNetwork)}, slot)

	err := s.Bootstrap(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, Unauthenticated, s.State())
	assert.Equal(t, "tok-1", slot.Token())
}

func TestLogoutThenBootstrap(t *testing.T) {
	slot := credential.NewMemory("")
	remote := &fakeRemote{}
	s := New(remote, slot)
	require.NoError(t, s.Login(context.Background(), "ana@example.com", "Secret1"))

	s.Logout()
	require.NoError(t, s.Bootstrap(context.Background()))

	assert.Equal(t, Unauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Empty(t, slot.Token())
	assert.Zero(t, remote.mes)
}
