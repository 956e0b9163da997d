// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mailcraft/internal/identity"
)

func (a *app) signupCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			if err := a.session.SignUp(cmd.Context(), name, email, password); err != nil {
				return describeIdentityError("sign up", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s\n", a.session.User().Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return describeIdentityError("log in", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", a.session.User().Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.client.Credentials().Token() != "" {
				// Server-side revoke is best effort; the local token goes regardless.
				if err := a.client.Logout(cmd.Context()); err != nil {
					a.logger.Warn("server logout failed", "error", err)
				}
			}
			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Bootstrap(cmd.Context()); err != nil {
				return describeIdentityError("restore session", err)
			}
			if a.session.State() != identity.Authenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			u := a.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
}

// requireSession restores the stored session and fails when there is none.
func (a *app) requireSession(ctx context.Context) error {
	if err := a.session.Bootstrap(ctx); err != nil {
		return describeIdentityError("restore session", err)
	}
	if a.session.State() != identity.Authenticated {
		return errors.New("not logged in (run mailcraftctl login)")
	}
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// describeIdentityError turns an identity failure into a message a person
// can act on.
func describeIdentityError(op string, err error) error {
	var ie *identity.Error
	if !errors.As(err, &ie) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch ie.Kind {
	case identity.KindInvalidCredentials:
		return fmt.Errorf("%s: invalid email or password", op)
	case identity.KindValidationFailed:
		return fmt.Errorf("%s:\n  %s", op, strings.Join(ie.Violations, "\n  "))
	case identity.KindNetwork:
		return fmt.Errorf("%s: server unreachable: %w", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
