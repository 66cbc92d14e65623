package main

import (
	"context"
	"fmt"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and persists the session for subsequent commands.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	store, err := r.sessionStore()
	if err != nil {
		return err
	}

	store.Bootstrap(ctx)
	if store.Authenticated() {
		r.writePlain("Already signed in as %s. Run `stacks auth logout` first.\n", store.Principal().Username)
		return nil
	}

	identity, err := store.Login(ctx, cmd.String("username"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, store.LastError())
	}

	r.writePlain("✓ %s\n", store.LastMessage())
	if identity.IsStaff() {
		r.writePlainln("Staff commands (users, loans checkout) are available.")
	}
	return nil
}

// AuthRegister creates an account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	store, err := r.sessionStore()
	if err != nil {
		return err
	}

	store.Bootstrap(ctx)

	reg := models.Registration{
		Username:  cmd.String("username"),
		Email:     cmd.String("email"),
		Password:  cmd.String("password"),
		FirstName: cmd.String("first-name"),
		LastName:  cmd.String("last-name"),
	}

	if _, err := store.Register(ctx, reg); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, store.LastError())
	}

	r.writePlain("✓ %s\n", store.LastMessage())
	return nil
}

// AuthLogout discards the persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.sessionStore()
	if err != nil {
		return err
	}

	store.Bootstrap(ctx)
	if !store.Authenticated() {
		r.writePlainln("Not signed in.")
		return nil
	}

	store.Logout()
	r.writePlain("✓ %s\n", store.LastMessage())
	return nil
}

// AuthWhoami prints the signed-in principal.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	store, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	principal := store.Principal()

	if cmd.Bool("json") {
		return r.writeJSON(principal, cmd.Bool("pretty"))
	}

	r.writePlain("Signed in as: %s\n", principal.DisplayName())
	r.writePlain("  Username: %s\n", principal.Username)
	r.writePlain("  Email: %s\n", principal.Email)
	r.writePlain("  Role: %s\n", principal.Role)
	if !principal.JoinedAt.IsZero() {
		r.writePlain("  Joined: %s\n", shared.FormatDate(principal.JoinedAt))
	}
	return nil
}

// AuthForgot requests a password reset code for an email address.
func (r *Runner) AuthForgot(ctx context.Context, cmd *cli.Command) error {
	store, err := r.sessionStore()
	if err != nil {
		return err
	}

	store.Bootstrap(ctx)
	if err := store.RequestPasswordReset(ctx, cmd.String("email")); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, store.LastError())
	}

	r.writePlain("✓ %s\n", store.LastMessage())
	return nil
}

// AuthReset redeems a reset code for a new password.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	store, err := r.sessionStore()
	if err != nil {
		return err
	}

	store.Bootstrap(ctx)
	if err := store.ResetPassword(ctx, cmd.String("email"), cmd.String("code"), cmd.String("password")); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, store.LastError())
	}

	r.writePlain("✓ %s\n", store.LastMessage())
	return nil
}
