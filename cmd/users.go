package main

import (
	"context"
	"fmt"

	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

// UsersList lists library members. The backend enforces staff-only access.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	users, err := r.library.ListUsers(callCtx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d members:\n\n", len(users))
	for i, u := range users {
		status := "active"
		if !u.Active {
			status = "inactive"
		}
		r.writePlain("%d. %s <%s> [%s, %s]\n", i+1, u.Username, u.Email, u.Role, status)
		r.writePlain("   ID: %s\n", u.ID)
		if u.LoanCount > 0 {
			r.writePlain("   Open loans: %d\n", u.LoanCount)
		}
	}

	return nil
}

// UsersGet shows a single member.
func (r *Runner) UsersGet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: user id is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	user, err := r.library.GetUser(callCtx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlain("Username: %s\n", user.Username)
	r.writePlain("Email: %s\n", user.Email)
	r.writePlain("Role: %s\n", user.Role)
	r.writePlain("Active: %t\n", user.Active)
	if !user.JoinedAt.IsZero() {
		r.writePlain("Joined: %s\n", shared.FormatDate(user.JoinedAt))
	}
	r.writePlain("Open loans: %d\n", user.LoanCount)
	return nil
}

// UsersUpdate changes a member's role or active flag.
func (r *Runner) UsersUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	user, err := r.library.GetUser(callCtx, cmd.String("id"))
	if err != nil {
		return err
	}

	if v := cmd.String("role"); v != "" {
		user.Role = v
	}
	user.Active = cmd.Bool("active")

	updated, err := r.library.UpdateUser(callCtx, *user)
	if err != nil {
		return err
	}

	r.writePlain("✓ Updated %s (role: %s, active: %t)\n", updated.Username, updated.Role, updated.Active)
	return nil
}

// UsersDelete removes a member.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: user id is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	if err := r.library.DeleteUser(callCtx, id); err != nil {
		return err
	}

	r.writePlain("✓ Deleted user %s\n", id)
	return nil
}
