package main

import (
	"context"
	"fmt"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthorsList lists catalog authors.
func (r *Runner) AuthorsList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	authors, err := r.library.ListAuthors(callCtx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(authors, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d authors:\n\n", len(authors))
	for i, a := range authors {
		r.writePlain("%d. %s (%s)\n", i+1, a.Name, a.ID)
		if a.BookCount > 0 {
			r.writePlain("   Books: %d\n", a.BookCount)
		}
	}

	return nil
}

// AuthorsGet shows a single author.
func (r *Runner) AuthorsGet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: author id is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	author, err := r.library.GetAuthor(callCtx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(author, cmd.Bool("pretty"))
	}

	r.writePlain("Name: %s\n", author.Name)
	if author.BirthYear != 0 {
		r.writePlain("Born: %d\n", author.BirthYear)
	}
	if author.Bio != "" {
		r.writePlain("Bio: %s\n", author.Bio)
	}
	r.writePlain("Books in catalog: %d\n", author.BookCount)
	return nil
}

// AuthorsAdd adds an author.
func (r *Runner) AuthorsAdd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	author := models.Author{
		Name:      cmd.String("name"),
		Bio:       cmd.String("bio"),
		BirthYear: cmd.Int("birth-year"),
	}
	if err := author.Validate(); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	created, err := r.library.CreateAuthor(callCtx, author)
	if err != nil {
		return err
	}

	r.writePlain("✓ Added %q (%s)\n", created.Name, created.ID)
	return nil
}

// AuthorsUpdate applies the provided flags on top of the stored author.
func (r *Runner) AuthorsUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	author, err := r.library.GetAuthor(callCtx, cmd.String("id"))
	if err != nil {
		return err
	}

	if v := cmd.String("name"); v != "" {
		author.Name = v
	}
	if v := cmd.String("bio"); v != "" {
		author.Bio = v
	}
	if v := cmd.Int("birth-year"); v != 0 {
		author.BirthYear = v
	}

	updated, err := r.library.UpdateAuthor(callCtx, *author)
	if err != nil {
		return err
	}

	r.writePlain("✓ Updated %q\n", updated.Name)
	return nil
}

// AuthorsDelete removes an author.
func (r *Runner) AuthorsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: author id is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	if err := r.library.DeleteAuthor(callCtx, id); err != nil {
		return err
	}

	r.writePlain("✓ Deleted author %s\n", id)
	return nil
}
