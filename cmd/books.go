package main

import (
	"context"
	"fmt"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

// BooksList lists catalog books, optionally filtered by a search query.
func (r *Runner) BooksList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	books, err := r.library.ListBooks(callCtx, cmd.String("search"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(books, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d books:\n\n", len(books))
	for i, b := range books {
		r.writePlain("%d. %s\n", i+1, b.Title)
		r.writePlain("   ID: %s\n", b.ID)
		if b.AuthorName != "" {
			r.writePlain("   Author: %s\n", b.AuthorName)
		}
		if b.Genre != "" {
			r.writePlain("   Genre: %s\n", b.Genre)
		}
		r.writePlain("   Copies: %d/%d available\n\n", b.CopiesAvailable, b.CopiesTotal)
	}

	return nil
}

// BooksGet shows a single book.
func (r *Runner) BooksGet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: book id is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	book, err := r.library.GetBook(callCtx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(book, cmd.Bool("pretty"))
	}

	r.writePlain("Title: %s\n", book.Title)
	r.writePlain("Author: %s\n", book.AuthorName)
	if book.ISBN != "" {
		r.writePlain("ISBN: %s\n", book.ISBN)
	}
	if book.Genre != "" {
		r.writePlain("Genre: %s\n", book.Genre)
	}
	if book.PublishedYear != 0 {
		r.writePlain("Published: %d\n", book.PublishedYear)
	}
	r.writePlain("Copies: %d/%d available\n", book.CopiesAvailable, book.CopiesTotal)
	return nil
}

// BooksAdd adds a book to the catalog.
func (r *Runner) BooksAdd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	book := models.Book{
		Title:         cmd.String("title"),
		AuthorID:      cmd.String("author-id"),
		ISBN:          cmd.String("isbn"),
		Genre:         cmd.String("genre"),
		PublishedYear: cmd.Int("year"),
		CopiesTotal:   cmd.Int("copies"),
	}
	if err := book.Validate(); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	created, err := r.library.CreateBook(callCtx, book)
	if err != nil {
		return err
	}

	r.logger.Infof("book created: %v", created.ID)
	r.writePlain("✓ Added %q (%s)\n", created.Title, created.ID)
	return nil
}

// BooksUpdate applies the provided flags on top of the stored book.
func (r *Runner) BooksUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	book, err := r.library.GetBook(callCtx, cmd.String("id"))
	if err != nil {
		return err
	}

	if v := cmd.String("title"); v != "" {
		book.Title = v
	}
	if v := cmd.String("author-id"); v != "" {
		book.AuthorID = v
	}
	if v := cmd.String("isbn"); v != "" {
		book.ISBN = v
	}
	if v := cmd.String("genre"); v != "" {
		book.Genre = v
	}
	if v := cmd.Int("year"); v != 0 {
		book.PublishedYear = v
	}
	if v := cmd.Int("copies"); v != 0 {
		book.CopiesTotal = v
	}

	updated, err := r.library.UpdateBook(callCtx, *book)
	if err != nil {
		return err
	}

	r.writePlain("✓ Updated %q\n", updated.Title)
	return nil
}

// BooksDelete removes a book from the catalog.
func (r *Runner) BooksDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: book id is required", shared.ErrMissingArgument)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	if err := r.library.DeleteBook(callCtx, id); err != nil {
		return err
	}

	r.writePlain("✓ Deleted book %s\n", id)
	return nil
}
