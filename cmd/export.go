package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hardbound/stacks/internal/formatter"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/hardbound/stacks/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ExportSync refreshes the local catalog snapshot from the backend.
func (r *Runner) ExportSync(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	engine, err := r.syncEngine()
	if err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step)
		}
	}()

	snapshot, err := engine.Run(ctx, prog, tasks.SyncOpts{RateLimit: r.config.API.RateLimit})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	payload := snapshot.Payload()

	r.writePlainln("✓ Catalog synced")
	r.writePlain("  Books: %d  Authors: %d  Loans: %d\n",
		len(payload.Catalog.Books), len(payload.Catalog.Authors), len(payload.Catalog.Loans))
	return nil
}

// ExportCatalog writes the last synced snapshot in the requested format.
func (r *Runner) ExportCatalog(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	outputPath := cmd.String("output")

	engine, err := r.syncEngine()
	if err != nil {
		return err
	}

	snapshot, err := engine.Latest()
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("%w: no snapshot found, run `stacks export sync` first", shared.ErrInvalidArgument)
	}

	payload := snapshot.Payload()

	var data []byte
	switch format {
	case "json":
		data, err = formatter.CatalogToJSON(&payload)
	case "csv":
		data, err = formatter.BooksToCSV(payload.Catalog.Books)
	case "markdown", "md":
		data, err = formatter.CatalogToMarkdown(&payload)
	case "txt", "text":
		data, err = formatter.CatalogToText(&payload)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to format catalog: %w", err)
	}

	if outputPath == "" {
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.writePlain("✓ Catalog exported to %s\n", outputPath)
	return nil
}
