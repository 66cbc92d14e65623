package main

import (
	"context"
	"fmt"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

// Dashboard prints aggregate catalog stats. With --offline it reads the
// last synced snapshot instead of calling the backend.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("offline") {
		return r.dashboardOffline(cmd)
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	stats, err := r.library.Stats(callCtx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.printStats(stats)
	return nil
}

func (r *Runner) dashboardOffline(cmd *cli.Command) error {
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

	if cmd.Bool("json") {
		return r.writeJSON(payload.Stats, cmd.Bool("pretty"))
	}

	r.writePlain("Snapshot from %s\n\n", shared.FormatDate(payload.FetchedAt))
	r.printStats(&payload.Stats)
	return nil
}

func (r *Runner) printStats(stats *models.Stats) {
	r.writePlainln("Library dashboard")
	r.writePlain("  Books:         %d\n", stats.TotalBooks)
	r.writePlain("  Authors:       %d\n", stats.TotalAuthors)
	r.writePlain("  Members:       %d\n", stats.TotalUsers)
	r.writePlain("  Active loans:  %d\n", stats.ActiveLoans)
	r.writePlain("  Overdue loans: %d\n", stats.OverdueLoans)
}
