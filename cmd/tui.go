package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hardbound/stacks/internal/repositories"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/hardbound/stacks/internal/theme"
	"github.com/hardbound/stacks/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.library == nil {
		return fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/stacks-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, err := r.database()
	if err != nil {
		return err
	}
	keys := repositories.NewSlotRepository(db)

	store, err := r.sessionStore()
	if err != nil {
		return err
	}

	themes := theme.NewStore(theme.StoreOpts{
		Keystore: keys,
		Logger:   fileLogger,
	})
	// A theme pinned in config wins over terminal detection, but a choice
	// the user toggled in a previous run wins over both.
	if !themes.Explicit() && r.config.UI.Theme != "" {
		themes.Set(theme.Mode(r.config.UI.Theme))
	}

	model := ui.NewModel(ctx, store, themes, r.library)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
