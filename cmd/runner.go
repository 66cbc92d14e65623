package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hardbound/stacks/internal/repositories"
	"github.com/hardbound/stacks/internal/services"
	"github.com/hardbound/stacks/internal/session"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/hardbound/stacks/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	library    services.Service
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Library    services.Service
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		library:    opts.Library,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

// SetLogger swaps the runner's logger, used by the TUI to redirect logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// database lazily opens the local database holding the keystore and snapshot cache.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// sessionStore builds a session store backed by the local keystore.
func (r *Runner) sessionStore() (*session.Store, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	return session.NewStore(session.StoreOpts{
		Auth:     r.library,
		Keystore: repositories.NewSlotRepository(db),
		Timeout:  r.callTimeout(),
		Logger:   r.logger,
	}), nil
}

// requireSession restores the persisted session and fails when nobody is
// signed in. On success the library service holds the bearer token.
func (r *Runner) requireSession(ctx context.Context) (*session.Store, error) {
	store, err := r.sessionStore()
	if err != nil {
		return nil, err
	}

	store.Bootstrap(ctx)
	if !store.Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	return store, nil
}

// syncEngine builds the catalog snapshot engine.
func (r *Runner) syncEngine() (*tasks.SyncEngine, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return tasks.NewSyncEngine(r.library, repositories.NewSnapshotRepository(db)), nil
}

func (r *Runner) callTimeout() time.Duration {
	if r.config.API.TimeoutSeconds <= 0 {
		return session.DefaultTimeout
	}
	return time.Duration(r.config.API.TimeoutSeconds) * time.Second
}

// callCtx bounds a single remote call with the configured timeout.
func (r *Runner) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.callTimeout())
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
