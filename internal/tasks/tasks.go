package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/services"
	"github.com/hardbound/stacks/internal/shared"
	"golang.org/x/time/rate"
)

// SyncPhase identifies the stage a running sync is in.
type SyncPhase int

const (
	FetchCatalog SyncPhase = iota
	FetchStats
	PersistSnapshot
)

// ProgressUpdate is sent through the progress channel as a sync advances.
type ProgressUpdate struct {
	Phase   SyncPhase
	Step    int
	Total   int
	Message string
}

// SnapshotStore is the persistence surface the engine writes snapshots to.
// Satisfied by [repositories.SnapshotRepository].
type SnapshotStore interface {
	Create(snapshot *models.CatalogSnapshot) error
	Latest(kind string) (*models.CatalogSnapshot, error)
}

// SyncOpts contains configuration for a catalog sync.
type SyncOpts struct {
	RateLimit float64 // Requests per second (default: 5)
}

// SyncEngine coordinates catalog snapshot refreshes.
type SyncEngine struct {
	library   services.Service
	snapshots SnapshotStore
}

// NewSyncEngine creates a sync engine with the provided dependencies.
func NewSyncEngine(library services.Service, snapshots SnapshotStore) *SyncEngine {
	return &SyncEngine{library: library, snapshots: snapshots}
}

// Latest returns the most recent persisted catalog snapshot, or nil when none exists.
func (e *SyncEngine) Latest() (*models.CatalogSnapshot, error) {
	if e.snapshots == nil {
		return nil, fmt.Errorf("%w: snapshot store not initialized", shared.ErrServiceUnavailable)
	}
	return e.snapshots.Latest(models.SnapshotKindCatalog)
}

// Run fetches the catalog and persists it as a new snapshot.
//
// The three listing calls run concurrently behind one rate limiter. Progress
// updates are best-effort: a full channel never blocks the sync.
func (e *SyncEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, opts SyncOpts) (*models.CatalogSnapshot, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}
	if e.snapshots == nil {
		return nil, fmt.Errorf("%w: snapshot store not initialized", shared.ErrServiceUnavailable)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	var (
		catalog models.Catalog
		mu      sync.Mutex
		wg      sync.WaitGroup
		errs    []error
	)

	fetch := func(step int, message string, fn func(context.Context) error) {
		defer wg.Done()

		if err := limiter.Wait(ctx); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			return
		}

		e.sendProgress(prog, ProgressUpdate{Phase: FetchCatalog, Step: step, Total: 3, Message: message})

		if err := fn(ctx); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}

	wg.Add(3)
	go fetch(1, "fetching books", func(ctx context.Context) error {
		books, err := e.library.ListBooks(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to fetch books: %w", err)
		}
		mu.Lock()
		catalog.Books = books
		mu.Unlock()
		return nil
	})
	go fetch(2, "fetching authors", func(ctx context.Context) error {
		authors, err := e.library.ListAuthors(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch authors: %w", err)
		}
		mu.Lock()
		catalog.Authors = authors
		mu.Unlock()
		return nil
	})
	go fetch(3, "fetching loans", func(ctx context.Context) error {
		loans, err := e.library.ListLoans(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to fetch loans: %w", err)
		}
		mu.Lock()
		catalog.Loans = loans
		mu.Unlock()
		return nil
	})
	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}

	now := time.Now()
	payload := models.SnapshotPayload{
		Catalog:   catalog,
		FetchedAt: now,
	}

	e.sendProgress(prog, ProgressUpdate{Phase: FetchStats, Message: "fetching stats"})

	// The live stats include counts the catalog listings can't derive (total
	// members); fall back to derived numbers when the endpoint is missing.
	if stats, err := e.library.Stats(ctx); err == nil {
		payload.Stats = *stats
	} else {
		payload.Stats = catalog.Stats(now)
	}

	e.sendProgress(prog, ProgressUpdate{Phase: PersistSnapshot, Message: "saving snapshot"})

	snapshot := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, payload)
	if err := e.snapshots.Create(snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	return snapshot, nil
}

// sendProgress delivers an update without blocking when nobody is listening.
func (e *SyncEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
