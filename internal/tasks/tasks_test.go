package tasks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/hardbound/stacks/internal/tasks"
	mocks "github.com/hardbound/stacks/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSnapshotStore is an in-memory SnapshotStore double.
type memSnapshotStore struct {
	created []*models.CatalogSnapshot
	fail    bool
}

func (s *memSnapshotStore) Create(snapshot *models.CatalogSnapshot) error {
	if s.fail {
		return errors.New("disk full")
	}
	snapshot.SetID(shared.GenerateID())
	s.created = append(s.created, snapshot)
	return nil
}

func (s *memSnapshotStore) Latest(kind string) (*models.CatalogSnapshot, error) {
	for i := len(s.created) - 1; i >= 0; i-- {
		if s.created[i].Kind() == kind {
			return s.created[i], nil
		}
	}
	return nil, nil
}

func TestSyncEngineRun(t *testing.T) {
	t.Run("persists a snapshot with live stats", func(t *testing.T) {
		svc := &mocks.MockService{
			Books:      []models.Book{{ID: "b-1", Title: "Dune"}},
			Authors:    []models.Author{{ID: "a-1", Name: "Frank Herbert"}},
			Loans:      []models.Loan{{ID: "l-1", BookID: "b-1"}},
			StatsValue: &models.Stats{TotalBooks: 1, TotalAuthors: 1, TotalUsers: 12, ActiveLoans: 1},
		}
		store := &memSnapshotStore{}
		engine := tasks.NewSyncEngine(svc, store)

		snapshot, err := engine.Run(context.Background(), nil, tasks.SyncOpts{})
		require.NoError(t, err)

		require.Len(t, store.created, 1)
		payload := snapshot.Payload()
		assert.Len(t, payload.Catalog.Books, 1)
		assert.Len(t, payload.Catalog.Authors, 1)
		assert.Len(t, payload.Catalog.Loans, 1)
		assert.Equal(t, 12, payload.Stats.TotalUsers, "live stats should be preferred")
		assert.False(t, payload.FetchedAt.IsZero())
	})

	t.Run("reports progress without blocking on a full channel", func(t *testing.T) {
		svc := &mocks.MockService{Books: []models.Book{{ID: "b-1", Title: "Dune"}}}
		engine := tasks.NewSyncEngine(svc, &memSnapshotStore{})

		// Unbuffered channel with no reader; Run must still complete.
		prog := make(chan tasks.ProgressUpdate)
		_, err := engine.Run(context.Background(), prog, tasks.SyncOpts{})
		require.NoError(t, err)
	})

	t.Run("a listing failure aborts the sync", func(t *testing.T) {
		svc := &mocks.MockService{Err: errors.New("backend down")}
		store := &memSnapshotStore{}
		engine := tasks.NewSyncEngine(svc, store)

		_, err := engine.Run(context.Background(), nil, tasks.SyncOpts{})
		require.Error(t, err)
		assert.Empty(t, store.created)
	})

	t.Run("a persistence failure surfaces", func(t *testing.T) {
		svc := &mocks.MockService{Books: []models.Book{{ID: "b-1", Title: "Dune"}}}
		engine := tasks.NewSyncEngine(svc, &memSnapshotStore{fail: true})

		_, err := engine.Run(context.Background(), nil, tasks.SyncOpts{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "persist")
	})

	t.Run("missing dependencies are rejected", func(t *testing.T) {
		_, err := tasks.NewSyncEngine(nil, &memSnapshotStore{}).Run(context.Background(), nil, tasks.SyncOpts{})
		require.ErrorIs(t, err, shared.ErrServiceUnavailable)

		_, err = tasks.NewSyncEngine(&mocks.MockService{}, nil).Run(context.Background(), nil, tasks.SyncOpts{})
		require.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}

func TestSyncEngineLatest(t *testing.T) {
	t.Run("returns nil before the first sync", func(t *testing.T) {
		engine := tasks.NewSyncEngine(&mocks.MockService{}, &memSnapshotStore{})

		snapshot, err := engine.Latest()
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("returns the most recent snapshot after syncs", func(t *testing.T) {
		svc := &mocks.MockService{Books: []models.Book{{ID: "b-1", Title: "Dune"}}}
		store := &memSnapshotStore{}
		engine := tasks.NewSyncEngine(svc, store)

		_, err := engine.Run(context.Background(), nil, tasks.SyncOpts{})
		require.NoError(t, err)

		second, err := engine.Run(context.Background(), nil, tasks.SyncOpts{})
		require.NoError(t, err)

		latest, err := engine.Latest()
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, second.ID(), latest.ID())
	})
}
