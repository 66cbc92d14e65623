package repositories_test

import (
	"testing"
	"time"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogPayload(titles ...string) models.SnapshotPayload {
	books := make([]models.Book, 0, len(titles))
	for _, title := range titles {
		books = append(books, models.Book{ID: "b-" + title, Title: title, AuthorID: "a-1"})
	}
	return models.SnapshotPayload{
		Catalog:   models.Catalog{Books: books},
		Stats:     models.Stats{TotalBooks: len(books)},
		FetchedAt: time.Now(),
	}
}

func TestSnapshotRepository(t *testing.T) {
	t.Run("Create assigns an id and Get round-trips the payload", func(t *testing.T) {
		repo := repositories.NewSnapshotRepository(testDB(t))

		snapshot := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Dune"))
		require.NoError(t, repo.Create(snapshot))
		require.NotEmpty(t, snapshot.ID())

		got, err := repo.Get(snapshot.ID())
		require.NoError(t, err)

		payload := got.Payload()
		require.Len(t, payload.Catalog.Books, 1)
		assert.Equal(t, "Dune", payload.Catalog.Books[0].Title)
		assert.Equal(t, 1, payload.Stats.TotalBooks)
	})

	t.Run("Create writes the assigned sequence back to the model", func(t *testing.T) {
		repo := repositories.NewSnapshotRepository(testDB(t))

		first := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Dune"))
		require.NoError(t, repo.Create(first))
		assert.Equal(t, 1, first.Sequence())

		second := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Hyperion"))
		require.NoError(t, repo.Create(second))
		assert.Equal(t, 2, second.Sequence())

		// The persisted row agrees with what the model reports.
		got, err := repo.Get(second.ID())
		require.NoError(t, err)
		assert.Equal(t, second.Sequence(), got.Sequence())
	})

	t.Run("Get of a missing id fails", func(t *testing.T) {
		repo := repositories.NewSnapshotRepository(testDB(t))

		_, err := repo.Get("nope")
		assert.Error(t, err)
	})

	t.Run("Latest returns the highest sequence and nil when empty", func(t *testing.T) {
		repo := repositories.NewSnapshotRepository(testDB(t))

		latest, err := repo.Latest(models.SnapshotKindCatalog)
		require.NoError(t, err)
		assert.Nil(t, latest)

		first := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Dune"))
		require.NoError(t, repo.Create(first))

		second := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Dune", "Hyperion"))
		require.NoError(t, repo.Create(second))

		latest, err = repo.Latest(models.SnapshotKindCatalog)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, second.ID(), latest.ID())
		assert.Len(t, latest.Payload().Catalog.Books, 2)
	})

	t.Run("Delete soft-deletes and hides the snapshot", func(t *testing.T) {
		repo := repositories.NewSnapshotRepository(testDB(t))

		snapshot := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Dune"))
		require.NoError(t, repo.Create(snapshot))

		require.NoError(t, repo.Delete(snapshot.ID()))

		_, err := repo.Get(snapshot.ID())
		assert.Error(t, err)

		latest, err := repo.Latest(models.SnapshotKindCatalog)
		require.NoError(t, err)
		assert.Nil(t, latest)

		// Already deleted.
		assert.Error(t, repo.Delete(snapshot.ID()))
	})

	t.Run("Update rewrites the payload", func(t *testing.T) {
		repo := repositories.NewSnapshotRepository(testDB(t))

		snapshot := models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Dune"))
		require.NoError(t, repo.Create(snapshot))

		snapshot.SetPayload(catalogPayload("Dune", "Hyperion", "Foundation"))
		require.NoError(t, repo.Update(snapshot))

		got, err := repo.Get(snapshot.ID())
		require.NoError(t, err)
		assert.Len(t, got.Payload().Catalog.Books, 3)
	})

	t.Run("List filters by kind", func(t *testing.T) {
		repo := repositories.NewSnapshotRepository(testDB(t))

		require.NoError(t, repo.Create(models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Dune"))))
		require.NoError(t, repo.Create(models.NewCatalogSnapshot(0, models.SnapshotKindCatalog, catalogPayload("Hyperion"))))

		all, err := repo.List(map[string]any{"kind": models.SnapshotKindCatalog})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		none, err := repo.List(map[string]any{"kind": "loans"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
