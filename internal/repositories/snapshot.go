package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
)

// SnapshotRepository implements [models.Repository] for [models.CatalogSnapshot] persistence.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a new snapshot into the database with generated ID and sequence
func (r *SnapshotRepository) Create(snapshot *models.CatalogSnapshot) error {
	sequence, err := NextSequence(r.db, "snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	snapshot.SetID(id)
	snapshot.SetSequence(sequence)

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	payload, err := snapshot.MarshalPayload()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO snapshots (id, sequence, kind, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, snapshot.Kind(), payload, snapshot.CreatedAt(), snapshot.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID, excluding soft-deleted snapshots
func (r *SnapshotRepository) Get(id string) (*models.CatalogSnapshot, error) {
	query := `
		SELECT id, sequence, kind, payload, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE id = ? AND deleted_at IS NULL
	`

	snapshot, err := r.scanRow(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Latest retrieves the most recent snapshot of the given kind, or nil when none exists.
func (r *SnapshotRepository) Latest(kind string) (*models.CatalogSnapshot, error) {
	query := `
		SELECT id, sequence, kind, payload, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE kind = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	snapshot, err := r.scanRow(r.db.QueryRow(query, kind))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Update modifies an existing snapshot in the database
func (r *SnapshotRepository) Update(snapshot *models.CatalogSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	payload, err := snapshot.MarshalPayload()
	if err != nil {
		return err
	}

	now := time.Now()
	snapshot.SetUpdatedAt(now)

	query := `
		UPDATE snapshots
		SET kind = ?, payload = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, snapshot.Kind(), payload, now, snapshot.ID())
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found or already deleted: %s", snapshot.ID())
	}

	return nil
}

// Delete soft-deletes a snapshot by ID
func (r *SnapshotRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE snapshots
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all snapshots matching the given criteria, excluding soft-deleted snapshots
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.CatalogSnapshot, error) {
	query := `
		SELECT id, sequence, kind, payload, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.CatalogSnapshot
	for rows.Next() {
		snapshot, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SnapshotRepository) scanRow(row rowScanner) (*models.CatalogSnapshot, error) {
	var (
		id        string
		sequence  int
		kind      string
		payload   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &kind, &payload, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snapshot := models.NewCatalogSnapshot(sequence, kind, models.SnapshotPayload{})
	snapshot.SetID(id)
	snapshot.SetCreatedAt(createdAt)
	snapshot.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		snapshot.SetDeletedAt(&deletedAt.Time)
	}
	if err := snapshot.UnmarshalPayload(payload); err != nil {
		return nil, err
	}

	return snapshot, nil
}
