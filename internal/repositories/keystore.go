package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Slot names used by the session and theme stores.
//
// The token and identity slots are always written and cleared together; the
// theme slot is independent.
const (
	SlotSessionToken    = "session.token"
	SlotSessionIdentity = "session.identity"
	SlotTheme           = "ui.theme"
)

// SlotRepository persists named opaque string slots, the client-side stand-in
// for browser local storage.
type SlotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new [SlotRepository] with the given database connection
func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Get retrieves a slot value. ok is false when the slot has never been written.
func (r *SlotRepository) Get(name string) (value string, ok bool, err error) {
	query := `SELECT value FROM slots WHERE name = ?`

	err = r.db.QueryRow(query, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query slot %s: %w", name, err)
	}

	return value, true, nil
}

// Put writes a slot value, replacing any previous value.
func (r *SlotRepository) Put(name, value string) error {
	query := `
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, name, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", name, err)
	}

	return nil
}

// Delete removes the named slots in a single transaction.
//
// Deleting a slot that does not exist is not an error, so clearing an already
// logged-out session stays idempotent.
func (r *SlotRepository) Delete(names ...string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		if _, err := tx.Exec(`DELETE FROM slots WHERE name = ?`, name); err != nil {
			return fmt.Errorf("failed to delete slot %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot deletion: %w", err)
	}

	return nil
}
