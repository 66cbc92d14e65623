package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hardbound/stacks/internal/shared"
)

// SnapshotKindCatalog is the only snapshot kind currently written; the kind
// column exists so partial snapshots (e.g. loans only) can be added later.
const SnapshotKindCatalog = "catalog"

// SnapshotPayload is the serialized body of a [CatalogSnapshot].
type SnapshotPayload struct {
	Catalog   Catalog   `json:"catalog"`
	Stats     Stats     `json:"stats"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CatalogSnapshot is a locally cached catalog payload, persisted so the
// dashboard and exports keep working without the backend.
type CatalogSnapshot struct {
	id        string
	sequence  int
	kind      string
	payload   SnapshotPayload
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCatalogSnapshot creates a snapshot entity with the given sequence, kind and payload.
func NewCatalogSnapshot(sequence int, kind string, payload SnapshotPayload) *CatalogSnapshot {
	now := time.Now()
	return &CatalogSnapshot{
		sequence:  sequence,
		kind:      kind,
		payload:   payload,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *CatalogSnapshot) ID() string                  { return s.id }
func (s *CatalogSnapshot) Sequence() int               { return s.sequence }
func (s *CatalogSnapshot) Kind() string                { return s.kind }
func (s *CatalogSnapshot) Payload() SnapshotPayload    { return s.payload }
func (s *CatalogSnapshot) CreatedAt() time.Time        { return s.createdAt }
func (s *CatalogSnapshot) UpdatedAt() time.Time        { return s.updatedAt }
func (s *CatalogSnapshot) DeletedAt() *time.Time       { return s.deletedAt }
func (s *CatalogSnapshot) SetID(id string)             { s.id = id }
func (s *CatalogSnapshot) SetSequence(sequence int)    { s.sequence = sequence }
func (s *CatalogSnapshot) SetUpdatedAt(t time.Time)    { s.updatedAt = t }
func (s *CatalogSnapshot) SetDeletedAt(t *time.Time)   { s.deletedAt = t }
func (s *CatalogSnapshot) SetCreatedAt(t time.Time)    { s.createdAt = t }
func (s *CatalogSnapshot) SetPayload(p SnapshotPayload) { s.payload = p }

// Validate checks that the snapshot can be persisted.
func (s *CatalogSnapshot) Validate() error {
	if s.id == "" {
		return fmt.Errorf("%w: snapshot id is required", shared.ErrInvalidInput)
	}
	if s.kind == "" {
		return fmt.Errorf("%w: snapshot kind is required", shared.ErrInvalidInput)
	}
	if s.payload.FetchedAt.IsZero() {
		return fmt.Errorf("%w: snapshot fetch time is required", shared.ErrInvalidInput)
	}
	return nil
}

// MarshalPayload serializes the snapshot payload for storage.
func (s *CatalogSnapshot) MarshalPayload() (string, error) {
	data, err := json.Marshal(s.payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}
	return string(data), nil
}

// UnmarshalPayload restores the snapshot payload from storage.
func (s *CatalogSnapshot) UnmarshalPayload(raw string) error {
	if err := json.Unmarshal([]byte(raw), &s.payload); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot payload: %w", err)
	}
	return nil
}
