// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/sleep-keeper/internal/model"
)

// EntryRepository persists sleep entries scoped by user.
// Implementations return errs.ErrNotFound for missing ids; any other error is a
// transport or storage failure.
type EntryRepository interface {
	// List returns every entry of the user in unspecified order.
	List(ctx context.Context, userID uuid.UUID) ([]model.SleepEntry, error)
	// Insert stores a new entry and returns the stored record.
	Insert(ctx context.Context, e *model.SleepEntry) (*model.SleepEntry, error)
	// Replace overwrites the entry with the same ID and UserID.
	Replace(ctx context.Context, e *model.SleepEntry) (*model.SleepEntry, error)
	// Delete removes a single entry.
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// DeleteAll removes every entry of the user.
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}
