package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/sleep-keeper/internal/model"
)

// SettingsRepository persists the single settings record of each user.
type SettingsRepository interface {
	// Get loads the record; errs.ErrNotFound if the user has none yet.
	Get(ctx context.Context, userID uuid.UUID) (*model.UserSettings, error)
	// Insert creates the record; errs.ErrAlreadyExists if one exists.
	Insert(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error)
	// Replace overwrites the record; errs.ErrNotFound if there is none.
	Replace(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error)
}
