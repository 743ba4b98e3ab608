package local

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/model"
)

const settingsKey = "user_settings"

// SettingsKey returns the kv key holding the settings record of userID.
func SettingsKey(userID uuid.UUID) string {
	return scopedKey(settingsKey, userID)
}

// SettingsRepo implements SettingsRepository on top of Store.
type SettingsRepo struct{ store *Store }

// NewSettingsRepo constructs a settings repository.
func NewSettingsRepo(s *Store) *SettingsRepo { return &SettingsRepo{store: s} }

// Get loads the record of the scope.
func (r *SettingsRepo) Get(ctx context.Context, userID uuid.UUID) (*model.UserSettings, error) {
	data, err := r.store.Get(ctx, SettingsKey(userID))
	if err != nil {
		return nil, err
	}
	return decodeSettings(data)
}

// Insert creates the record of the scope.
func (r *SettingsRepo) Insert(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	stored := *s
	err := r.store.Update(ctx, SettingsKey(s.UserID), func(cur []byte) ([]byte, error) {
		if cur != nil {
			return nil, errs.ErrAlreadyExists
		}
		return json.Marshal(stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Replace overwrites the record of the scope; CreatedAt is kept.
func (r *SettingsRepo) Replace(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	var stored model.UserSettings
	err := r.store.Update(ctx, SettingsKey(s.UserID), func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, errs.ErrNotFound
		}
		prev, err := decodeSettings(cur)
		if err != nil {
			return nil, err
		}
		stored = *s
		stored.CreatedAt = prev.CreatedAt
		return json.Marshal(stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func decodeSettings(data []byte) (*model.UserSettings, error) {
	var s model.UserSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", settingsKey, err)
	}
	return &s, nil
}
