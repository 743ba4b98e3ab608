package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/model"
)

const settingsColumns = `user_id, target_hours, reminder_enabled, reminder_time, onboarding_completed, created_at, updated_at`

// settingsRow mirrors a user_settings row; reminder_time is stored as "HH:MM".
type settingsRow struct {
	UserID              uuid.UUID
	TargetHours         float64
	ReminderEnabled     bool
	ReminderTime        string
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (r *settingsRow) dest() []any {
	return []any{&r.UserID, &r.TargetHours, &r.ReminderEnabled, &r.ReminderTime, &r.OnboardingCompleted, &r.CreatedAt, &r.UpdatedAt}
}

func (r settingsRow) toModel() (*model.UserSettings, error) {
	at, err := model.ParseClock(r.ReminderTime)
	if err != nil {
		return nil, fmt.Errorf("user_settings.reminder_time %q: malformed", r.ReminderTime)
	}
	return &model.UserSettings{
		UserID:              r.UserID,
		TargetHours:         r.TargetHours,
		ReminderEnabled:     r.ReminderEnabled,
		ReminderTime:        at,
		OnboardingCompleted: r.OnboardingCompleted,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}, nil
}

// SettingsRepo implements SettingsRepository using PostgreSQL.
type SettingsRepo struct{ db *DB }

// NewSettingsRepo constructs a settings repository.
func NewSettingsRepo(db *DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get selects the settings row of the user.
func (r *SettingsRepo) Get(ctx context.Context, userID uuid.UUID) (*model.UserSettings, error) {
	const q = `
SELECT ` + settingsColumns + `
FROM user_settings WHERE user_id=$1`
	var row settingsRow
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(row.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return row.toModel()
}

// Insert creates the settings row of the user.
func (r *SettingsRepo) Insert(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	const q = `
INSERT INTO user_settings (` + settingsColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + settingsColumns
	var row settingsRow
	err := r.db.Pool.QueryRow(ctx, q,
		s.UserID, s.TargetHours, s.ReminderEnabled, s.ReminderTime.String(), s.OnboardingCompleted, s.CreatedAt, s.UpdatedAt,
	).Scan(row.dest()...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}
	return row.toModel()
}

// Replace overwrites the settings row of the user.
func (r *SettingsRepo) Replace(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	const q = `
UPDATE user_settings
SET target_hours=$2, reminder_enabled=$3, reminder_time=$4, onboarding_completed=$5, updated_at=$6
WHERE user_id=$1
RETURNING ` + settingsColumns
	var row settingsRow
	err := r.db.Pool.QueryRow(ctx, q,
		s.UserID, s.TargetHours, s.ReminderEnabled, s.ReminderTime.String(), s.OnboardingCompleted, s.UpdatedAt,
	).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return row.toModel()
}
