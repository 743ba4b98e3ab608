package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Settings defaults applied when a user has no record yet.
const (
	DefaultTargetHours = 8.0
	MaxTargetHours     = 24.0
)

// DefaultReminderTime is 22:00.
var DefaultReminderTime = Clock{Hour: 22}

// UserSettings is the single per-user settings record.
type UserSettings struct {
	UserID              uuid.UUID `json:"userId"`
	TargetHours         float64   `json:"targetHours"`
	ReminderEnabled     bool      `json:"reminderEnabled"`
	ReminderTime        Clock     `json:"reminderTime"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultSettings returns the record created lazily on first access.
func DefaultSettings(userID uuid.UUID, now time.Time) UserSettings {
	return UserSettings{
		UserID:       userID,
		TargetHours:  DefaultTargetHours,
		ReminderTime: DefaultReminderTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SettingsPatch is a partial update; nil fields are left untouched.
type SettingsPatch struct {
	TargetHours         *float64 `validate:"omitnil,gt=0,lte=24"`
	ReminderEnabled     *bool
	ReminderTime        *Clock
	OnboardingCompleted *bool
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.TargetHours == nil && p.ReminderEnabled == nil && p.ReminderTime == nil && p.OnboardingCompleted == nil
}

// Apply merges the supplied fields into s and returns the result.
func (p SettingsPatch) Apply(s UserSettings) UserSettings {
	if p.TargetHours != nil {
		s.TargetHours = *p.TargetHours
	}
	if p.ReminderEnabled != nil {
		s.ReminderEnabled = *p.ReminderEnabled
	}
	if p.ReminderTime != nil {
		s.ReminderTime = *p.ReminderTime
	}
	if p.OnboardingCompleted != nil {
		s.OnboardingCompleted = *p.OnboardingCompleted
	}
	return s
}

// Validate applies caller-side checks to the patch.
func (p SettingsPatch) Validate() error {
	return validateStruct(p)
}
