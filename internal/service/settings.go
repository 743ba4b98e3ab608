package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/identity"
	"github.com/and161185/sleep-keeper/internal/model"
	"github.com/and161185/sleep-keeper/internal/notify"
	"github.com/and161185/sleep-keeper/internal/repository"
)

// Reminder hook actions.
const (
	HookSchedule = "schedule"
	HookCancel   = "cancel"
)

// HookOutcome reports the reminder side effect of a settings update. A failed
// hook never fails the update itself.
type HookOutcome struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Err    error  `json:"-"`
}

// OK reports whether the notifier accepted the call.
func (h HookOutcome) OK() bool { return h.Err == nil }

// UpdateResult is the committed record plus the reminder hook outcome.
type UpdateResult struct {
	Settings model.UserSettings `json:"settings"`
	Reminder HookOutcome        `json:"reminder"`
}

// SettingsService owns the settings record of the current identity.
type SettingsService interface {
	// Load returns the record, creating it with defaults on first access.
	Load(ctx context.Context) (model.UserSettings, error)
	// Update merges the supplied fields and re-syncs the reminder.
	Update(ctx context.Context, patch model.SettingsPatch) (UpdateResult, error)
	// CompleteOnboarding is Update that also marks onboarding as done.
	CompleteOnboarding(ctx context.Context, targetHours float64, reminderEnabled bool, reminderTime model.Clock) (UpdateResult, error)
	// Current is the in-memory record, if loaded.
	Current() (model.UserSettings, bool)
}

// SettingsServiceImpl keeps the last committed record in memory.
type SettingsServiceImpl struct {
	repo     repository.SettingsRepository
	id       identity.Identity
	notifier notify.Notifier
	options

	mu  sync.RWMutex
	cur *model.UserSettings
}

var _ SettingsService = (*SettingsServiceImpl)(nil)

// NewSettingsService constructs the service; a nil notifier discards reminders.
func NewSettingsService(repo repository.SettingsRepository, id identity.Identity, n notify.Notifier, opts ...Option) *SettingsServiceImpl {
	if id == nil {
		id = identity.Anonymous()
	}
	if n == nil {
		n = notify.Nop{}
	}
	return &SettingsServiceImpl{repo: repo, id: id, notifier: n, options: buildOptions(opts)}
}

// Load fetches the record or creates the default one. Absence is never
// reported to the caller.
func (s *SettingsServiceImpl) Load(ctx context.Context) (model.UserSettings, error) {
	if !s.id.Authenticated() {
		return model.UserSettings{}, errs.ErrUnauthenticated
	}
	st, err := s.fetchOrCreate(ctx)
	if err != nil {
		s.log.Warn("load settings failed", zap.Error(err))
		return model.UserSettings{}, err
	}
	s.mu.Lock()
	s.cur = st
	s.mu.Unlock()
	return *st, nil
}

// Update merges patch into the current record, stamps UpdatedAt and persists
// it. After the commit the notifier is told to schedule the reminder when it
// is enabled, or to cancel all reminders otherwise; exactly one of the two.
func (s *SettingsServiceImpl) Update(ctx context.Context, patch model.SettingsPatch) (UpdateResult, error) {
	if !s.id.Authenticated() {
		return UpdateResult{}, errs.ErrUnauthenticated
	}
	ctx = context.WithoutCancel(ctx)

	base, ok := s.Current()
	if !ok {
		st, err := s.fetchOrCreate(ctx)
		if err != nil {
			s.log.Warn("update settings failed", zap.Error(err))
			return UpdateResult{}, err
		}
		base = *st
	}

	merged := patch.Apply(base)
	merged.UserID = s.id.UserID()
	merged.UpdatedAt = s.now()

	stored, err := s.repo.Replace(ctx, &merged)
	if err != nil {
		err = errs.Storage("update settings", err)
		s.log.Warn("update settings failed", zap.Error(err))
		return UpdateResult{}, err
	}

	s.mu.Lock()
	s.cur = stored
	s.mu.Unlock()

	return UpdateResult{Settings: *stored, Reminder: s.syncReminder(ctx, *stored)}, nil
}

// CompleteOnboarding applies the onboarding answers and sets OnboardingCompleted.
func (s *SettingsServiceImpl) CompleteOnboarding(ctx context.Context, targetHours float64, reminderEnabled bool, reminderTime model.Clock) (UpdateResult, error) {
	done := true
	return s.Update(ctx, model.SettingsPatch{
		TargetHours:         &targetHours,
		ReminderEnabled:     &reminderEnabled,
		ReminderTime:        &reminderTime,
		OnboardingCompleted: &done,
	})
}

// Current returns the in-memory record.
func (s *SettingsServiceImpl) Current() (model.UserSettings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return model.UserSettings{}, false
	}
	return *s.cur, true
}

// Reset drops the in-memory record.
func (s *SettingsServiceImpl) Reset() {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
}

func (s *SettingsServiceImpl) fetchOrCreate(ctx context.Context) (*model.UserSettings, error) {
	uid := s.id.UserID()
	st, err := s.repo.Get(ctx, uid)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Storage("load settings", err)
	}

	def := model.DefaultSettings(uid, s.now())
	st, err = s.repo.Insert(ctx, &def)
	if errors.Is(err, errs.ErrAlreadyExists) {
		// another session created it first
		st, err = s.repo.Get(ctx, uid)
	}
	if err != nil {
		return nil, errs.Storage("create settings", err)
	}
	s.log.Info("default settings created", zap.Stringer("user", uid))
	return st, nil
}

func (s *SettingsServiceImpl) syncReminder(ctx context.Context, st model.UserSettings) HookOutcome {
	var out HookOutcome
	if st.ReminderEnabled {
		out.Action = HookSchedule
		out.ID, out.Err = s.notifier.Schedule(ctx, st.ReminderTime, st.TargetHours)
	} else {
		out.Action = HookCancel
		out.Err = s.notifier.CancelAll(ctx)
	}

	if out.Err != nil {
		s.log.Warn("reminder hook failed",
			zap.String("action", out.Action),
			zap.Error(out.Err),
		)
		return out
	}
	s.log.Info("reminder hook done",
		zap.String("action", out.Action),
		zap.String("id", out.ID),
	)
	return out
}
