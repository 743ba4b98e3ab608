package service

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/model"
	"github.com/and161185/sleep-keeper/internal/repository"
)

type fakeEntryRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.SleepEntry

	listErr   error
	insertErr error
	replErr   error
	delErr    error
	clearErr  error

	insertIn []model.SleepEntry
	calls    int
}

var _ repository.EntryRepository = (*fakeEntryRepo)(nil)

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{rows: map[uuid.UUID]model.SleepEntry{}}
}

func (f *fakeEntryRepo) List(_ context.Context, userID uuid.UUID) ([]model.SleepEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.SleepEntry{}
	for _, e := range f.rows {
		if e.UserID == userID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) Insert(_ context.Context, e *model.SleepEntry) (*model.SleepEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.insertIn = append(f.insertIn, e.Clone())
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if _, ok := f.rows[e.ID]; ok {
		return nil, errs.ErrAlreadyExists
	}
	f.rows[e.ID] = e.Clone()
	out := e.Clone()
	return &out, nil
}

func (f *fakeEntryRepo) Replace(_ context.Context, e *model.SleepEntry) (*model.SleepEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.replErr != nil {
		return nil, f.replErr
	}
	prev, ok := f.rows[e.ID]
	if !ok || prev.UserID != e.UserID {
		return nil, errs.ErrNotFound
	}
	next := e.Clone()
	next.CreatedAt = prev.CreatedAt
	f.rows[e.ID] = next
	out := next.Clone()
	return &out, nil
}

func (f *fakeEntryRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.delErr != nil {
		return f.delErr
	}
	e, ok := f.rows[id]
	if !ok || e.UserID != userID {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeEntryRepo) DeleteAll(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.clearErr != nil {
		return f.clearErr
	}
	for id, e := range f.rows {
		if e.UserID == userID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fakeSettingsRepo struct {
	rows map[uuid.UUID]model.UserSettings

	getErr     error
	insertErr  error
	replErr    error
	getCalls   int
	insertCall int
	replCalls  int
}

var _ repository.SettingsRepository = (*fakeSettingsRepo)(nil)

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{rows: map[uuid.UUID]model.UserSettings{}}
}

func (f *fakeSettingsRepo) Get(_ context.Context, userID uuid.UUID) (*model.UserSettings, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.rows[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSettingsRepo) Insert(_ context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	f.insertCall++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if _, ok := f.rows[s.UserID]; ok {
		return nil, errs.ErrAlreadyExists
	}
	f.rows[s.UserID] = *s
	out := *s
	return &out, nil
}

func (f *fakeSettingsRepo) Replace(_ context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	f.replCalls++
	if f.replErr != nil {
		return nil, f.replErr
	}
	prev, ok := f.rows[s.UserID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	next := *s
	next.CreatedAt = prev.CreatedAt
	f.rows[s.UserID] = next
	return &next, nil
}

type scheduleCall struct {
	At          model.Clock
	TargetHours float64
}

type fakeNotifier struct {
	schedules   []scheduleCall
	cancels     int
	scheduleErr error
	cancelErr   error
}

func (n *fakeNotifier) Schedule(_ context.Context, at model.Clock, targetHours float64) (string, error) {
	n.schedules = append(n.schedules, scheduleCall{At: at, TargetHours: targetHours})
	if n.scheduleErr != nil {
		return "", n.scheduleErr
	}
	return "reminder-1", nil
}

func (n *fakeNotifier) CancelAll(context.Context) error {
	n.cancels++
	return n.cancelErr
}
