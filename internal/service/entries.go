package service

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/identity"
	"github.com/and161185/sleep-keeper/internal/model"
	"github.com/and161185/sleep-keeper/internal/repository"
	"github.com/and161185/sleep-keeper/internal/timeutil"
)

// EntryService owns the sleep entries of the current identity.
type EntryService interface {
	// Load replaces the snapshot with the backend's collection.
	Load(ctx context.Context) ([]model.SleepEntry, error)
	// Add stores a new entry; duration is derived from the input instants.
	Add(ctx context.Context, in model.EntryInput) (model.SleepEntry, error)
	// Update fully replaces the editable fields of an entry.
	Update(ctx context.Context, id uuid.UUID, in model.EntryInput) (model.SleepEntry, error)
	// Delete removes one entry; errs.ErrNotFound if it is already gone.
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearAll removes every entry of the current identity.
	ClearAll(ctx context.Context) error
	// Get looks an entry up in the snapshot.
	Get(id uuid.UUID) (model.SleepEntry, bool)
	// Latest is the entry with the most recent bedtime.
	Latest() (model.SleepEntry, bool)
	// Entries copies the snapshot, newest bedtime first.
	Entries() []model.SleepEntry
	// WeeklyStats aggregates the snapshot over the trailing seven days.
	WeeklyStats() model.WeeklyStats
}

// EntryServiceImpl keeps a sorted snapshot of the collection in memory.
// Backend calls run outside the lock; the snapshot is swapped under it, so
// the last load or mutation to complete wins.
type EntryServiceImpl struct {
	repo repository.EntryRepository
	id   identity.Identity
	options

	mu      sync.RWMutex
	entries []model.SleepEntry
	loadErr error
}

var _ EntryService = (*EntryServiceImpl)(nil)

// NewEntryService constructs the service for one identity.
func NewEntryService(repo repository.EntryRepository, id identity.Identity, opts ...Option) *EntryServiceImpl {
	if id == nil {
		id = identity.Anonymous()
	}
	return &EntryServiceImpl{repo: repo, id: id, options: buildOptions(opts), entries: []model.SleepEntry{}}
}

// Load fetches the full collection and replaces the snapshot. On failure the
// previous snapshot is kept and the error is remembered for LastLoadErr.
// An unauthenticated identity always loads an empty collection.
func (s *EntryServiceImpl) Load(ctx context.Context) ([]model.SleepEntry, error) {
	if !s.id.Authenticated() {
		s.mu.Lock()
		s.entries, s.loadErr = []model.SleepEntry{}, nil
		s.mu.Unlock()
		return []model.SleepEntry{}, nil
	}

	list, err := s.repo.List(ctx, s.id.UserID())
	if err != nil {
		err = errs.Storage("load entries", err)
		s.log.Warn("load entries failed, keeping previous snapshot", zap.Error(err))
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return nil, err
	}
	list = cloneEntries(list)
	slices.SortFunc(list, compareEntries)

	s.mu.Lock()
	s.entries, s.loadErr = list, nil
	s.mu.Unlock()
	return cloneEntries(list), nil
}

// Add computes the duration, persists the entry and inserts it into the
// snapshot at its sorted position.
func (s *EntryServiceImpl) Add(ctx context.Context, in model.EntryInput) (model.SleepEntry, error) {
	if !s.id.Authenticated() {
		return model.SleepEntry{}, errs.ErrUnauthenticated
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.SleepEntry{}, err
	}
	now := s.now()
	e := s.build(id, in)
	e.CreatedAt, e.UpdatedAt = now, now

	stored, err := s.repo.Insert(context.WithoutCancel(ctx), &e)
	if err != nil {
		err = errs.Storage("add entry", err)
		s.log.Warn("add entry failed", zap.Error(err))
		return model.SleepEntry{}, err
	}
	out := stored.Clone()

	s.mu.Lock()
	s.entries = insertSorted(s.entries, out.Clone())
	s.mu.Unlock()
	return out, nil
}

// Update recomputes the duration and replaces the entry in the backend and
// the snapshot. The snapshot is left untouched on failure.
func (s *EntryServiceImpl) Update(ctx context.Context, id uuid.UUID, in model.EntryInput) (model.SleepEntry, error) {
	if !s.id.Authenticated() {
		return model.SleepEntry{}, errs.ErrUnauthenticated
	}
	e := s.build(id, in)
	e.UpdatedAt = s.now()
	if prev, ok := s.Get(id); ok {
		e.CreatedAt = prev.CreatedAt
	}

	stored, err := s.repo.Replace(context.WithoutCancel(ctx), &e)
	if err != nil {
		err = errs.Storage("update entry", err)
		s.log.Warn("update entry failed", zap.Stringer("id", id), zap.Error(err))
		return model.SleepEntry{}, err
	}
	out := stored.Clone()

	s.mu.Lock()
	s.entries = removeEntry(s.entries, id)
	s.entries = insertSorted(s.entries, out.Clone())
	s.mu.Unlock()
	return out, nil
}

// Delete removes the entry from the backend, then from the snapshot.
func (s *EntryServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.id.Authenticated() {
		return errs.ErrUnauthenticated
	}
	if err := s.repo.Delete(context.WithoutCancel(ctx), s.id.UserID(), id); err != nil {
		err = errs.Storage("delete entry", err)
		s.log.Warn("delete entry failed", zap.Stringer("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.entries = removeEntry(s.entries, id)
	s.mu.Unlock()
	return nil
}

// ClearAll deletes every entry of the identity and empties the snapshot.
func (s *EntryServiceImpl) ClearAll(ctx context.Context) error {
	if !s.id.Authenticated() {
		return errs.ErrUnauthenticated
	}
	if err := s.repo.DeleteAll(context.WithoutCancel(ctx), s.id.UserID()); err != nil {
		err = errs.Storage("clear entries", err)
		s.log.Warn("clear entries failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.entries = []model.SleepEntry{}
	s.mu.Unlock()
	return nil
}

// Get looks id up in the snapshot without I/O.
func (s *EntryServiceImpl) Get(id uuid.UUID) (model.SleepEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return model.SleepEntry{}, false
}

// Latest returns the first entry of the snapshot.
func (s *EntryServiceImpl) Latest() (model.SleepEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return model.SleepEntry{}, false
	}
	return s.entries[0].Clone(), true
}

// Entries returns a deep copy of the snapshot.
func (s *EntryServiceImpl) Entries() []model.SleepEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

// Len is the snapshot size.
func (s *EntryServiceImpl) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// LastLoadErr is the error of the most recent Load, nil after a successful one.
func (s *EntryServiceImpl) LastLoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// WeeklyStats aggregates the current snapshot.
func (s *EntryServiceImpl) WeeklyStats() model.WeeklyStats {
	s.mu.RLock()
	entries := slices.Clone(s.entries)
	s.mu.RUnlock()
	return WeeklyStats(entries, s.now(), s.loc)
}

// Reset drops the snapshot, e.g. on sign-out.
func (s *EntryServiceImpl) Reset() {
	s.mu.Lock()
	s.entries, s.loadErr = []model.SleepEntry{}, nil
	s.mu.Unlock()
}

func (s *EntryServiceImpl) build(id uuid.UUID, in model.EntryInput) model.SleepEntry {
	return model.SleepEntry{
		ID:       id,
		UserID:   s.id.UserID(),
		Bedtime:  in.Bedtime,
		WakeTime: in.WakeTime,
		Duration: timeutil.CalculateDuration(in.Bedtime, in.WakeTime),
		Note:     model.NormalizeNote(in.Note),
		Quality:  model.NormalizeQuality(in.Quality),
	}
}

// compareEntries orders by bedtime descending, then id ascending.
func compareEntries(a, b model.SleepEntry) int {
	if c := b.Bedtime.Compare(a.Bedtime); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func insertSorted(list []model.SleepEntry, e model.SleepEntry) []model.SleepEntry {
	i, _ := slices.BinarySearchFunc(list, e, compareEntries)
	return slices.Insert(list, i, e)
}

func removeEntry(list []model.SleepEntry, id uuid.UUID) []model.SleepEntry {
	return slices.DeleteFunc(list, func(e model.SleepEntry) bool { return e.ID == id })
}

func cloneEntries(list []model.SleepEntry) []model.SleepEntry {
	out := make([]model.SleepEntry, len(list))
	for i, e := range list {
		out[i] = e.Clone()
	}
	return out
}
