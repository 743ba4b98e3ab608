package service

import (
	"context"
	"errors"

	"github.com/and161185/sleep-keeper/internal/identity"
	"github.com/and161185/sleep-keeper/internal/notify"
	"github.com/and161185/sleep-keeper/internal/repository"
)

// Session bundles the services of one signed-in identity. It is created at
// sign-in and closed at sign-out; nothing in it outlives Close.
type Session struct {
	Identity identity.Identity
	Entries  *EntryServiceImpl
	Settings *SettingsServiceImpl
}

// NewSession wires both services for id over the given backends.
func NewSession(id identity.Identity, entries repository.EntryRepository, settings repository.SettingsRepository, n notify.Notifier, opts ...Option) *Session {
	if id == nil {
		id = identity.Anonymous()
	}
	return &Session{
		Identity: id,
		Entries:  NewEntryService(entries, id, opts...),
		Settings: NewSettingsService(settings, id, n, opts...),
	}
}

// Load fills both snapshots. Settings are skipped for an unauthenticated
// identity; errors of both loads are joined.
func (s *Session) Load(ctx context.Context) error {
	_, err := s.Entries.Load(ctx)
	if s.Identity.Authenticated() {
		_, serr := s.Settings.Load(ctx)
		err = errors.Join(err, serr)
	}
	return err
}

// Close discards the in-memory state of the session.
func (s *Session) Close() {
	s.Entries.Reset()
	s.Settings.Reset()
}
