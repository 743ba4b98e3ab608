package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/sleep-keeper/internal/config"
	"github.com/and161185/sleep-keeper/internal/identity"
	"github.com/and161185/sleep-keeper/internal/migrate"
	"github.com/and161185/sleep-keeper/internal/notify"
	"github.com/and161185/sleep-keeper/internal/repository"
	"github.com/and161185/sleep-keeper/internal/repository/local"
	"github.com/and161185/sleep-keeper/internal/repository/postgres"
	"github.com/and161185/sleep-keeper/internal/service"
)

var errUsage = errors.New("usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

type app struct {
	cfg      *config.Config
	loc      *time.Location
	log      *zap.Logger
	out      io.Writer
	now      func() time.Time
	notifier *notify.LogNotifier
}

func newApp(cfg *config.Config, log *zap.Logger, out io.Writer) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &app{cfg: cfg, loc: loc, log: log, out: out, now: time.Now}, nil
}

// identity picks the record scope. A verified stored token selects that
// user; without one the local backend falls back to the device collection
// and the remote backend to a signed-out identity.
func (a *app) identity() identity.Identity {
	fallback := identity.Anonymous()
	if a.cfg.Storage.Backend == config.BackendLocal {
		fallback = identity.Device()
	}

	tok, err := loadToken(a.cfg.TokenPath(), a.now())
	if err != nil {
		a.log.Debug("no stored token", zap.Error(err))
		return fallback
	}
	if a.cfg.Auth.JWTSecret == "" {
		a.log.Warn("stored token ignored: auth.jwt_secret is not configured")
		return fallback
	}
	id, err := identity.FromToken(tok, []byte(a.cfg.Auth.JWTSecret), a.cfg.Auth.Leeway)
	if err != nil {
		a.log.Warn("stored token rejected", zap.Error(err))
		return fallback
	}
	return id
}

func (a *app) openBackend(ctx context.Context) (repository.EntryRepository, repository.SettingsRepository, func(), error) {
	switch a.cfg.Storage.Backend {
	case config.BackendRemote:
		if a.cfg.Database.Migrate {
			if err := migrate.Postgres(ctx, a.cfg.Database.DSN); err != nil {
				return nil, nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		db, err := postgres.New(ctx, a.cfg.Database.DSN, a.cfg.Database.MaxConns)
		if err != nil {
			return nil, nil, nil, err
		}
		a.log.Debug("remote backend ready")
		return postgres.NewEntryRepo(db), postgres.NewSettingsRepo(db), db.Close, nil

	default:
		path := a.cfg.LocalPath()
		st, err := local.Open(ctx, path)
		if err != nil {
			return nil, nil, nil, err
		}
		if p := a.cfg.Storage.LocalPassphrase; p != "" {
			if err := st.EnableSealing(ctx, p); err != nil {
				_ = st.Close()
				return nil, nil, nil, fmt.Errorf("enable sealing: %w", err)
			}
		}
		a.log.Debug("local backend ready", zap.String("path", path))
		closeFn := func() {
			if err := st.Close(); err != nil {
				a.log.Warn("close local store", zap.Error(err))
			}
		}
		return local.NewEntryRepo(st), local.NewSettingsRepo(st), closeFn, nil
	}
}

func (a *app) openSession(ctx context.Context) (*service.Session, func(), error) {
	entries, settings, closeBackend, err := a.openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.notifier = notify.NewLogNotifier(a.log, a.loc)
	a.notifier.SetClock(a.now)
	sess := service.NewSession(a.identity(), entries, settings,
		a.notifier,
		service.WithLogger(a.log),
		service.WithLocation(a.loc),
		service.WithClock(a.now),
	)
	return sess, func() {
		sess.Close()
		closeBackend()
	}, nil
}

var sessionCommands = map[string]func(*app, context.Context, *service.Session, []string) error{
	"list":     (*app).cmdList,
	"latest":   (*app).cmdLatest,
	"add":      (*app).cmdAdd,
	"edit":     (*app).cmdEdit,
	"rm":       (*app).cmdRm,
	"clear":    (*app).cmdClear,
	"stats":    (*app).cmdStats,
	"settings": (*app).cmdSettings,
	"set":      (*app).cmdSet,
	"onboard":  (*app).cmdOnboard,
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "version":
		_, err := fmt.Fprintf(a.out, "sleepctl %s (%s)\n", version, buildDate)
		return err
	case "login":
		return a.cmdLogin(args)
	case "logout":
		return a.cmdLogout()
	}

	fn, ok := sessionCommands[cmd]
	if !ok {
		return usageErr("unknown command %q", cmd)
	}
	sess, closeFn, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(a, ctx, sess, args)
}
