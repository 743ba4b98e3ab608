// Command sleepctl records sleep sessions and shows weekly statistics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/sleep-keeper/internal/config"
	"github.com/and161185/sleep-keeper/internal/errs"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `sleepctl
Usage:
  sleepctl [-backend local|remote] [-db path] [-dsn dsn] [-tz zone] [-log-level lvl] <cmd> [args]

Commands:
  version
  login      -token <jwt>                           (saves token)
  logout
  list
  latest
  add        -bed <time> -wake <time> [-note s] [-quality 1..5]
  edit       -id <uuid> -bed <time> -wake <time> [-note s] [-quality 1..5]
  rm         -id <uuid>
  clear      -yes
  stats
  settings
  set        [-target hours] [-reminder on|off] [-at HH:MM]
  onboard    [-target hours] -reminder on|off [-at HH:MM]

Times are RFC 3339 or "2006-01-02 15:04" in the configured zone.
`)
	os.Exit(2)
}

// main loads configuration, applies flag overrides and dispatches the subcommand.
func main() {
	backend := flag.String("backend", "", "storage backend: local|remote (overrides config)")
	dbPath := flag.String("db", "", "local database path (overrides config)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides config)")
	tz := flag.String("tz", "", "IANA time zone (overrides config)")
	logLevel := flag.String("log-level", "", "debug|info|warn|error (overrides config)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	cfg, err := config.Read()
	if err != nil {
		fail(err)
	}
	overrideString(&cfg.Storage.Backend, *backend)
	overrideString(&cfg.Storage.LocalPath, *dbPath)
	overrideString(&cfg.Database.DSN, *dsn)
	overrideString(&cfg.App.Timezone, *tz)
	overrideString(&cfg.Log.Level, *logLevel)
	if err := cfg.Validate(); err != nil {
		fail(fmt.Errorf("config: %w", err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger, os.Stdout)
	if err != nil {
		fail(err)
	}
	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			usage()
		}
		fail(err)
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// newLogger builds a production logger on stderr so stdout stays JSON only.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		fmt.Fprintln(os.Stderr, "not signed in (run: sleepctl login -token <jwt>):", err)
	case errors.Is(err, errs.ErrStorage):
		fmt.Fprintln(os.Stderr, "storage unavailable:", err)
	default:
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
