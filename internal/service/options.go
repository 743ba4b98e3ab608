// Package service holds the core: the entry and settings services that own the
// in-memory snapshots, and the weekly statistics derived from them.
package service

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	log *zap.Logger
	now func() time.Time
	loc *time.Location
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation sets the zone used for day boundaries; the default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop(), now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
