package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/sleep-keeper/internal/errs"
)

// Clock is a wall-clock time of day without date or zone.
type Clock struct {
	Hour   int `validate:"min=0,max=23"`
	Minute int `validate:"min=0,max=59"`
}

// ParseClock parses "HH:MM" (24h, leading zero optional on the hour).
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || hh == "" || len(hh) > 2 || !digits(hh) || !digits(mm) {
		return Clock{}, fmt.Errorf("validation: clock %q: want HH:MM: %w", s, errs.ErrValidation)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return Clock{}, fmt.Errorf("validation: clock %q: %w", s, errs.ErrValidation)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return Clock{}, fmt.Errorf("validation: clock %q: %w", s, errs.ErrValidation)
	}
	c := Clock{Hour: h, Minute: m}
	if !c.Valid() {
		return Clock{}, fmt.Errorf("validation: clock %q out of range: %w", s, errs.ErrValidation)
	}
	return c, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MustClock is ParseClock for constants.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether the clock is within 00:00..23:59.
func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// MarshalText encodes the clock as "HH:MM".
func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes "HH:MM".
func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Next returns the first instant strictly after t at which the wall clock in
// loc reads c. A nil loc means time.Local.
func (c Clock) Next(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	at := time.Date(lt.Year(), lt.Month(), lt.Day(), c.Hour, c.Minute, 0, 0, loc)
	if !at.After(lt) {
		at = time.Date(lt.Year(), lt.Month(), lt.Day()+1, c.Hour, c.Minute, 0, 0, loc)
	}
	return at
}
