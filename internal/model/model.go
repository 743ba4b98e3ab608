// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
)

// Limits of the entry domain.
const (
	MaxNoteLen = 200 // runes
	MinQuality = 1
	MaxQuality = 5
)

// SleepEntry is one recorded sleep session. Duration is derived from
// Bedtime/WakeTime at write time and is never set by callers.
type SleepEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`   // uuid.Nil for the on-device collection
	Bedtime   time.Time `json:"bedtime"`  // absolute instant
	WakeTime  time.Time `json:"wakeTime"` // absolute instant
	Duration  float64   `json:"duration"` // hours, one decimal
	Note      *string   `json:"note,omitempty"`
	Quality   *int      `json:"quality,omitempty"` // 1..5, nil = not rated
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so snapshot readers cannot alias repository state.
func (e SleepEntry) Clone() SleepEntry {
	if e.Note != nil {
		n := *e.Note
		e.Note = &n
	}
	if e.Quality != nil {
		q := *e.Quality
		e.Quality = &q
	}
	return e
}

// EntryInput carries the user-editable fields of an entry for add/update.
type EntryInput struct {
	Bedtime  time.Time `validate:"required"`
	WakeTime time.Time `validate:"required"`
	Note     *string   `validate:"omitnil,max=200"`
	Quality  *int      `validate:"omitnil,min=1,max=5"`
}

// Validate applies caller-side checks. The entry repository itself accepts any
// syntactically valid timestamps; screens and the CLI call this first. The
// note length is checked on the trimmed text.
func (in EntryInput) Validate() error {
	if in.Note != nil {
		n := strings.TrimSpace(*in.Note)
		in.Note = &n
	}
	return validateStruct(in)
}

// NormalizeNote trims the note; blank notes become nil and overlong ones are
// cut to MaxNoteLen runes.
func NormalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	s := strings.TrimSpace(*note)
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) > MaxNoteLen {
		s = strings.TrimSpace(string([]rune(s)[:MaxNoteLen]))
	}
	return &s
}

// NormalizeQuality drops ratings outside 1..5.
func NormalizeQuality(q *int) *int {
	if q == nil || *q < MinQuality || *q > MaxQuality {
		return nil
	}
	v := *q
	return &v
}

// WeeklyStats is the derived trailing 7-day view; index 6 is today.
type WeeklyStats struct {
	Days         [7]time.Time `json:"days"`   // local midnight of each bucket
	Labels       [7]string    `json:"labels"` // short weekday names
	Hours        [7]float64   `json:"hours"`  // summed duration per day
	Average      float64      `json:"average"`
	TotalEntries int          `json:"totalEntries"`
}
