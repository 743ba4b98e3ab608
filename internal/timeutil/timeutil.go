// Package timeutil converts between instants and human-readable durations,
// times and dates.
package timeutil

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// CalculateDuration returns the hours slept between bed and wake, rounded to
// one decimal. A wake time strictly before bedtime is taken to be on the next
// calendar day; equal instants give 0.
func CalculateDuration(bed, wake time.Time) float64 {
	d := wake.Sub(bed)
	if d < 0 {
		d %= day
		if d < 0 {
			d += day
		}
	}
	return RoundTenth(d.Hours())
}

// RoundTenth rounds x to one decimal place, halves away from zero.
func RoundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

// FormatDuration renders hours as "7h 30m", or "8h" when there is no minute
// remainder.
func FormatDuration(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) {
		return "0h"
	}
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m >= 60 {
		h++
		m = 0
	}
	if m == 0 {
		return fmt.Sprintf("%dh", int(h))
	}
	return fmt.Sprintf("%dh %dm", int(h), int(m))
}

// FormatTime renders the local time of day, e.g. "11:05 PM".
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(orLocal(loc)).Format("3:04 PM")
}

// FormatDate renders the local date, e.g. "Mon, Oct 19".
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(orLocal(loc)).Format("Mon, Jan 2")
}

// DayLabel is the short weekday name used for chart buckets.
func DayLabel(t time.Time, loc *time.Location) string {
	return t.In(orLocal(loc)).Format("Mon")
}

// StartOfDay returns local midnight of the calendar day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(orLocal(loc))
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
