// Package diary implements the temporal gating and mutual-visibility rules of
// couple diaries. Everything here is pure: the current instant is always an
// argument, never read from the environment.
package diary

import (
	"time"

	"github.com/and161185/lovary/internal/model"
)

// CutoffHour is the UTC hour on the following day at which a day's window closes.
const CutoffHour = 6

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// Deadline returns the last writable instant for day: 06:00:00 UTC of the next day.
func Deadline(day model.Day) time.Time {
	return day.AddDays(1).Time().Add(CutoffHour * time.Hour)
}

// EffectiveDay returns the day a fresh entry written at now counts for.
// Before the cutoff hour that is still yesterday.
func EffectiveDay(now time.Time) model.Day {
	now = now.UTC()
	if now.Hour() < CutoffHour {
		return model.DayOf(now.AddDate(0, 0, -1))
	}
	return model.DayOf(now)
}

// IsWritable reports whether entries for day may still be created or edited at now.
// The deadline itself is inclusive.
func IsWritable(now time.Time, day model.Day) bool {
	return !now.After(Deadline(day))
}
