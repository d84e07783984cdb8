package diary

import (
	"fmt"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
)

// State is the lifecycle of an (author, day) slot. Transitions are driven by
// time only; nothing is stored when a slot locks.
type State int

const (
	Unwritten State = iota // window open, no entry yet
	Writable               // entry exists, window open
	Locked                 // window closed
)

func (s State) String() string {
	switch s {
	case Unwritten:
		return "unwritten"
	case Writable:
		return "writable"
	case Locked:
		return "locked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateOf derives the slot state for day at now.
func StateOf(now time.Time, day model.Day, written bool) State {
	switch {
	case !IsWritable(now, day):
		return Locked
	case written:
		return Writable
	default:
		return Unwritten
	}
}

// CheckCreate returns the day a new entry written at now is attributed to,
// or ErrAlreadyExpired when that day's window is already closed.
// Duplicate detection belongs to the repository's atomic insert.
func CheckCreate(now time.Time) (model.Day, error) {
	day := EffectiveDay(now)
	if !IsWritable(now, day) {
		return day, fmt.Errorf("%w: %s", errs.ErrAlreadyExpired, day)
	}
	return day, nil
}

// CheckUpdate gates an edit of e by the deadline of e's own day, not by now's day.
func CheckUpdate(now time.Time, e *model.Entry) error {
	if !IsWritable(now, e.Day) {
		return fmt.Errorf("%w: %s closed at %s", errs.ErrWindowClosed, e.Day, Deadline(e.Day).Format(time.RFC3339))
	}
	return nil
}

// ApplyUpdate copies author content into e and bumps UpdatedAt. Revealed is left as is.
func ApplyUpdate(e *model.Entry, in model.EntryInput, now time.Time) {
	e.Title = in.Title
	e.Body = in.Body
	e.UpdatedAt = now
}
