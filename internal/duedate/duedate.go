// Package duedate turns a task's calendar due date into a remaining-time label.
package duedate

import (
	"errors"
	"fmt"
	"time"
)

const (
	LabelNoDueDate = "No Due Date"
	LabelInvalid   = "Invalid Due Date"
	LabelExpired   = "Expired"

	DateLayout = "2006-01-02"
)

var ErrInvalidDate = errors.New("invalid due date")

// Parse reads a due date as a calendar date in loc. RFC 3339 timestamps are
// accepted too; only their calendar date is kept.
func Parse(due string, loc *time.Location) (time.Time, error) {
	if d, err := time.ParseInLocation(DateLayout, due, loc); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, due)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, due)
	}
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// EndOfDay is the last millisecond of the calendar day of t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Remaining renders the time left until the end of the due day, e.g. "2d 5h 13m".
// The day component is always present.
func Remaining(due string, now time.Time) string {
	if due == "" {
		return LabelNoDueDate
	}
	d, err := Parse(due, now.Location())
	if err != nil {
		return LabelInvalid
	}
	deadline := EndOfDay(d)
	if deadline.Before(now) {
		return LabelExpired
	}

	ms := deadline.Sub(now).Milliseconds()
	days := ms / (24 * 60 * 60 * 1000)
	hours := ms / (60 * 60 * 1000) % 24
	minutes := ms / (60 * 1000) % 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

// Elapsed reports whether the due day has fully passed. Tasks without a
// parseable due date never elapse.
func Elapsed(due string, now time.Time) bool {
	return Remaining(due, now) == LabelExpired
}
