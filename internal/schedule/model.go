// Package schedule manages per-professional working-hours windows.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNoWindow signals that the professional has no working hours defined for
// the requested weekday (closed that day). It is distinct from store failures.
var ErrNoWindow = errors.New("schedule: no working hours for that day")

// WorkingHours is the opening window for one weekday. At most one window
// exists per (professional, weekday); the store enforces this with a unique
// index.
type WorkingHours struct {
	ID             uuid.UUID    `json:"id"`
	ProfessionalID uuid.UUID    `json:"professional_id"`
	Weekday        time.Weekday `json:"weekday"`
	OpensAt        string       `json:"opens_at"`  // "09:00"
	ClosesAt       string       `json:"closes_at"` // "18:00"
}

// Validate checks the window's invariants: a real weekday, parseable times,
// opening strictly before closing.
func (w *WorkingHours) Validate() error {
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday %d", w.Weekday)
	}
	open, err := parseClock(w.OpensAt)
	if err != nil {
		return fmt.Errorf("invalid opening time %q: %w", w.OpensAt, err)
	}
	close, err := parseClock(w.ClosesAt)
	if err != nil {
		return fmt.Errorf("invalid closing time %q: %w", w.ClosesAt, err)
	}
	if !open.Before(close) {
		return fmt.Errorf("opening time %s must be before closing time %s", w.OpensAt, w.ClosesAt)
	}
	return nil
}

// Bounds anchors the window's clock times onto the given calendar date, in
// that date's location.
func (w *WorkingHours) Bounds(date time.Time) (open, close time.Time, err error) {
	open, err = atClock(date, w.OpensAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("opening time: %w", err)
	}
	close, err = atClock(date, w.ClosesAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("closing time: %w", err)
	}
	return open, close, nil
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}

func atClock(date time.Time, clock string) (time.Time, error) {
	t, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
