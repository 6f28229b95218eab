// Package booking implements appointment scheduling: slot generation,
// conflict detection and the booking workflow.
package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// transitions lists the allowed explicit status changes.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the explicit change s -> next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Blocking reports whether an appointment in this status occupies its time
// window for conflict purposes.
func (s Status) Blocking() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// Appointment is a booked time interval for a professional.
type Appointment struct {
	ID             uuid.UUID  `json:"id"`
	ProfessionalID uuid.UUID  `json:"professional_id"`
	ServiceID      uuid.UUID  `json:"service_id"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	ClientName     string     `json:"client_name"`
	ClientPhone    string     `json:"client_phone"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          time.Time  `json:"end_at"`
	DurationMin    int        `json:"duration_min"`
	Status         Status     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Overlaps reports whether the appointment's half-open interval
// [StartAt, EndAt) intersects [start, end). Touching endpoints do not count.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return Overlaps(a.StartAt, a.EndAt, start, end)
}

// BlocksAt reports whether the appointment should block other bookings at
// instant now: it must hold a blocking status and not already be in the past.
// A past appointment never blocks future slots even if it was never marked
// completed.
func (a *Appointment) BlocksAt(now time.Time) bool {
	return a.Status.Blocking() && !a.EndAt.Before(now)
}

// DeriveStatus reconciles the stored status with time: an explicit
// cancellation always wins, an appointment whose end has passed reads as
// completed, otherwise the stored status stands (default scheduled).
func DeriveStatus(a *Appointment, now time.Time) Status {
	if a.Status == StatusCancelled || a.Status == StatusNoShow {
		return a.Status
	}
	if a.EndAt.Before(now) {
		return StatusCompleted
	}
	if a.Status == "" {
		return StatusScheduled
	}
	return a.Status
}
