package booking

import "time"

// Slot is a candidate appointment start consistent with a working-hours
// window and non-conflicting with existing bookings.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GenerateSlots produces the ordered bookable start times inside a working
// window. Candidates begin at open and advance by step; generation stops once
// start+duration would run past close. A candidate is kept only when it is
// not in the past and its half-open interval does not overlap any existing
// appointment that still blocks (non-cancelled, not already ended).
//
// The step is fixed and independent of the service duration; every booking
// is still conflict-checked at write time.
func GenerateSlots(open, close time.Time, duration, step time.Duration, existing []Appointment, now time.Time) []Slot {
	if duration <= 0 || step <= 0 || !open.Before(close) {
		return nil
	}

	// Past appointments never block future slots, even if never explicitly
	// marked completed.
	blocking := existing[:0:0]
	for i := range existing {
		if existing[i].BlocksAt(now) {
			blocking = append(blocking, existing[i])
		}
	}

	var slots []Slot
	for start := open; !start.Add(duration).After(close); start = start.Add(step) {
		if start.Before(now) {
			continue
		}
		end := start.Add(duration)
		if ConflictsWith(blocking, start, end, "") {
			continue
		}
		slots = append(slots, Slot{Start: start, End: end})
	}
	return slots
}
