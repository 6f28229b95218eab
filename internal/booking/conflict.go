package booking

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. An appointment ending exactly when another starts
// is not a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictsWith reports whether the proposed interval [start, end) overlaps
// any appointment in existing that still holds a blocking status. Appointments
// matching excludeID are skipped so an update can be validated against all
// other bookings.
func ConflictsWith(existing []Appointment, start, end time.Time, excludeID string) bool {
	for i := range existing {
		a := &existing[i]
		if excludeID != "" && a.ID.String() == excludeID {
			continue
		}
		if !a.Status.Blocking() {
			continue
		}
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}
