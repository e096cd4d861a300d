// Package slots generates candidate booking windows and detects conflicts.
package slots

import (
	"findly/internal/models"
)

// DefaultStepMins is the display cadence between candidate starts. The step
// is independent of the slot length, so long services produce windows that
// overlap each other; callers mark the ineligible ones unavailable instead
// of skipping them.
const DefaultStepMins = 30

// Window is a candidate booking interval within a day.
type Window struct {
	Start models.TimeOfDay
	End   models.TimeOfDay
}

// Generate produces every window of slotDurationMins that starts at open,
// advances by stepMins and still ends at or before close. Pure and
// deterministic; no side effects.
func Generate(open, close models.TimeOfDay, slotDurationMins, stepMins int) []Window {
	if stepMins <= 0 {
		stepMins = DefaultStepMins
	}
	if slotDurationMins <= 0 {
		slotDurationMins = stepMins
	}

	var windows []Window
	for cursor := open; cursor.Add(slotDurationMins) <= close; cursor = cursor.Add(stepMins) {
		windows = append(windows, Window{Start: cursor, End: cursor.Add(slotDurationMins)})
	}
	return windows
}

// Overlaps checks half-open interval overlap: [aStart,aEnd) and [bStart,bEnd)
// overlap iff aStart < bEnd && bStart < aEnd. Touching endpoints do not
// conflict.
func Overlaps(aStart, aEnd, bStart, bEnd models.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// HasConflict reports whether the candidate interval overlaps any existing
// booking that still occupies its slot. Terminal bookings never block.
func HasConflict(start, end models.TimeOfDay, existing []models.Booking) bool {
	for i := range existing {
		b := &existing[i]
		if !b.OccupiesSlot() {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}
