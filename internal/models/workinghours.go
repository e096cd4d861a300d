package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkingHours describes one weekday of a business's schedule.
// DayOfWeek uses 0=Sunday .. 6=Saturday. A business owner replaces all seven
// entries atomically; individual entries are otherwise immutable.
type WorkingHours struct {
	ID         uuid.UUID  `json:"id"`
	BusinessID uuid.UUID  `json:"business_id"`
	DayOfWeek  int        `json:"day_of_week"`
	OpenTime   *TimeOfDay `json:"open_time,omitempty"`
	CloseTime  *TimeOfDay `json:"close_time,omitempty"`
	Closed     bool       `json:"closed"`
	BreakStart *TimeOfDay `json:"break_start,omitempty"`
	BreakEnd   *TimeOfDay `json:"break_end,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsOpen reports whether the day has bookable hours.
func (w *WorkingHours) IsOpen() bool {
	return !w.Closed && w.OpenTime != nil && w.CloseTime != nil
}

// HasBreak reports whether a break interval is configured.
func (w *WorkingHours) HasBreak() bool {
	return w.BreakStart != nil && w.BreakEnd != nil
}

// Validate enforces the schedule-entry invariants: an open day needs
// open < close, and a break must be a proper interval inside the open hours.
func (w *WorkingHours) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be 0..6, got %d", w.DayOfWeek)
	}
	if w.Closed {
		return nil
	}
	if w.OpenTime == nil || w.CloseTime == nil {
		return fmt.Errorf("open day %d requires open_time and close_time", w.DayOfWeek)
	}
	if !w.OpenTime.Valid() || !w.CloseTime.Valid() {
		return fmt.Errorf("day %d: time of day out of range", w.DayOfWeek)
	}
	if *w.OpenTime >= *w.CloseTime {
		return fmt.Errorf("day %d: open_time must be before close_time", w.DayOfWeek)
	}
	if (w.BreakStart == nil) != (w.BreakEnd == nil) {
		return fmt.Errorf("day %d: break_start and break_end must both be set or both absent", w.DayOfWeek)
	}
	if w.HasBreak() {
		if *w.BreakStart >= *w.BreakEnd {
			return fmt.Errorf("day %d: break_start must be before break_end", w.DayOfWeek)
		}
		if *w.BreakStart < *w.OpenTime || *w.BreakEnd > *w.CloseTime {
			return fmt.Errorf("day %d: break must lie within open hours", w.DayOfWeek)
		}
	}
	return nil
}

// Weekday converts a calendar date to the 0=Sunday encoding.
func Weekday(date time.Time) int {
	return int(date.Weekday())
}
