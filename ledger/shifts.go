/*
shifts.go - Time shift windows

PURPOSE:
  Pure clock arithmetic over "HH:MM" shift windows. A shift may wrap past
  midnight (Night 22:00-06:00), so "has this shift finished for today" is
  not a plain end-time comparison.
*/
package ledger

import (
	"fmt"
	"time"
)

// DefaultShifts seeds a new installation.
var DefaultShifts = []TimeShift{
	{Name: "Morning", Start: "06:00", End: "14:00"},
	{Name: "Evening", Start: "14:00", End: "22:00"},
	{Name: "Night", Start: "22:00", End: "06:00"},
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("bad clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad clock value %q", s)
	}
	return h*60 + m, nil
}

// ShiftComplete reports whether the shift has already ended at the given
// wall time. For a window that wraps midnight, the shift that started
// yesterday evening is complete once the clock passes End and stays
// complete until the window reopens at Start.
func ShiftComplete(shift TimeShift, at time.Time) bool {
	start, err := parseClock(shift.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(shift.End)
	if err != nil {
		return false
	}
	now := at.Hour()*60 + at.Minute()

	if start < end {
		return now >= end
	}
	// Wraps midnight: complete in the gap between End and Start.
	return now >= end && now < start
}
