// Package daywindow defines the organizational day used for attendance
// accounting. The day does not start at midnight: check-ins before the
// cutoff hour belong to the previous calendar day, so a night shift that
// badges in at 02:00 still counts toward the shift that started the evening
// before.
package daywindow

import "time"

// CutoffHour is the site-local hour at which one attendance day ends and the
// next begins.
const CutoffHour = 5

// Range returns the half-open window [start, end) containing now. Both
// bounds fall exactly on the cutoff hour and the window is always 24 hours.
func Range(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)

	day := local
	if local.Hour() < CutoffHour {
		day = day.AddDate(0, 0, -1)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), CutoffHour, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end
}

// contains reports whether t falls inside the window that now belongs to.
// The attendance queries filter on Range bounds in SQL; this exists to pin
// the half-open boundary semantics.
func contains(now, t time.Time, loc *time.Location) bool {
	start, end := Range(now, loc)
	return !t.Before(start) && t.Before(end)
}
