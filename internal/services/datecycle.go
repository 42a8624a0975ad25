package services

import "time"

// Calendar math for recurring billing cycles. Day-of-month values that do not
// exist in a target month are clamped to that month's last day, never
// rejected.

// dateOnly truncates t to midnight in its location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampedDate builds a date clamping day to the month's length. The month may
// be out of the 1..12 range; time.Date normalizes it.
func clampedDate(year int, month time.Month, day int) time.Time {
	norm := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if max := daysIn(norm.Year(), norm.Month()); day > max {
		day = max
	}
	return time.Date(norm.Year(), norm.Month(), day, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the next calendar date whose day-of-month equals day
// and is strictly after ref.
func NextOccurrence(day int, ref time.Time) time.Time {
	ref = dateOnly(ref)
	next := clampedDate(ref.Year(), ref.Month(), day)
	if !next.After(ref) {
		next = clampedDate(ref.Year(), ref.Month()+1, day)
	}
	return next
}

// PeriodWindow brackets ref inside its current cycle. If ref is past this
// month's cutoff the window runs cutoff-to-next-cutoff, otherwise previous
// cutoff to this one.
func PeriodWindow(day int, ref time.Time) (time.Time, time.Time) {
	ref = dateOnly(ref)
	cutoff := clampedDate(ref.Year(), ref.Month(), day)
	if ref.After(cutoff) {
		return cutoff, NextOccurrence(day, cutoff)
	}
	prev := clampedDate(ref.Year(), ref.Month()-1, day)
	return prev, cutoff
}

// ClosedPeriodWindow returns the most recently completed cycle strictly
// before ref, inclusive on both ends. For cutoff day 15 and ref Nov 26 the
// window is Oct 16 through Nov 15; expenses after the end belong to the open
// cycle.
func ClosedPeriodWindow(day int, ref time.Time) (time.Time, time.Time) {
	ref = dateOnly(ref)
	end := clampedDate(ref.Year(), ref.Month(), day)
	if !end.Before(ref) {
		end = clampedDate(ref.Year(), ref.Month()-1, day)
	}
	prevCutoff := clampedDate(end.Year(), end.Month()-1, day)
	return prevCutoff.AddDate(0, 0, 1), end
}

// addMonths advances d by n calendar months, clamping the day when the target
// month is shorter. This differs from time.AddDate, which rolls Jan 31 + 1
// month into March.
func addMonths(d time.Time, n int) time.Time {
	return clampedDate(d.Year(), d.Month()+time.Month(n), d.Day())
}
