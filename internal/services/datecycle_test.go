package services

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		day  int
		ref  time.Time
		want time.Time
	}{
		{"later this month", 15, date(2025, time.November, 3), date(2025, time.November, 15)},
		{"already passed", 15, date(2025, time.November, 20), date(2025, time.December, 15)},
		{"on the day rolls forward", 15, date(2025, time.November, 15), date(2025, time.December, 15)},
		{"clamped in february", 31, date(2025, time.February, 15), date(2025, time.February, 28)},
		{"clamped in leap february", 31, date(2024, time.February, 15), date(2024, time.February, 29)},
		{"december wraps year", 10, date(2025, time.December, 20), date(2026, time.January, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOccurrence(tt.day, tt.ref))
		})
	}
}

func TestPeriodWindow(t *testing.T) {
	// Past this month's cutoff: window runs cutoff to next cutoff.
	start, end := PeriodWindow(15, date(2025, time.November, 26))
	assert.Equal(t, date(2025, time.November, 15), start)
	assert.Equal(t, date(2025, time.December, 15), end)

	// Before the cutoff: previous cutoff to this one.
	start, end = PeriodWindow(15, date(2025, time.November, 10))
	assert.Equal(t, date(2025, time.October, 15), start)
	assert.Equal(t, date(2025, time.November, 15), end)
}

func TestClosedPeriodWindow(t *testing.T) {
	// Statement scenario: cutoff day 15, today Nov 26.
	start, end := ClosedPeriodWindow(15, date(2025, time.November, 26))
	assert.Equal(t, date(2025, time.October, 16), start)
	assert.Equal(t, date(2025, time.November, 15), end)

	// Before this month's cutoff the closed cycle ended last month.
	start, end = ClosedPeriodWindow(15, date(2025, time.November, 10))
	assert.Equal(t, date(2025, time.September, 16), start)
	assert.Equal(t, date(2025, time.October, 15), end)
}

func TestClosedAndOpenCyclesPartitionTime(t *testing.T) {
	// Walk a span of reference dates around the cutoff boundary: the closed
	// window must end exactly where the open cycle begins, with no gap and no
	// double-counted day.
	for _, day := range []int{1, 15, 28} {
		ref := date(2025, time.January, 1)
		for i := 0; i < 120; i++ {
			closedStart, closedEnd := ClosedPeriodWindow(day, ref)
			openStart, _ := PeriodWindow(day, ref)

			assert.True(t, closedStart.Before(closedEnd))
			assert.True(t, closedEnd.Before(ref))
			if ref.After(clampedDate(ref.Year(), ref.Month(), day)) {
				// Open cycle anchored at the cutoff the closed window ended on.
				assert.Equal(t, closedEnd, openStart)
			}
			ref = ref.AddDate(0, 0, 1)
		}
	}
}

func TestAddMonthsClampsShortMonths(t *testing.T) {
	assert.Equal(t, date(2025, time.February, 28), addMonths(date(2025, time.January, 31), 1))
	assert.Equal(t, date(2024, time.February, 29), addMonths(date(2024, time.January, 31), 1))
	assert.Equal(t, date(2025, time.March, 31), addMonths(date(2025, time.January, 31), 2))
	assert.Equal(t, date(2026, time.January, 15), addMonths(date(2025, time.December, 15), 1))
}
