// Package accounting derives lateness, breaks, overtime, night differential
// and MPL quotas from raw timestamps. Every function is pure and total:
// reversed or partial inputs contribute zero instead of failing.
package accounting

import (
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/timeofday"
)

// Overlap returns how long [startA, endA] and [startB, endB] intersect.
func Overlap(startA, endA, startB, endB time.Time) time.Duration {
	start := startA
	if startB.After(start) {
		start = startB
	}
	end := endA
	if endB.Before(end) {
		end = endB
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// Minutes converts d to whole minutes, floored. Negative durations are zero.
func Minutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// DayWindow anchors a time-of-day range to the calendar date of day. A range
// whose end is not after its start wraps into the next day.
func DayWindow(day time.Time, from, to timeofday.TimeOfDay, loc *time.Location) (start, end time.Time) {
	start = from.On(day, loc)
	if to > from {
		return start, to.On(day, loc)
	}
	next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
	return start, to.On(next, loc)
}

// NightOverlap sums the overlap of [start, end] with the night window
// anchored on every day the interval can touch, starting with the day before
// start so a window opened the previous evening is counted too.
func NightOverlap(start, end time.Time, nightFrom, nightTo timeofday.TimeOfDay, loc *time.Location) time.Duration {
	if !end.After(start) || nightFrom == nightTo {
		return 0
	}

	first := start.In(loc)
	last := end.In(loc)
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)

	var total time.Duration
	for day := time.Date(first.Year(), first.Month(), first.Day()-1, 0, 0, 0, 0, loc); !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		nightStart, nightEnd := DayWindow(day, nightFrom, nightTo, loc)
		total += Overlap(start, end, nightStart, nightEnd)
	}
	return total
}
