// Package timeofday models wall-clock times without a date, such as an
// office start of 09:00 or a night window edge of 22:00.
package timeofday

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is the number of seconds since midnight, in [0, 86400).
type TimeOfDay int

// New builds a TimeOfDay from hour, minute and second.
func New(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("time of day out of range: %02d:%02d:%02d", hour, minute, second)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// Must is New for constants known to be valid.
func Must(hour, minute int) TimeOfDay {
	t, err := New(hour, minute, 0)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse accepts "HH:MM" or "HH:MM:SS".
func Parse(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return New(t.Hour(), t.Minute(), t.Second())
		}
	}
	return 0, fmt.Errorf("invalid time of day %q: expected HH:MM or HH:MM:SS", s)
}

// FromDuration converts an offset since midnight, wrapping at 24h.
func FromDuration(d time.Duration) TimeOfDay {
	s := int(d/time.Second) % secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}
	return TimeOfDay(s)
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// Duration is the offset since midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

// On anchors t to the calendar date of day (year, month, day only) in loc.
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// String formats as "HH:MM", or "HH:MM:SS" when seconds are set.
func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
