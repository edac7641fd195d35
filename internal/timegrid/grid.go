// Package timegrid maps clock time to and from the timeline's minute grid.
package timegrid

import (
	"fmt"
	"time"
)

// DefaultInterval is the grid granularity slot boundaries snap to.
const DefaultInterval = 15

// MinSlotMinutes is the minimum valid slot duration.
const MinSlotMinutes = 15

// GridPosition locates a wall-clock time on the day grid. PixelOffset is
// linear in minutes since midnight at one pixel per minute; view layers apply
// their own row scaling on top.
type GridPosition struct {
	Hour        int
	Minute      int
	PixelOffset int
}

// ToGridPosition converts a timestamp to its position on the day grid.
func ToGridPosition(t time.Time) GridPosition {
	return GridPosition{
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		PixelOffset: t.Hour()*60 + t.Minute(),
	}
}

// FromGridPosition converts a grid position back to a timestamp on the given
// date. Hour is clamped to [0,23] and minute to [0,59].
func FromGridPosition(hour, minute int, date time.Time) time.Time {
	hour = clamp(hour, 0, 23)
	minute = clamp(minute, 0, 59)
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// SnapToGrid rounds a minute offset to the nearest multiple of the grid
// interval using round-half-up, so repeated snapping is idempotent.
// A non-positive interval returns the input unchanged.
func SnapToGrid(minute, interval int) int {
	if interval <= 0 {
		return minute
	}
	return ((minute + interval/2) / interval) * interval
}

// DurationMinutes returns end minus start in whole minutes. The result is
// negative when the range is misordered; callers must validate.
func DurationMinutes(start, end time.Time) int {
	return int(end.Sub(start).Minutes())
}

// IsValidRange returns true iff end is after start and the range spans at
// least MinSlotMinutes.
func IsValidRange(start, end time.Time) bool {
	return end.After(start) && DurationMinutes(start, end) >= MinSlotMinutes
}

// MinutesSinceMidnight returns the minute offset of t within its day.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// MinutesToClock converts minutes since midnight to "HH:MM", clamped to the day.
func MinutesToClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ClockToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for malformed input.
func ClockToMinutes(s string) int {
	if len(s) < 5 || s[2] != ':' {
		return 0
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0
	}
	return h*60 + m
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
