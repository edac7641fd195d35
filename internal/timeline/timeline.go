// Package timeline assembles the 24-hour day view from time blocks and
// scheduled slots.
package timeline

import (
	"fmt"
	"time"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
	"github.com/rumos-automatic/tasktimeflow/internal/timegrid"
)

// Theme is the cosmetic time-of-day bucket for an hour. It is a pure
// function of the hour number.
type Theme string

const (
	ThemeNight     Theme = "night"
	ThemeDawn      Theme = "dawn"
	ThemeMorning   Theme = "morning"
	ThemeLunch     Theme = "lunch"
	ThemeAfternoon Theme = "afternoon"
	ThemeEvening   Theme = "evening"
	ThemeLate      Theme = "late"
)

// ThemeFor buckets an hour into its time-of-day theme.
func ThemeFor(hour int) Theme {
	switch {
	case hour < 6:
		return ThemeNight
	case hour < 9:
		return ThemeDawn
	case hour < 12:
		return ThemeMorning
	case hour < 14:
		return ThemeLunch
	case hour < 18:
		return ThemeAfternoon
	case hour < 22:
		return ThemeEvening
	default:
		return ThemeLate
	}
}

// BlockSegment is a time block's intersection with one hour. Minute offsets
// always span 0-59, including at the block's boundary hours: callers that
// need pixel-accurate partial shading must special-case boundary hours
// themselves. Known simplification.
type BlockSegment struct {
	Block       *task.TimeBlock
	StartMinute int
	EndMinute   int
}

// HourView is the derived display row for one hour of the day. It is rebuilt
// on every refresh and never mutated in place.
type HourView struct {
	Hour    int
	Label   string // "09:00"
	Blocks  []BlockSegment
	Slots   []*task.TimelineSlot
	Working bool
	// Energy is the dominant block energy for the hour; EnergyUnset when no
	// block covers it.
	Energy task.EnergyLevel
	Theme  Theme
}

// Settings carries the display context for a day view.
type Settings struct {
	WorkStart string // "HH:MM"
	WorkEnd   string // "HH:MM"
}

// BuildHours assembles the 24 hour rows for a date from its time blocks and
// timeline slots. The result is a fresh slice; inputs are never mutated.
//
// A block contributes to hour h when h falls inside [StartHour, EndHour) and
// the block is active on the date's weekday. A slot is attributed to every
// hour from its start hour through its end hour inclusive, so a slot ending
// exactly on an hour mark still shows under that hour rather than vanishing.
func BuildHours(date time.Time, blocks []*task.TimeBlock, slots []*task.TimelineSlot, settings Settings) []HourView {
	weekday := date.Weekday()
	workStartHour := timegrid.ClockToMinutes(settings.WorkStart) / 60
	workEndHour := timegrid.ClockToMinutes(settings.WorkEnd) / 60

	hours := make([]HourView, 24)
	for h := 0; h < 24; h++ {
		hv := HourView{
			Hour:    h,
			Label:   fmt.Sprintf("%02d:00", h),
			Working: settings.WorkStart != settings.WorkEnd && h >= workStartHour && h < workEndHour,
			Theme:   ThemeFor(h),
		}

		for _, b := range blocks {
			if b == nil || !b.ContainsHour(h) || !b.ActiveOn(weekday) {
				continue
			}
			hv.Blocks = append(hv.Blocks, BlockSegment{Block: b, StartMinute: 0, EndMinute: 59})
		}

		for _, s := range slots {
			if s == nil {
				continue
			}
			if s.Start.Hour() <= h && h <= s.End.Hour() {
				hv.Slots = append(hv.Slots, s)
			}
		}

		hv.Energy = dominantEnergy(hv.Blocks, h)
		hours[h] = hv
	}
	return hours
}

// dominantEnergy picks the energy of the segment whose block overlaps the
// hour the longest. Blocks are hour-granular, so containing blocks tie at a
// full hour and the first encountered wins.
func dominantEnergy(segments []BlockSegment, hour int) task.EnergyLevel {
	best := task.EnergyUnset
	bestOverlap := 0
	for _, seg := range segments {
		overlap := overlapWithHour(seg.Block, hour)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = seg.Block.Energy
		}
	}
	return best
}

// overlapWithHour returns the minutes of [StartHour,EndHour) falling inside
// the given hour.
func overlapWithHour(b *task.TimeBlock, hour int) int {
	start := max(b.StartHour*60, hour*60)
	end := min(b.EndHour*60, (hour+1)*60)
	if end <= start {
		return 0
	}
	return end - start
}
