package ui

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
	"github.com/rumos-automatic/tasktimeflow/internal/timeline"
)

var noColor bool

// Color definitions for consistent styling across the UI.
var (
	colorUrgent = color.New(color.FgRed, color.Bold)
	colorHigh   = color.New(color.FgYellow)
	colorMedium = color.New(color.FgWhite)
	colorLow    = color.New(color.FgWhite, color.Faint)

	colorHeader = color.New(color.Bold)
	colorStats  = color.New(color.FgGreen)
	colorMuted  = color.New(color.FgWhite, color.Faint)

	// Timeline theme buckets.
	themeColors = map[timeline.Theme]*color.Color{
		timeline.ThemeNight:     color.New(color.FgBlue, color.Faint),
		timeline.ThemeDawn:      color.New(color.FgMagenta),
		timeline.ThemeMorning:   color.New(color.FgCyan),
		timeline.ThemeLunch:     color.New(color.FgGreen),
		timeline.ThemeAfternoon: color.New(color.FgYellow),
		timeline.ThemeEvening:   color.New(color.FgRed),
		timeline.ThemeLate:      color.New(color.FgBlue),
	}
)

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// formatPriority colors a priority tag.
func formatPriority(p task.Priority) string {
	tag := "[" + string(p) + "]"
	switch p {
	case task.PriorityUrgent:
		return colorUrgent.Sprint(tag)
	case task.PriorityHigh:
		return colorHigh.Sprint(tag)
	case task.PriorityLow:
		return colorLow.Sprint(tag)
	default:
		return colorMedium.Sprint(tag)
	}
}

// formatTheme colors an hour label by its time-of-day bucket.
func formatTheme(theme timeline.Theme, s string) string {
	if c, ok := themeColors[theme]; ok {
		return c.Sprint(s)
	}
	return s
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// statusSymbol maps a task status to a one-rune marker.
func statusSymbol(s task.Status) string {
	switch s {
	case task.StatusTodo:
		return "○"
	case task.StatusInProgress:
		return "◐"
	case task.StatusReview:
		return "◎"
	case task.StatusCompleted:
		return "●"
	case task.StatusCancelled:
		return "✗"
	default:
		return "?"
	}
}

// formatDuration renders minutes as "1h30m" style text.
func formatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
