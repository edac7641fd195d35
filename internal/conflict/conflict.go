// Package conflict detects overlap conflicts between a candidate time range
// and already scheduled timeline slots.
package conflict

import (
	"time"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

// Type classifies a conflict.
type Type string

// TypeOverlap marks a time-range collision (or an invalid candidate range).
const TypeOverlap Type = "overlap"

// Severity grades how blocking a conflict is.
type Severity string

const (
	// SeverityError blocks persistence at call sites that enforce the
	// non-overlap invariant.
	SeverityError Severity = "error"
	// SeverityWarning is advisory only.
	SeverityWarning Severity = "warning"
)

// Resolution messages surfaced with conflicts. The presentation layer may
// localize them; the classification is what callers branch on.
const (
	resolutionAdjust       = "adjust timing or move the conflicting task"
	resolutionInvalidRange = "end must be after start"
)

// Conflict describes one collision between a candidate range and existing slots.
type Conflict struct {
	Type     Type
	Severity Severity
	// Start and End bound the intersection window. For an invalid candidate
	// range they echo the candidate itself.
	Start time.Time
	End   time.Time
	// Slots holds the colliding slots; empty for local validation conflicts.
	Slots      []*task.TimelineSlot
	Resolution string
}

// Detect compares a candidate [start,end) range against existing slots and
// returns every conflict found. Intervals collide under the half-open test:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 and s2 < e1, so a candidate that
// merely touches a slot boundary does not conflict.
//
// A misordered candidate (end <= start) yields exactly one local validation
// conflict and skips the overlap scan. Cancelled slots never collide. The
// caller decides whether any error-severity conflict blocks persistence.
func Detect(existing []*task.TimelineSlot, start, end time.Time) []Conflict {
	if !end.After(start) {
		return []Conflict{{
			Type:       TypeOverlap,
			Severity:   SeverityError,
			Start:      start,
			End:        end,
			Resolution: resolutionInvalidRange,
		}}
	}

	var conflicts []Conflict
	for _, s := range existing {
		if s == nil || !s.IsActive() {
			continue
		}
		if !(start.Before(s.End) && s.Start.Before(end)) {
			continue
		}

		conflicts = append(conflicts, Conflict{
			Type:       TypeOverlap,
			Severity:   SeverityError,
			Start:      laterOf(start, s.Start),
			End:        earlierOf(end, s.End),
			Slots:      []*task.TimelineSlot{s},
			Resolution: resolutionAdjust,
		})
	}
	return conflicts
}

// HasBlocking returns true if any conflict has error severity.
func HasBlocking(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
