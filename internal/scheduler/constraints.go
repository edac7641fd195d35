package scheduler

import (
	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

// WorkingHours is the window the auto-scheduler places tasks into.
type WorkingHours struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// Goal is one weighted optimization objective passed through to the AI
// optimizer, e.g. {"maximize_productivity", 0.5}.
type Goal struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Constraints configures a scheduling request. Construct with
// DefaultConstraints and override as needed; defaults live here and nowhere
// else.
type Constraints struct {
	WorkingHours          WorkingHours
	BufferMinutes         int // gap inserted between consecutive scheduled slots
	BreakMinutes          int
	MaxConsecutiveMinutes int
	RespectEnergy         bool
	RespectContext        bool
	Goals                 []Goal
}

// DefaultConstraints returns the standard scheduling configuration.
func DefaultConstraints() Constraints {
	return Constraints{
		WorkingHours:          WorkingHours{Start: "09:00", End: "18:00"},
		BufferMinutes:         15,
		BreakMinutes:          60,
		MaxConsecutiveMinutes: 120,
		RespectEnergy:         true,
		RespectContext:        true,
		Goals: []Goal{
			{Name: "maximize_productivity", Weight: 0.5},
			{Name: "balance_energy", Weight: 0.3},
			{Name: "respect_deadlines", Weight: 0.2},
		},
	}
}

// Score computes a task's scheduling priority: the sum of its priority weight
// (urgent 4, high 3, medium 2, low 1) and its energy weight (high 3, medium 2,
// low 1, with an unset energy counting as medium).
func Score(t *task.Task) int {
	return t.Priority.Weight() + t.Energy.Weight()
}
