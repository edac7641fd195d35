// Package scheduler places tasks into a day's working hours and guards slot
// mutations with conflict checks.
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
	"github.com/rumos-automatic/tasktimeflow/internal/timegrid"
)

// AutoScheduler greedily packs a prioritized task list into a day's working
// hours. It is deliberately greedy rather than globally optimal: simple,
// deterministic, and side-effect driven — each accepted slot is persisted
// immediately, so a failure partway through leaves a partial schedule.
type AutoScheduler struct {
	repo task.Repository
}

// NewAutoScheduler creates an AutoScheduler backed by the given repository.
func NewAutoScheduler(repo task.Repository) *AutoScheduler {
	return &AutoScheduler{repo: repo}
}

// Schedule places tasks on the given date under the constraints and returns
// the slots actually created, in creation order.
//
// Tasks are taken in descending Score order (stable, so ties keep input
// order). A cursor starts at the working-hours start; each task consumes its
// estimated duration (default 60 minutes) followed by the buffer. A task
// whose candidate end reaches the working-hours end hour is skipped silently:
// the cursor does not advance, no error is reported, and callers inspect the
// returned list to learn what was left out. A create that the store rejects
// is likewise a skip, not an abort.
//
// Slot creation is strictly sequential; the cursor for task N+1 depends on
// the accept/skip decision for task N.
func (a *AutoScheduler) Schedule(ctx context.Context, tasks []*task.Task, date time.Time, constraints Constraints) ([]*task.TimelineSlot, error) {
	ordered := make([]*task.Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return Score(ordered[i]) > Score(ordered[j])
	})

	startMinutes := timegrid.ClockToMinutes(constraints.WorkingHours.Start)
	endHour := timegrid.ClockToMinutes(constraints.WorkingHours.End) / 60

	day := task.DateOf(date)
	cursor := day.Add(time.Duration(startMinutes) * time.Minute)

	var created []*task.TimelineSlot
	for _, t := range ordered {
		duration := t.EstimateOrDefault()
		candidateEnd := cursor.Add(time.Duration(duration) * time.Minute)

		// Does not fit in the working window: skip without advancing.
		if candidateEnd.Hour() >= endHour {
			continue
		}
		if !task.DateOf(candidateEnd).Equal(day) {
			// Ran past midnight; nothing later will fit either, but stay
			// faithful to the per-task skip rule.
			continue
		}

		slot, err := task.NewSlot(t.UserID, t.ID, cursor, candidateEnd)
		if err != nil {
			continue
		}
		if err := a.repo.CreateSlot(ctx, slot); err != nil {
			// Partial-success policy: this task just did not get scheduled.
			continue
		}

		created = append(created, slot)
		cursor = candidateEnd.Add(time.Duration(constraints.BufferMinutes) * time.Minute)
	}

	return created, nil
}
