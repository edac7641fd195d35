package task

import (
	"errors"
	"time"
)

// Slot validation errors.
var (
	ErrSlotEndBeforeStart = errors.New("slot end must be after start")
	ErrSlotTooShort       = errors.New("slot must be at least 15 minutes")
)

// MinSlotMinutes is the minimum duration of a timeline slot.
const MinSlotMinutes = 15

// SlotStatus represents the state of a timeline slot.
// It may lag or lead the owning task's status.
type SlotStatus string

const (
	SlotScheduled  SlotStatus = "scheduled"
	SlotInProgress SlotStatus = "in_progress"
	SlotCompleted  SlotStatus = "completed"
	SlotCancelled  SlotStatus = "cancelled"
)

// Valid returns true if the slot status is a known value.
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotScheduled, SlotInProgress, SlotCompleted, SlotCancelled:
		return true
	default:
		return false
	}
}

// TimelineSlot is a scheduled placement of exactly one task at one time range
// on one calendar date. The slot references the task but does not own it:
// deleting a slot leaves the task in place, unscheduled.
type TimelineSlot struct {
	ID     int64
	TaskID int64
	UserID string
	Start  time.Time
	End    time.Time
	// Date is the calendar day the slot is displayed under. It is derived
	// from Start but stored redundantly for querying.
	Date           time.Time
	Status         SlotStatus
	ActualStart    *time.Time // real execution window, distinct from the planned one
	ActualEnd      *time.Time
	CalendarSyncID string // external calendar identifier, empty when unsynced
	CreatedAt      time.Time
}

// NewSlot creates a slot for the given task and time range with validation.
func NewSlot(userID string, taskID int64, start, end time.Time) (*TimelineSlot, error) {
	if !end.After(start) {
		return nil, ErrSlotEndBeforeStart
	}
	if end.Sub(start) < MinSlotMinutes*time.Minute {
		return nil, ErrSlotTooShort
	}

	return &TimelineSlot{
		TaskID:    taskID,
		UserID:    userID,
		Start:     start,
		End:       end,
		Date:      DateOf(start),
		Status:    SlotScheduled,
		CreatedAt: time.Now(),
	}, nil
}

// DateOf returns t truncated to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Duration returns the planned duration in minutes.
func (s *TimelineSlot) Duration() int {
	return int(s.End.Sub(s.Start).Minutes())
}

// IsActive returns true unless the slot has been cancelled.
// Only active slots participate in conflict detection.
func (s *TimelineSlot) IsActive() bool {
	return s.Status != SlotCancelled
}

// OverlapsWith returns true if the two slots share a date and their half-open
// time ranges intersect: [s1,e1) and [s2,e2) overlap iff s1 < e2 and s2 < e1.
func (s *TimelineSlot) OverlapsWith(other *TimelineSlot) bool {
	if other == nil {
		return false
	}
	if !s.Date.Equal(other.Date) {
		return false
	}
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}
