package task

import (
	"context"
	"time"
)

// SlotPatch describes a partial update to a timeline slot. Nil fields are
// left unchanged.
type SlotPatch struct {
	Start          *time.Time
	End            *time.Time
	Status         *SlotStatus
	ActualStart    *time.Time
	ActualEnd      *time.Time
	CalendarSyncID *string
}

// SlotFilter narrows slot queries. Zero values match everything.
type SlotFilter struct {
	Status SlotStatus
	TaskID int64
}

// Repository defines the storage boundary for tasks, timeline slots and time
// blocks. The store performs plain row CRUD: it does not enforce the
// non-overlap invariant, which is checked by callers before persistence.
type Repository interface {
	// CreateTask adds a new task.
	CreateTask(ctx context.Context, t *Task) error

	// GetTask retrieves a task by ID. Returns ErrTaskNotFound if missing.
	GetTask(ctx context.Context, id int64) (*Task, error)

	// ListTasks returns tasks for a user, optionally filtered by status.
	// An empty status matches all.
	ListTasks(ctx context.Context, userID string, status Status) ([]*Task, error)

	// UpdateTaskStatus transitions a task to the given status.
	UpdateTaskStatus(ctx context.Context, id int64, status Status) error

	// DeleteTask removes a task and, through the store's foreign key, its slots.
	DeleteTask(ctx context.Context, id int64) error

	// CreateSlot adds a new timeline slot.
	CreateSlot(ctx context.Context, s *TimelineSlot) error

	// GetSlot retrieves a slot by ID. Returns ErrSlotNotFound if missing.
	GetSlot(ctx context.Context, id int64) (*TimelineSlot, error)

	// UpdateSlot applies a partial update. Returns ErrSlotNotFound if missing.
	UpdateSlot(ctx context.Context, id int64, patch SlotPatch) (*TimelineSlot, error)

	// DeleteSlot removes a slot. The owning task is not touched: it simply
	// reverts to unscheduled because no slot references it anymore.
	DeleteSlot(ctx context.Context, id int64) error

	// ListSlotsByDate returns a user's slots on a calendar date ordered by
	// start time, narrowed by the optional filter.
	ListSlotsByDate(ctx context.Context, date time.Time, userID string, filter SlotFilter) ([]*TimelineSlot, error)

	// CreateTimeBlock adds a recurring time block.
	CreateTimeBlock(ctx context.Context, b *TimeBlock) error

	// ListTimeBlocks returns a user's time blocks ordered by start hour.
	ListTimeBlocks(ctx context.Context, userID string) ([]*TimeBlock, error)

	// Close releases any resources held by the repository.
	Close() error
}
