package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rumos-automatic/tasktimeflow/internal/conflict"
	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

// Mutation errors.
var (
	// ErrSlotConflict is returned when a mutation would overlap an existing
	// slot. Use errors.As with *ConflictError to inspect the collisions.
	ErrSlotConflict = errors.New("slot conflicts with existing schedule")

	// ErrMoveNotAtomic is returned when a move failed after the original slot
	// was deleted and could not be restored. The schedule may be missing the
	// slot entirely.
	ErrMoveNotAtomic = errors.New("slot move failed and the original could not be restored")
)

// ConflictError carries the conflicts that blocked a mutation.
type ConflictError struct {
	Conflicts []conflict.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %d conflict(s)", ErrSlotConflict, len(e.Conflicts))
}

// Unwrap lets errors.Is(err, ErrSlotConflict) succeed.
func (e *ConflictError) Unwrap() error { return ErrSlotConflict }

// EventKind classifies a schedule change notification.
type EventKind string

const (
	EventSlotCreated EventKind = "slot_created"
	EventSlotUpdated EventKind = "slot_updated"
	EventSlotDeleted EventKind = "slot_deleted"
)

// Event is pushed to subscribers after a successful mutation. The scheduling
// algorithms themselves never consume these; they exist to drive view
// refreshes.
type Event struct {
	Kind EventKind
	Slot *task.TimelineSlot
}

// Service is the slot mutation boundary. The store performs plain CRUD; this
// service is the call site that enforces the non-overlap invariant via the
// conflict detector before writes reach the repository.
type Service struct {
	repo task.Repository

	mu          sync.Mutex
	subscribers []func(Event)
}

// NewService creates a Service over the given repository.
func NewService(repo task.Repository) *Service {
	return &Service{repo: repo}
}

// Subscribe registers a change listener. Listeners run synchronously after
// each successful mutation, in registration order.
func (s *Service) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Service) notify(ev Event) {
	s.mu.Lock()
	subs := make([]func(Event), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// CreateSlot persists a new slot for a task after checking it against the
// day's existing slots. Returns a *ConflictError when blocked.
func (s *Service) CreateSlot(ctx context.Context, userID string, taskID int64, start, end time.Time) (*task.TimelineSlot, error) {
	if err := s.checkConflicts(ctx, userID, start, end, 0); err != nil {
		return nil, err
	}

	slot, err := task.NewSlot(userID, taskID, start, end)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("creating slot: %w", err)
	}

	s.notify(Event{Kind: EventSlotCreated, Slot: slot})
	return slot, nil
}

// ResizeSlot updates a slot's time range in place, excluding the slot itself
// from the conflict scan.
func (s *Service) ResizeSlot(ctx context.Context, id int64, newStart, newEnd time.Time) (*task.TimelineSlot, error) {
	existing, err := s.repo.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, existing.UserID, newStart, newEnd, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSlot(ctx, id, task.SlotPatch{Start: &newStart, End: &newEnd})
	if err != nil {
		return nil, fmt.Errorf("updating slot: %w", err)
	}

	s.notify(Event{Kind: EventSlotUpdated, Slot: updated})
	return updated, nil
}

// MoveSlot reschedules a slot to a new time range, possibly on another date.
// The store offers no transaction across delete+create, so the move uses a
// compensating action: if the create fails after the delete succeeded, the
// original slot is restored. If even the restore fails, ErrMoveNotAtomic is
// returned and the caller must surface the inconsistency.
func (s *Service) MoveSlot(ctx context.Context, id int64, newStart, newEnd time.Time) (*task.TimelineSlot, error) {
	original, err := s.repo.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, original.UserID, newStart, newEnd, id); err != nil {
		return nil, err
	}

	moved, err := task.NewSlot(original.UserID, original.TaskID, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	moved.Status = original.Status
	moved.CalendarSyncID = original.CalendarSyncID

	if err := s.repo.DeleteSlot(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting slot for move: %w", err)
	}

	if err := s.repo.CreateSlot(ctx, moved); err != nil {
		// Compensate: put the original back.
		restore := *original
		restore.ID = 0
		if restoreErr := s.repo.CreateSlot(ctx, &restore); restoreErr != nil {
			return nil, fmt.Errorf("%w: create failed (%v), restore failed (%v)",
				ErrMoveNotAtomic, err, restoreErr)
		}
		return nil, fmt.Errorf("moving slot: %w", err)
	}

	s.notify(Event{Kind: EventSlotUpdated, Slot: moved})
	return moved, nil
}

// Unschedule deletes a slot. No task mutation cascades from this: the task
// reverts to unscheduled simply because no slot references it anymore.
func (s *Service) Unschedule(ctx context.Context, id int64) error {
	slot, err := s.repo.GetSlot(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSlot(ctx, id); err != nil {
		return fmt.Errorf("deleting slot: %w", err)
	}

	s.notify(Event{Kind: EventSlotDeleted, Slot: slot})
	return nil
}

// ListDay returns a user's slots for a calendar date, ordered by start time.
func (s *Service) ListDay(ctx context.Context, date time.Time, userID string) ([]*task.TimelineSlot, error) {
	return s.repo.ListSlotsByDate(ctx, date, userID, task.SlotFilter{})
}

// checkConflicts scans the candidate range against the same-day slots,
// excluding excludeID (0 excludes nothing).
func (s *Service) checkConflicts(ctx context.Context, userID string, start, end time.Time, excludeID int64) error {
	existing, err := s.repo.ListSlotsByDate(ctx, task.DateOf(start), userID, task.SlotFilter{})
	if err != nil {
		return fmt.Errorf("listing slots for conflict check: %w", err)
	}

	if excludeID != 0 {
		filtered := existing[:0]
		for _, sl := range existing {
			if sl.ID != excludeID {
				filtered = append(filtered, sl)
			}
		}
		existing = filtered
	}

	conflicts := conflict.Detect(existing, start, end)
	if conflict.HasBlocking(conflicts) {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}
