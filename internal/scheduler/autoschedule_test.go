package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

// fakeRepo is an in-memory task.Repository for scheduler tests.
type fakeRepo struct {
	tasks  map[int64]*task.Task
	slots  map[int64]*task.TimelineSlot
	blocks []*task.TimeBlock
	nextID int64

	failCreateSlotFor map[int64]bool // task IDs whose slot creation fails
	failDeleteSlot    bool
	createCalls       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:             make(map[int64]*task.Task),
		slots:             make(map[int64]*task.TimelineSlot),
		failCreateSlotFor: make(map[int64]bool),
	}
}

func (r *fakeRepo) CreateTask(_ context.Context, t *task.Task) error {
	r.nextID++
	t.ID = r.nextID
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeRepo) GetTask(_ context.Context, id int64) (*task.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}

func (r *fakeRepo) ListTasks(_ context.Context, userID string, status task.Status) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range r.tasks {
		if t.UserID == userID && (status == "" || t.Status == status) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateTaskStatus(_ context.Context, id int64, status task.Status) error {
	t, ok := r.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeRepo) DeleteTask(_ context.Context, id int64) error {
	delete(r.tasks, id)
	return nil
}

func (r *fakeRepo) CreateSlot(_ context.Context, s *task.TimelineSlot) error {
	r.createCalls++
	if r.failCreateSlotFor[s.TaskID] {
		return errors.New("store rejected write")
	}
	r.nextID++
	s.ID = r.nextID
	r.slots[s.ID] = s
	return nil
}

func (r *fakeRepo) GetSlot(_ context.Context, id int64) (*task.TimelineSlot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, task.ErrSlotNotFound
	}
	return s, nil
}

func (r *fakeRepo) UpdateSlot(_ context.Context, id int64, patch task.SlotPatch) (*task.TimelineSlot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, task.ErrSlotNotFound
	}
	if patch.Start != nil {
		s.Start = *patch.Start
		s.Date = task.DateOf(*patch.Start)
	}
	if patch.End != nil {
		s.End = *patch.End
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	return s, nil
}

func (r *fakeRepo) DeleteSlot(_ context.Context, id int64) error {
	if r.failDeleteSlot {
		return errors.New("store rejected delete")
	}
	if _, ok := r.slots[id]; !ok {
		return task.ErrSlotNotFound
	}
	delete(r.slots, id)
	return nil
}

func (r *fakeRepo) ListSlotsByDate(_ context.Context, date time.Time, userID string, filter task.SlotFilter) ([]*task.TimelineSlot, error) {
	var out []*task.TimelineSlot
	for _, s := range r.slots {
		if !s.Date.Equal(task.DateOf(date)) || s.UserID != userID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.TaskID != 0 && s.TaskID != filter.TaskID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepo) CreateTimeBlock(_ context.Context, b *task.TimeBlock) error {
	r.nextID++
	b.ID = r.nextID
	r.blocks = append(r.blocks, b)
	return nil
}

func (r *fakeRepo) ListTimeBlocks(_ context.Context, userID string) ([]*task.TimeBlock, error) {
	var out []*task.TimeBlock
	for _, b := range r.blocks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) Close() error { return nil }

func newTask(id int64, title string, priority task.Priority, energy task.EnergyLevel, minutes int) *task.Task {
	return &task.Task{
		ID:               id,
		UserID:           "u1",
		Title:            title,
		Priority:         priority,
		Energy:           energy,
		EstimatedMinutes: minutes,
		Status:           task.StatusTodo,
	}
}

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

func workConstraints(start, end string, buffer int) Constraints {
	c := DefaultConstraints()
	c.WorkingHours = WorkingHours{Start: start, End: end}
	c.BufferMinutes = buffer
	return c
}

func TestSchedule_PriorityOrdering(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	// A scores 2 (low+low), B scores 7 (urgent+high). B must come first
	// regardless of input order.
	a := newTask(1, "A", task.PriorityLow, task.EnergyLow, 60)
	b := newTask(2, "B", task.PriorityUrgent, task.EnergyHigh, 60)

	slots, err := sched.Schedule(context.Background(), []*task.Task{a, b}, testDay, workConstraints("09:00", "18:00", 15))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].TaskID != 2 || slots[1].TaskID != 1 {
		t.Errorf("expected B then A, got task %d then %d", slots[0].TaskID, slots[1].TaskID)
	}
	if slots[0].Start.Hour() != 9 || slots[0].Start.Minute() != 0 {
		t.Errorf("first slot should start at working hours start, got %v", slots[0].Start)
	}
}

func TestSchedule_StableTieBreak(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	// Equal scores keep the input order.
	a := newTask(1, "first", task.PriorityMedium, task.EnergyMedium, 30)
	b := newTask(2, "second", task.PriorityMedium, task.EnergyMedium, 30)

	slots, err := sched.Schedule(context.Background(), []*task.Task{a, b}, testDay, workConstraints("09:00", "18:00", 0))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 2 || slots[0].TaskID != 1 || slots[1].TaskID != 2 {
		t.Fatalf("stable sort violated: %+v", slotTaskIDs(slots))
	}
}

func TestSchedule_MonotonicCursor(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	tasks := []*task.Task{
		newTask(1, "t1", task.PriorityHigh, task.EnergyHigh, 45),
		newTask(2, "t2", task.PriorityHigh, task.EnergyMedium, 30),
		newTask(3, "t3", task.PriorityMedium, task.EnergyMedium, 60),
	}
	buffer := 15
	slots, err := sched.Schedule(context.Background(), tasks, testDay, workConstraints("09:00", "18:00", buffer))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		minStart := slots[i-1].End.Add(time.Duration(buffer) * time.Minute)
		if slots[i].Start.Before(minStart) {
			t.Errorf("slot %d starts %v, before previous end + buffer (%v)", i, slots[i].Start, minStart)
		}
	}
}

func TestSchedule_SkipWhenDoesNotFit(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	// 90 minutes cannot fit into a 09:00-10:00 window: zero slots, not a
	// clipped one.
	oversized := newTask(1, "won't fit", task.PriorityUrgent, task.EnergyHigh, 90)

	slots, err := sched.Schedule(context.Background(), []*task.Task{oversized}, testDay, workConstraints("09:00", "10:00", 0))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected zero slots, got %d", len(slots))
	}
}

func TestSchedule_SkipDoesNotAdvanceCursor(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	// The oversized task is skipped; the short one still lands at 09:00.
	big := newTask(1, "big", task.PriorityUrgent, task.EnergyHigh, 600)
	small := newTask(2, "small", task.PriorityLow, task.EnergyLow, 30)

	slots, err := sched.Schedule(context.Background(), []*task.Task{big, small}, testDay, workConstraints("09:00", "12:00", 0))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].TaskID != 2 {
		t.Errorf("expected the small task, got task %d", slots[0].TaskID)
	}
	if slots[0].Start.Hour() != 9 || slots[0].Start.Minute() != 0 {
		t.Errorf("skip must not advance the cursor; slot starts %v", slots[0].Start)
	}
}

func TestSchedule_DefaultDuration(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	// Zero estimate still consumes the 60-minute fallback.
	unestimated := newTask(1, "no estimate", task.PriorityMedium, task.EnergyMedium, 0)

	slots, err := sched.Schedule(context.Background(), []*task.Task{unestimated}, testDay, workConstraints("09:00", "18:00", 0))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if d := slots[0].Duration(); d != 60 {
		t.Errorf("expected 60-minute default duration, got %d", d)
	}
}

func TestSchedule_InvertedWorkingHoursSkipsEverything(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	tasks := []*task.Task{
		newTask(1, "t1", task.PriorityHigh, task.EnergyHigh, 30),
		newTask(2, "t2", task.PriorityLow, task.EnergyLow, 30),
	}

	slots, err := sched.Schedule(context.Background(), tasks, testDay, workConstraints("17:00", "09:00", 0))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected zero slots with inverted working hours, got %d", len(slots))
	}
}

func TestSchedule_FailedCreateIsPartialSuccess(t *testing.T) {
	repo := newFakeRepo()
	repo.failCreateSlotFor[1] = true
	sched := NewAutoScheduler(repo)

	failing := newTask(1, "rejected", task.PriorityUrgent, task.EnergyHigh, 30)
	ok := newTask(2, "accepted", task.PriorityLow, task.EnergyLow, 30)

	slots, err := sched.Schedule(context.Background(), []*task.Task{failing, ok}, testDay, workConstraints("09:00", "18:00", 0))
	if err != nil {
		t.Fatalf("Schedule must not abort on a failed create: %v", err)
	}
	if len(slots) != 1 || slots[0].TaskID != 2 {
		t.Fatalf("expected only the accepted task scheduled, got %+v", slotTaskIDs(slots))
	}
}

func TestSchedule_ZeroBuffer(t *testing.T) {
	repo := newFakeRepo()
	sched := NewAutoScheduler(repo)

	a := newTask(1, "a", task.PriorityMedium, task.EnergyMedium, 30)
	b := newTask(2, "b", task.PriorityMedium, task.EnergyMedium, 30)

	slots, err := sched.Schedule(context.Background(), []*task.Task{a, b}, testDay, workConstraints("09:00", "18:00", 0))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[1].Start.Equal(slots[0].End) {
		t.Errorf("with zero buffer slots should be back to back: %v then %v", slots[0].End, slots[1].Start)
	}
}

func slotTaskIDs(slots []*task.TimelineSlot) []int64 {
	ids := make([]int64, len(slots))
	for i, s := range slots {
		ids[i] = s.TaskID
	}
	return ids
}
