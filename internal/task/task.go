// Package task defines the core domain types for tasktimeflow.
package task

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidPriority = errors.New("priority must be urgent, high, medium or low")
	ErrInvalidEnergy   = errors.New("energy must be high, medium or low")
	ErrInvalidContext  = errors.New("context must be pc_required, anywhere, home_only, office_only or phone_only")
)

// Domain errors.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrSlotNotFound = errors.New("timeline slot not found")
)

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the scheduling weight of the priority (urgent highest).
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	return p.Weight() > 0
}

// EnergyLevel is a coarse high/medium/low tag used on tasks and time blocks.
type EnergyLevel string

const (
	EnergyUnset  EnergyLevel = ""
	EnergyHigh   EnergyLevel = "high"
	EnergyMedium EnergyLevel = "medium"
	EnergyLow    EnergyLevel = "low"
)

// Weight returns the scheduling weight of the energy level.
// An unset energy level weighs the same as medium.
func (e EnergyLevel) Weight() int {
	switch e {
	case EnergyHigh:
		return 3
	case EnergyMedium, EnergyUnset:
		return 2
	case EnergyLow:
		return 1
	default:
		return 2
	}
}

// Valid returns true if the energy level is a known value or unset.
func (e EnergyLevel) Valid() bool {
	switch e {
	case EnergyUnset, EnergyHigh, EnergyMedium, EnergyLow:
		return true
	default:
		return false
	}
}

// Context describes where a task can be worked on.
type Context string

const (
	ContextUnset      Context = ""
	ContextPCRequired Context = "pc_required"
	ContextAnywhere   Context = "anywhere"
	ContextHomeOnly   Context = "home_only"
	ContextOfficeOnly Context = "office_only"
	ContextPhoneOnly  Context = "phone_only"
)

// Valid returns true if the context is a known value or unset.
func (c Context) Valid() bool {
	switch c {
	case ContextUnset, ContextPCRequired, ContextAnywhere, ContextHomeOnly, ContextOfficeOnly, ContextPhoneOnly:
		return true
	default:
		return false
	}
}

// Status represents the state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// DefaultEstimateMinutes is assumed when a task has no duration estimate.
const DefaultEstimateMinutes = 60

// Task represents a unit of work in the task pool.
// A task with no timeline slot for a given day is "unscheduled" for that day.
type Task struct {
	ID               int64
	UserID           string
	Title            string
	Description      string
	Priority         Priority
	Energy           EnergyLevel // optional
	Context          Context     // optional
	EstimatedMinutes int         // 0 means no estimate; schedulers fall back to DefaultEstimateMinutes
	Status           Status
	Labels           []string
	Due              *time.Time // soft due timestamp
	CreatedAt        time.Time
}

// New creates a new Task with validation.
// priority must be one of urgent/high/medium/low; energy and context are optional.
func New(userID, title, priority string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	p := Priority(priority)
	if priority == "" {
		p = PriorityMedium
	}
	if !p.Valid() {
		return nil, ErrInvalidPriority
	}

	return &Task{
		UserID:    userID,
		Title:     title,
		Priority:  p,
		Status:    StatusTodo,
		CreatedAt: time.Now(),
	}, nil
}

// EstimateOrDefault returns the estimated duration in minutes, falling back
// to DefaultEstimateMinutes when no estimate is set.
func (t *Task) EstimateOrDefault() int {
	if t.EstimatedMinutes <= 0 {
		return DefaultEstimateMinutes
	}
	return t.EstimatedMinutes
}

// IsOpen returns true if the task can still be scheduled.
func (t *Task) IsOpen() bool {
	switch t.Status {
	case StatusCompleted, StatusCancelled:
		return false
	default:
		return true
	}
}

// HasLabel returns true if the task carries the given label.
func (t *Task) HasLabel(label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return true
		}
	}
	return false
}
