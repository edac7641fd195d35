package task

import (
	"errors"
	"time"
)

// Block validation errors.
var (
	ErrInvalidBlockHours = errors.New("block hours must satisfy 0 <= start < end <= 24")
	ErrEmptyBlockLabel   = errors.New("block label cannot be empty")
)

// TimeBlock is a recurring declarative region of a day, e.g. "9-12 high
// energy" or "12-13 lunch break". Blocks are pure configuration: they are
// created and edited by the user and consumed read-only by the timeline view.
type TimeBlock struct {
	ID          int64
	UserID      string
	StartHour   int // half-open interval [StartHour, EndHour)
	EndHour     int
	Energy      EnergyLevel
	IsWorkTime  bool
	IsBreakTime bool
	Label       string
	Description string
	Color       string
	DaysOfWeek  []time.Weekday // empty means every day
}

// NewTimeBlock creates a TimeBlock with validation.
func NewTimeBlock(userID, label string, startHour, endHour int, energy EnergyLevel) (*TimeBlock, error) {
	if label == "" {
		return nil, ErrEmptyBlockLabel
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, ErrInvalidBlockHours
	}
	if !energy.Valid() {
		return nil, ErrInvalidEnergy
	}

	return &TimeBlock{
		UserID:    userID,
		Label:     label,
		StartHour: startHour,
		EndHour:   endHour,
		Energy:    energy,
	}, nil
}

// ContainsHour returns true if the hour falls inside the block's half-open range.
func (b *TimeBlock) ContainsHour(hour int) bool {
	return hour >= b.StartHour && hour < b.EndHour
}

// ActiveOn returns true if the block applies on the given weekday.
// A block with no days configured applies every day.
func (b *TimeBlock) ActiveOn(day time.Weekday) bool {
	if len(b.DaysOfWeek) == 0 {
		return true
	}
	for _, d := range b.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// DurationHours returns the block length in hours.
func (b *TimeBlock) DurationHours() int {
	return b.EndHour - b.StartHour
}
