package timeline

import (
	"testing"
	"time"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local) // a Monday

func block(t *testing.T, label string, start, end int, energy task.EnergyLevel) *task.TimeBlock {
	t.Helper()
	b, err := task.NewTimeBlock("u1", label, start, end, energy)
	if err != nil {
		t.Fatalf("building block: %v", err)
	}
	return b
}

func slot(t *testing.T, startHour, startMin, endHour, endMin int) *task.TimelineSlot {
	t.Helper()
	s, err := task.NewSlot("u1", 1,
		monday.Add(time.Duration(startHour)*time.Hour+time.Duration(startMin)*time.Minute),
		monday.Add(time.Duration(endHour)*time.Hour+time.Duration(endMin)*time.Minute),
	)
	if err != nil {
		t.Fatalf("building slot: %v", err)
	}
	return s
}

func workdaySettings() Settings {
	return Settings{WorkStart: "09:00", WorkEnd: "17:00"}
}

func TestBuildHours_Returns24FreshRows(t *testing.T) {
	hours := BuildHours(monday, nil, nil, workdaySettings())
	if len(hours) != 24 {
		t.Fatalf("expected 24 hours, got %d", len(hours))
	}
	for i, h := range hours {
		if h.Hour != i {
			t.Errorf("hour %d has index %d", i, h.Hour)
		}
	}
	if hours[9].Label != "09:00" {
		t.Errorf("expected label 09:00, got %q", hours[9].Label)
	}
}

func TestBuildHours_BlockSegments(t *testing.T) {
	morning := block(t, "deep focus", 9, 12, task.EnergyHigh)
	hours := BuildHours(monday, []*task.TimeBlock{morning}, nil, workdaySettings())

	for h := 9; h < 12; h++ {
		if len(hours[h].Blocks) != 1 {
			t.Fatalf("hour %d: expected 1 segment, got %d", h, len(hours[h].Blocks))
		}
		seg := hours[h].Blocks[0]
		if seg.StartMinute != 0 || seg.EndMinute != 59 {
			t.Errorf("hour %d: segment spans %d-%d, want 0-59", h, seg.StartMinute, seg.EndMinute)
		}
	}
	// Half-open: hour 12 is outside the block.
	if len(hours[12].Blocks) != 0 {
		t.Errorf("hour 12 should have no segments, got %d", len(hours[12].Blocks))
	}
	if len(hours[8].Blocks) != 0 {
		t.Errorf("hour 8 should have no segments, got %d", len(hours[8].Blocks))
	}
}

func TestBuildHours_BlockWeekdayFilter(t *testing.T) {
	b := block(t, "weekend block", 10, 12, task.EnergyLow)
	b.DaysOfWeek = []time.Weekday{time.Saturday, time.Sunday}

	hours := BuildHours(monday, []*task.TimeBlock{b}, nil, workdaySettings())
	if len(hours[10].Blocks) != 0 {
		t.Error("block limited to weekends must not show on Monday")
	}

	saturday := monday.AddDate(0, 0, 5)
	hours = BuildHours(saturday, []*task.TimeBlock{b}, nil, workdaySettings())
	if len(hours[10].Blocks) != 1 {
		t.Error("block limited to weekends must show on Saturday")
	}
}

func TestBuildHours_SlotAttributionInclusive(t *testing.T) {
	// 09:30-11:00: attributed to hours 9, 10 and 11 (inclusive end hour).
	s := slot(t, 9, 30, 11, 0)
	hours := BuildHours(monday, nil, []*task.TimelineSlot{s}, workdaySettings())

	for _, h := range []int{9, 10, 11} {
		if len(hours[h].Slots) != 1 {
			t.Errorf("hour %d: expected slot attribution, got %d slots", h, len(hours[h].Slots))
		}
	}
	if len(hours[8].Slots) != 0 || len(hours[12].Slots) != 0 {
		t.Error("slot leaked outside its hour range")
	}
}

func TestBuildHours_DominantEnergy(t *testing.T) {
	long := block(t, "work", 9, 17, task.EnergyMedium)
	short := block(t, "peak", 10, 11, task.EnergyHigh)

	hours := BuildHours(monday, []*task.TimeBlock{long, short}, nil, workdaySettings())

	// Both blocks cover hour 10 fully; the tie goes to the first encountered.
	if hours[10].Energy != task.EnergyMedium {
		t.Errorf("expected first block to win the tie, got %s", hours[10].Energy)
	}
	if hours[9].Energy != task.EnergyMedium {
		t.Errorf("expected medium at hour 9, got %s", hours[9].Energy)
	}
	if hours[7].Energy != task.EnergyUnset {
		t.Errorf("expected unset energy outside blocks, got %q", hours[7].Energy)
	}
}

func TestBuildHours_WorkingHourFlag(t *testing.T) {
	hours := BuildHours(monday, nil, nil, workdaySettings())

	if hours[8].Working {
		t.Error("hour 8 must not be a working hour")
	}
	if !hours[9].Working || !hours[16].Working {
		t.Error("hours 9 and 16 must be working hours")
	}
	if hours[17].Working {
		t.Error("hour 17 must not be a working hour (half-open window)")
	}
}

func TestThemeFor(t *testing.T) {
	tests := []struct {
		hour int
		want Theme
	}{
		{0, ThemeNight},
		{5, ThemeNight},
		{6, ThemeDawn},
		{9, ThemeMorning},
		{12, ThemeLunch},
		{13, ThemeLunch},
		{14, ThemeAfternoon},
		{18, ThemeEvening},
		{21, ThemeEvening},
		{22, ThemeLate},
		{23, ThemeLate},
	}

	for _, tc := range tests {
		if got := ThemeFor(tc.hour); got != tc.want {
			t.Errorf("ThemeFor(%d) = %s, want %s", tc.hour, got, tc.want)
		}
	}
}

func TestBuildHours_DoesNotMutateInputs(t *testing.T) {
	b := block(t, "work", 9, 17, task.EnergyMedium)
	s := slot(t, 9, 0, 10, 0)
	blocks := []*task.TimeBlock{b}
	slots := []*task.TimelineSlot{s}

	_ = BuildHours(monday, blocks, slots, workdaySettings())

	if b.StartHour != 9 || b.EndHour != 17 || b.Energy != task.EnergyMedium {
		t.Error("BuildHours mutated a time block")
	}
	if !s.Start.Equal(monday.Add(9 * time.Hour)) {
		t.Error("BuildHours mutated a slot")
	}
}
