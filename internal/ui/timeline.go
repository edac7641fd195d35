package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/dateutil"
	"github.com/rumos-automatic/tasktimeflow/internal/task"
	"github.com/rumos-automatic/tasktimeflow/internal/timeline"
)

func (a *App) timelineCmd() *cobra.Command {
	var (
		date string
		full bool
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the timeline for a day",
		Long: `Show the 24-hour timeline for a date, with time blocks, scheduled
slots and working hours. By default only hours with content or inside
working hours are printed; --full prints all 24 rows.`,
		Example: `  tasktimeflow timeline
  tasktimeflow timeline --date=2025-03-10 --full`,
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := dateutil.ParseDate(date)
			if err != nil {
				return err
			}
			ctx := context.Background()

			blocks, err := a.repo.ListTimeBlocks(ctx, a.userID())
			if err != nil {
				return fmt.Errorf("listing time blocks: %w", err)
			}
			slots, err := a.slots.ListDay(ctx, day, a.userID())
			if err != nil {
				return fmt.Errorf("listing slots: %w", err)
			}

			titles, err := a.slotTitles(ctx, slots)
			if err != nil {
				return err
			}

			hours := timeline.BuildHours(day, blocks, slots, timeline.Settings{
				WorkStart: a.config.Schedule.WorkStart,
				WorkEnd:   a.config.Schedule.WorkEnd,
			})

			fmt.Println(formatHeader(day.Format("Monday, 2006-01-02")))
			for _, hv := range hours {
				if !full && !hv.Working && len(hv.Blocks) == 0 && len(hv.Slots) == 0 {
					continue
				}
				printHourRow(hv, titles)
			}
			printDaySummary(slots, titles)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to show (YYYY-MM-DD, default: today)")
	cmd.Flags().BoolVar(&full, "full", false, "Print all 24 hours")

	return cmd
}

// slotTitles resolves the task titles referenced by a day's slots.
func (a *App) slotTitles(ctx context.Context, slots []*task.TimelineSlot) (map[int64]string, error) {
	titles := make(map[int64]string)
	for _, sl := range slots {
		if _, ok := titles[sl.TaskID]; ok {
			continue
		}
		t, err := a.repo.GetTask(ctx, sl.TaskID)
		if err != nil {
			return nil, fmt.Errorf("loading task %d: %w", sl.TaskID, err)
		}
		titles[sl.TaskID] = t.Title
	}
	return titles, nil
}

func printHourRow(hv timeline.HourView, titles map[int64]string) {
	label := formatTheme(hv.Theme, hv.Label)

	marker := " "
	if hv.Working {
		marker = "|"
	}

	var parts []string
	for _, seg := range hv.Blocks {
		tag := seg.Block.Label
		if seg.Block.Energy != task.EnergyUnset {
			tag += " (" + string(seg.Block.Energy) + ")"
		}
		parts = append(parts, formatMuted("["+tag+"]"))
	}
	for _, sl := range hv.Slots {
		// Only name the slot on its starting hour, to keep multi-hour
		// slots from repeating their title on every row.
		if sl.Start.Hour() == hv.Hour {
			parts = append(parts, fmt.Sprintf("#%d %s %s-%s",
				sl.ID, titles[sl.TaskID],
				sl.Start.Format("15:04"), sl.End.Format("15:04")))
		} else {
			parts = append(parts, formatMuted(fmt.Sprintf("… #%d", sl.ID)))
		}
	}

	fmt.Printf("  %s %s %s\n", label, marker, strings.Join(parts, "  "))
}

func printDaySummary(slots []*task.TimelineSlot, titles map[int64]string) {
	if len(slots) == 0 {
		fmt.Println(formatMuted("  (no slots scheduled)"))
		return
	}
	total := 0
	for _, sl := range slots {
		if sl.IsActive() {
			total += sl.Duration()
		}
	}
	fmt.Printf("  %s\n", formatStats(fmt.Sprintf("%d slot(s), %s scheduled", len(slots), formatDuration(total))))
}
