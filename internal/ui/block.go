package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

func (a *App) blockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Manage recurring time blocks",
	}
	cmd.AddCommand(a.blockAddCmd())
	cmd.AddCommand(a.blockListCmd())
	return cmd
}

func (a *App) blockAddCmd() *cobra.Command {
	var (
		startHour int
		endHour   int
		energy    string
		workTime  bool
		breakTime bool
		days      []string
	)

	cmd := &cobra.Command{
		Use:   "add [label]",
		Short: "Add a recurring time block",
		Example: `  tasktimeflow block add "Deep focus" --start=9 --end=12 --energy=high --work
  tasktimeflow block add "Lunch" --start=12 --end=13 --energy=low --break --day=monday --day=friday`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := task.NewTimeBlock(a.userID(), args[0], startHour, endHour, task.EnergyLevel(energy))
			if err != nil {
				return err
			}
			b.IsWorkTime = workTime
			b.IsBreakTime = breakTime
			b.DaysOfWeek, err = parseWeekdays(days)
			if err != nil {
				return err
			}

			if err := a.repo.CreateTimeBlock(context.Background(), b); err != nil {
				return fmt.Errorf("creating time block: %w", err)
			}

			fmt.Printf("Created block #%d: %02d:00-%02d:00 %s\n", b.ID, b.StartHour, b.EndHour, b.Label)
			return nil
		},
	}

	cmd.Flags().IntVar(&startHour, "start", 9, "Start hour (0-23)")
	cmd.Flags().IntVar(&endHour, "end", 12, "End hour (1-24, exclusive)")
	cmd.Flags().StringVar(&energy, "energy", "medium", "Energy level: high, medium or low")
	cmd.Flags().BoolVar(&workTime, "work", false, "Mark as working time")
	cmd.Flags().BoolVar(&breakTime, "break", false, "Mark as break time")
	cmd.Flags().StringArrayVar(&days, "day", nil, "Weekday the block applies to (repeatable; default every day)")

	return cmd
}

func (a *App) blockListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List time blocks",
		RunE: func(_ *cobra.Command, _ []string) error {
			blocks, err := a.repo.ListTimeBlocks(context.Background(), a.userID())
			if err != nil {
				return fmt.Errorf("listing time blocks: %w", err)
			}
			if len(blocks) == 0 {
				fmt.Println("No time blocks configured.")
				return nil
			}

			for _, b := range blocks {
				flags := ""
				if b.IsWorkTime {
					flags += " work"
				}
				if b.IsBreakTime {
					flags += " break"
				}
				days := "every day"
				if len(b.DaysOfWeek) > 0 {
					names := make([]string, len(b.DaysOfWeek))
					for i, d := range b.DaysOfWeek {
						names[i] = strings.ToLower(d.String())
					}
					days = strings.Join(names, ",")
				}
				fmt.Printf("  #%-4d %02d:00-%02d:00 (%dh)  %-20s energy=%s%s  %s\n",
					b.ID, b.StartHour, b.EndHour, b.DurationHours(), b.Label, b.Energy, flags, formatMuted(days))
			}
			return nil
		},
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %s", name)
		}
		days = append(days, d)
	}
	return days, nil
}
