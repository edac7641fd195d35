package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/dateutil"
	"github.com/rumos-automatic/tasktimeflow/internal/scheduler"
	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

func (a *App) scheduleCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Auto-schedule open tasks onto a day",
		Long: `Greedily place open backlog tasks onto a day's timeline.

Tasks are sorted by priority and energy, then packed from the start of
the working hours with the configured buffer in between. Tasks that do
not fit are left unscheduled; compare the output against the backlog to
see what was skipped.`,
		Example: `  tasktimeflow schedule
  tasktimeflow schedule --date=tomorrow`,
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}
			ctx := context.Background()

			tasks, err := a.repo.ListTasks(ctx, a.userID(), task.StatusTodo)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}
			if len(tasks) == 0 {
				fmt.Println("No open tasks to schedule.")
				return nil
			}

			slots, err := scheduler.NewAutoScheduler(a.repo).Schedule(ctx, tasks, day, a.constraints())
			if err != nil {
				return fmt.Errorf("scheduling: %w", err)
			}

			fmt.Printf("Scheduled %d of %d task(s) on %s\n", len(slots), len(tasks), day.Format("2006-01-02"))
			for _, sl := range slots {
				t, err := a.repo.GetTask(ctx, sl.TaskID)
				if err != nil {
					return fmt.Errorf("loading task %d: %w", sl.TaskID, err)
				}
				fmt.Printf("  #%d %s-%s %s\n",
					sl.ID, sl.Start.Format("15:04"), sl.End.Format("15:04"), t.Title)
			}
			if len(slots) < len(tasks) {
				fmt.Println(formatMuted(fmt.Sprintf("  %d task(s) did not fit in working hours", len(tasks)-len(slots))))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target day (today, tomorrow, a weekday, or YYYY-MM-DD)")

	return cmd
}
