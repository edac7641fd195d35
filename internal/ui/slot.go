package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/dateutil"
	"github.com/rumos-automatic/tasktimeflow/internal/scheduler"
	"github.com/rumos-automatic/tasktimeflow/internal/timegrid"
)

func (a *App) slotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Manage timeline slots",
	}
	cmd.AddCommand(a.slotAddCmd())
	cmd.AddCommand(a.slotMoveCmd())
	cmd.AddCommand(a.slotResizeCmd())
	cmd.AddCommand(a.slotRmCmd())
	return cmd
}

func (a *App) slotAddCmd() *cobra.Command {
	var (
		date  string
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:   "add [task-id]",
		Short: "Place a task on the timeline",
		Example: `  tasktimeflow slot add 42 --start=09:00 --end=10:30
  tasktimeflow slot add 42 --date=tomorrow --start=14:00 --end=15:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			startAt, endAt, err := a.resolveRange(date, start, end)
			if err != nil {
				return err
			}

			sl, err := a.slots.CreateSlot(context.Background(), a.userID(), taskID, startAt, endAt)
			if err != nil {
				return describeConflict(err)
			}

			fmt.Printf("Scheduled task #%d as slot #%d: %s %s-%s\n",
				taskID, sl.ID, sl.Date.Format("2006-01-02"),
				sl.Start.Format("15:04"), sl.End.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (today, tomorrow, a weekday, or YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, required)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func (a *App) slotMoveCmd() *cobra.Command {
	var (
		date  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "move [slot-id]",
		Short: "Move a slot to a new start time, keeping its duration",
		Example: `  tasktimeflow slot move 7 --start=11:00
  tasktimeflow slot move 7 --date=tomorrow --start=09:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()

			current, err := a.repo.GetSlot(ctx, id)
			if err != nil {
				return err
			}

			day := current.Date
			if date != "" {
				if day, err = dateutil.ParseRelativeDate(date, time.Now()); err != nil {
					return err
				}
			}
			newStart, err := a.snapClock(day, start)
			if err != nil {
				return err
			}
			newEnd := shiftedEnd(newStart, current.Duration())

			moved, err := a.slots.MoveSlot(ctx, id, newStart, newEnd)
			if err != nil {
				return describeConflict(err)
			}

			fmt.Printf("Moved slot #%d to %s %s-%s\n",
				moved.ID, moved.Date.Format("2006-01-02"),
				moved.Start.Format("15:04"), moved.End.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "New date (default: keep current)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM, required)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func (a *App) slotResizeCmd() *cobra.Command {
	var end string

	cmd := &cobra.Command{
		Use:     "resize [slot-id]",
		Short:   "Change a slot's end time",
		Example: `  tasktimeflow slot resize 7 --end=12:00`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()

			current, err := a.repo.GetSlot(ctx, id)
			if err != nil {
				return err
			}
			newEnd, err := a.snapClock(current.Date, end)
			if err != nil {
				return err
			}

			resized, err := a.slots.ResizeSlot(ctx, id, current.Start, newEnd)
			if err != nil {
				return describeConflict(err)
			}

			fmt.Printf("Resized slot #%d to %s-%s (%s)\n",
				resized.ID, resized.Start.Format("15:04"), resized.End.Format("15:04"),
				formatDuration(resized.Duration()))
			return nil
		},
	}

	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM, required)")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func (a *App) slotRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [slot-id]",
		Short: "Remove a slot from the timeline",
		Long: `Remove a slot. The task itself is untouched; with no slot
referencing it, it simply counts as unscheduled again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.slots.Unschedule(context.Background(), id); err != nil {
				return fmt.Errorf("removing slot: %w", err)
			}
			fmt.Printf("Removed slot #%d\n", id)
			return nil
		},
	}
}

// resolveRange turns date + HH:MM flags into snapped timestamps.
func (a *App) resolveRange(date, start, end string) (time.Time, time.Time, error) {
	day, err := dateutil.ParseRelativeDate(date, time.Now())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startAt, err := a.snapClock(day, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endAt, err := a.snapClock(day, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startAt, endAt, nil
}

// snapClock parses HH:MM on a date and snaps it to the configured grid.
func (a *App) snapClock(day time.Time, clock string) (time.Time, error) {
	at, err := dateutil.Combine(day, clock)
	if err != nil {
		return time.Time{}, err
	}
	pos := timegrid.ToGridPosition(at)
	snapped := timegrid.SnapToGrid(pos.Hour*60+pos.Minute, a.config.Schedule.GridIntervalMinutes)
	return timegrid.FromGridPosition(snapped/60, snapped%60, day), nil
}

// shiftedEnd places a slot's end so a move keeps its planned duration.
func shiftedEnd(newStart time.Time, minutes int) time.Time {
	return newStart.Add(time.Duration(minutes) * time.Minute)
}

// describeConflict expands a blocked mutation into the colliding windows.
func describeConflict(err error) error {
	var ce *scheduler.ConflictError
	if !errors.As(err, &ce) {
		return err
	}
	msg := "slot conflicts with existing schedule:"
	for _, c := range ce.Conflicts {
		msg += fmt.Sprintf("\n  %s-%s: %s",
			c.Start.Format("15:04"), c.End.Format("15:04"), c.Resolution)
	}
	return errors.New(msg)
}
