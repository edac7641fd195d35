package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

func (a *App) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage backlog tasks",
	}
	cmd.AddCommand(a.taskAddCmd())
	cmd.AddCommand(a.taskListCmd())
	cmd.AddCommand(a.taskDoneCmd())
	cmd.AddCommand(a.taskRmCmd())
	return cmd
}

func (a *App) taskAddCmd() *cobra.Command {
	var (
		description string
		priority    string
		energy      string
		taskContext string
		estimate    int
		labels      []string
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task to the backlog",
		Example: `  tasktimeflow task add "Write report" --priority=urgent --energy=high --estimate=90
  tasktimeflow task add "Check emails" --context=phone_only --label=admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := task.New(a.userID(), args[0], priority)
			if err != nil {
				return err
			}
			t.Description = description
			t.Energy = task.EnergyLevel(energy)
			t.Context = task.Context(taskContext)
			t.EstimatedMinutes = estimate
			t.Labels = labels
			if !t.Energy.Valid() {
				return task.ErrInvalidEnergy
			}
			if !t.Context.Valid() {
				return task.ErrInvalidContext
			}

			if err := a.repo.CreateTask(context.Background(), t); err != nil {
				return fmt.Errorf("creating task: %w", err)
			}

			fmt.Printf("Created task #%d: %s %s %s\n",
				t.ID, t.Title, formatPriority(t.Priority),
				formatMuted(formatDuration(t.EstimateOrDefault())))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Longer description")
	cmd.Flags().StringVar(&priority, "priority", "medium", "Priority: urgent, high, medium or low")
	cmd.Flags().StringVar(&energy, "energy", "", "Energy level: high, medium or low")
	cmd.Flags().StringVar(&taskContext, "context", "", "Context: pc_required, anywhere, home_only, office_only or phone_only")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "Estimated duration in minutes (default 60)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Label (repeatable)")

	return cmd
}

func (a *App) taskListCmd() *cobra.Command {
	var status string
	var label string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backlog tasks",
		RunE: func(_ *cobra.Command, _ []string) error {
			st := task.Status(status)
			if status != "" && !st.Valid() {
				return fmt.Errorf("invalid status: %s", status)
			}

			tasks, err := a.repo.ListTasks(context.Background(), a.userID(), st)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}
			if label != "" {
				tasks = filterByLabel(tasks, label)
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}

			for _, t := range tasks {
				line := fmt.Sprintf("  %s #%-4d %s %-40s %s",
					statusSymbol(t.Status), t.ID, formatPriority(t.Priority),
					t.Title, formatMuted(formatDuration(t.EstimateOrDefault())))
				if len(t.Labels) > 0 {
					line += "  " + formatMuted("#"+strings.Join(t.Labels, " #"))
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: todo, in_progress, review, completed or cancelled")
	cmd.Flags().StringVar(&label, "label", "", "Only show tasks carrying this label")

	return cmd
}

func filterByLabel(tasks []*task.Task, label string) []*task.Task {
	kept := tasks[:0]
	for _, t := range tasks {
		if t.HasLabel(label) {
			kept = append(kept, t)
		}
	}
	return kept
}

func (a *App) taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [task-id]",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.repo.UpdateTaskStatus(context.Background(), id, task.StatusCompleted); err != nil {
				return fmt.Errorf("completing task: %w", err)
			}
			fmt.Printf("Completed task #%d\n", id)
			return nil
		},
	}
}

func (a *App) taskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [task-id]",
		Short: "Delete a task and its timeline slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.repo.DeleteTask(context.Background(), id); err != nil {
				return fmt.Errorf("deleting task: %w", err)
			}
			fmt.Printf("Deleted task #%d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID: %q", s)
	}
	return id, nil
}
