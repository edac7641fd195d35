// Package ui implements the command line interface.
package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/config"
	"github.com/rumos-automatic/tasktimeflow/internal/scheduler"
	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo   task.Repository
	config *config.Config
	slots  *scheduler.Service
	root   *cobra.Command
}

// NewApp creates a new CLI application with the given repository and config.
func NewApp(repo task.Repository, cfg *config.Config) *App {
	a := &App{
		repo:   repo,
		config: cfg,
		slots:  scheduler.NewService(repo),
	}

	a.root = &cobra.Command{
		Use:   "tasktimeflow",
		Short: "A kanban-to-timeline task scheduler",
		Long: `TaskTimeFlow schedules your tasks onto a daily timeline.

Tasks live in a backlog until they are placed onto the timeline, either
by hand, by the greedy auto-scheduler, or by AI optimization.`,
		SilenceUsage: true,
	}

	a.root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cobra.OnInitialize(func() {
		if noColor {
			DisableColor()
		}
	})

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.taskCmd())
	a.root.AddCommand(a.blockCmd())
	a.root.AddCommand(a.timelineCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.slotCmd())
	a.root.AddCommand(a.optimizeCmd())
	a.root.AddCommand(a.breakdownCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("tasktimeflow %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// userID returns the configured user.
func (a *App) userID() string {
	return a.config.User.ID
}

// constraints converts the schedule config into scheduling constraints.
func (a *App) constraints() scheduler.Constraints {
	c := scheduler.DefaultConstraints()
	c.WorkingHours.Start = a.config.Schedule.WorkStart
	c.WorkingHours.End = a.config.Schedule.WorkEnd
	c.BufferMinutes = a.config.Schedule.BufferMinutes
	c.BreakMinutes = a.config.Schedule.BreakMinutes
	c.MaxConsecutiveMinutes = a.config.Schedule.MaxConsecutiveMinutes
	return c
}
