package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rumos-automatic/tasktimeflow/internal/dateutil"
	"github.com/rumos-automatic/tasktimeflow/internal/llm"
	"github.com/rumos-automatic/tasktimeflow/internal/optimize"
)

// llmClient builds the configured completion-service client.
func (a *App) llmClient() (llm.Client, error) {
	client, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.Model, a.config.LLM.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}
	return client, nil
}

func (a *App) optimizeCmd() *cobra.Command {
	var (
		date  string
		apply bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Ask the AI to propose an optimized schedule",
		Long: `Send open tasks, time blocks and constraints to the configured LLM
and print the proposed schedule. Nothing is persisted unless --apply is
given; the proposal is validated against the conflict rules either way.`,
		Example: `  tasktimeflow optimize
  tasktimeflow optimize --date=tomorrow --apply`,
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}
			client, err := a.llmClient()
			if err != nil {
				return err
			}
			ctx := context.Background()

			svc := optimize.NewService(a.repo, llm.NewOptimizer(client), a.slots)
			proposal, err := svc.Propose(ctx, a.userID(), day, a.constraints())
			if err != nil {
				return err
			}

			fmt.Println(formatHeader(fmt.Sprintf("Proposed schedule for %s", day.Format("2006-01-02"))))
			for _, pl := range proposal.Placements {
				t, err := a.repo.GetTask(ctx, pl.Slot.TaskID)
				if err != nil {
					return fmt.Errorf("loading task %d: %w", pl.Slot.TaskID, err)
				}
				fmt.Printf("  %s-%s  %-40s %s\n",
					pl.Slot.Start.Format("15:04"), pl.Slot.End.Format("15:04"), t.Title,
					formatMuted(fmt.Sprintf("confidence %.0f  energy %.0f  context %.0f",
						pl.Confidence, pl.EnergyAlignment, pl.ContextScore)))
			}

			m := proposal.Metrics
			fmt.Printf("  %s\n", formatStats(fmt.Sprintf(
				"productivity %.0f  energy %.0f  goals %.0f  density %.0f",
				m.ProductivityScore, m.EnergyEfficiency, m.GoalAlignment, m.ScheduleDensity)))
			for _, imp := range proposal.Improvements {
				fmt.Printf("  + %s\n", imp)
			}
			if proposal.Reasoning != "" {
				fmt.Printf("  %s\n", formatMuted(proposal.Reasoning))
			}

			if !apply {
				fmt.Println(formatMuted("  (dry run; pass --apply to persist)"))
				return nil
			}

			created, err := svc.Apply(ctx, proposal)
			if err != nil {
				return err
			}
			fmt.Printf("Applied %d slot(s)\n", len(created))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target day (today, tomorrow, a weekday, or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Persist the proposed slots")

	return cmd
}

func (a *App) breakdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "breakdown [task-id]",
		Short:   "Ask the AI to split a task into subtasks",
		Example: `  tasktimeflow breakdown 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()

			t, err := a.repo.GetTask(ctx, id)
			if err != nil {
				return err
			}
			client, err := a.llmClient()
			if err != nil {
				return err
			}

			resp, err := llm.BreakdownTask(ctx, client, t)
			if err != nil {
				return err
			}

			fmt.Println(formatHeader(fmt.Sprintf("Breakdown of #%d %s", t.ID, t.Title)))
			for i, st := range resp.Subtasks {
				fmt.Printf("  %d. %-40s %s\n", i+1, st.Title, formatMuted(formatDuration(st.EstimatedMinutes)))
			}
			fmt.Printf("  %s\n", formatStats(fmt.Sprintf("confidence %.0f", resp.Confidence)))
			if resp.Reasoning != "" {
				fmt.Printf("  %s\n", formatMuted(resp.Reasoning))
			}
			return nil
		},
	}
}
