package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rumos-automatic/tasktimeflow/internal/scheduler"
	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

const optimizerSystemPrompt = `You are a schedule optimization assistant. You arrange tasks within a single day to maximize productivity while respecting the user's energy rhythm and context constraints.

Rules:
- Return JSON only (no markdown).
- Use ISO-8601 timestamps for start_time and end_time.
- Schedule every task exactly once within working hours.
- Never overlap two tasks; keep the configured buffer between them.
- Match high-energy tasks with high-energy time blocks where possible.
- confidence, energy_alignment, context_score and all metrics are numbers from 0 to 100.

JSON schema:
{
  "optimized_schedule": [
    {
      "task_id": number,
      "start_time": "ISO-8601 timestamp",
      "end_time": "ISO-8601 timestamp",
      "confidence": number,
      "energy_alignment": number,
      "context_score": number
    }
  ],
  "improvements": ["string"],
  "metrics": {
    "productivity_score": number,
    "energy_efficiency": number,
    "goal_alignment": number,
    "schedule_density": number
  },
  "reasoning": "string"
}`

// OptimizationRequest carries everything the optimizer serializes into the
// prompt: the tasks to place, the day's declared time blocks, and the
// scheduling constraints with their weighted goals.
type OptimizationRequest struct {
	Date        time.Time
	Tasks       []*task.Task
	Blocks      []*task.TimeBlock
	Constraints scheduler.Constraints
}

// OptimizedSlot is one placement proposed by the model.
type OptimizedSlot struct {
	TaskID          int64   `json:"task_id"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Confidence      float64 `json:"confidence"`
	EnergyAlignment float64 `json:"energy_alignment"`
	ContextScore    float64 `json:"context_score"`
}

// Metrics are the model's self-reported schedule quality scores.
type Metrics struct {
	ProductivityScore float64 `json:"productivity_score"`
	EnergyEfficiency  float64 `json:"energy_efficiency"`
	GoalAlignment     float64 `json:"goal_alignment"`
	ScheduleDensity   float64 `json:"schedule_density"`
}

// OptimizationResponse is the parsed optimizer output.
type OptimizationResponse struct {
	OptimizedSchedule []OptimizedSlot `json:"optimized_schedule"`
	Improvements      []string        `json:"improvements"`
	Metrics           Metrics         `json:"metrics"`
	Reasoning         string          `json:"reasoning"`
}

// Optimizer builds optimization prompts and parses responses.
type Optimizer struct {
	client Client
}

// NewOptimizer creates a new Optimizer with the given LLM client.
func NewOptimizer(client Client) *Optimizer {
	return &Optimizer{client: client}
}

// Optimize sends one optimization request and parses the result. There is no
// retry here; retrying with different settings is the caller's decision. A
// malformed response is a single terminal error.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResponse, error) {
	messages := o.buildMessages(req)

	var resp OptimizationResponse
	if err := o.client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse optimization response: %w", err)
	}

	clampResponse(&resp)
	return &resp, nil
}

// BuildMessages exposes the prompt for inspection in dry runs.
func (o *Optimizer) BuildMessages(req OptimizationRequest) []Message {
	return o.buildMessages(req)
}

func (o *Optimizer) buildMessages(req OptimizationRequest) []Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Date: %s (%s)\n", req.Date.Format("2006-01-02"), req.Date.Format("Monday"))
	fmt.Fprintf(&b, "Working hours: %s to %s\n", req.Constraints.WorkingHours.Start, req.Constraints.WorkingHours.End)
	fmt.Fprintf(&b, "Buffer between tasks: %d minutes\n", req.Constraints.BufferMinutes)
	fmt.Fprintf(&b, "Max consecutive work: %d minutes\n\n", req.Constraints.MaxConsecutiveMinutes)

	b.WriteString("Tasks to schedule:\n")
	for _, t := range req.Tasks {
		fmt.Fprintf(&b, "- id=%d title=%q duration=%dmin priority=%s energy=%s context=%s\n",
			t.ID, t.Title, t.EstimateOrDefault(), t.Priority, energyOrDefault(t.Energy), contextOrAnywhere(t.Context))
	}

	if len(req.Blocks) > 0 {
		b.WriteString("\nTime blocks:\n")
		for _, blk := range req.Blocks {
			fmt.Fprintf(&b, "- %02d:00-%02d:00 %s energy=%s work=%t break=%t\n",
				blk.StartHour, blk.EndHour, blk.Label, blk.Energy, blk.IsWorkTime, blk.IsBreakTime)
		}
	}

	if len(req.Constraints.Goals) > 0 {
		b.WriteString("\nOptimization goals (weighted):\n")
		for _, g := range req.Constraints.Goals {
			fmt.Fprintf(&b, "- %s: %.2f\n", g.Name, g.Weight)
		}
	}

	return []Message{
		{Role: "system", Content: optimizerSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// clampResponse bounds every score to [0,100]. The scores are advisory and
// an out-of-range value from the model must not leak into the UI.
func clampResponse(resp *OptimizationResponse) {
	for i := range resp.OptimizedSchedule {
		s := &resp.OptimizedSchedule[i]
		s.Confidence = clampScore(s.Confidence)
		s.EnergyAlignment = clampScore(s.EnergyAlignment)
		s.ContextScore = clampScore(s.ContextScore)
	}
	resp.Metrics.ProductivityScore = clampScore(resp.Metrics.ProductivityScore)
	resp.Metrics.EnergyEfficiency = clampScore(resp.Metrics.EnergyEfficiency)
	resp.Metrics.GoalAlignment = clampScore(resp.Metrics.GoalAlignment)
	resp.Metrics.ScheduleDensity = clampScore(resp.Metrics.ScheduleDensity)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func energyOrDefault(e task.EnergyLevel) task.EnergyLevel {
	if e == "" {
		return task.EnergyMedium
	}
	return e
}

func contextOrAnywhere(c task.Context) task.Context {
	if c == "" {
		return task.ContextAnywhere
	}
	return c
}
