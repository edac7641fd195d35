package llm

import (
	"context"
	"fmt"

	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

const breakdownSystemPrompt = `You are a task planning assistant. Break a task into small concrete subtasks.

Rules:
- Return JSON only (no markdown).
- 2 to 6 subtasks, each independently completable.
- estimated_minutes per subtask in 15-minute increments (minimum 15).
- Subtask durations should roughly sum to the parent estimate.
- confidence is a number from 0 to 100.

JSON schema:
{
  "subtasks": [
    {"title": "string", "estimated_minutes": number}
  ],
  "confidence": number,
  "reasoning": "string"
}`

// Subtask is one step proposed by the breakdown.
type Subtask struct {
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// BreakdownResponse is the parsed breakdown output.
type BreakdownResponse struct {
	Subtasks   []Subtask `json:"subtasks"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
}

// BreakdownTask asks the model to split a task into subtasks. Confidence is
// clamped to [0,100].
func BreakdownTask(ctx context.Context, client Client, t *task.Task) (*BreakdownResponse, error) {
	user := fmt.Sprintf("Task: %q\nEstimated duration: %d minutes", t.Title, t.EstimateOrDefault())
	if t.Description != "" {
		user += "\nDescription: " + t.Description
	}

	messages := []Message{
		{Role: "system", Content: breakdownSystemPrompt},
		{Role: "user", Content: user},
	}

	var resp BreakdownResponse
	if err := client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse breakdown response: %w", err)
	}
	if len(resp.Subtasks) == 0 {
		return nil, fmt.Errorf("breakdown returned no subtasks")
	}

	resp.Confidence = clampScore(resp.Confidence)
	return &resp, nil
}
