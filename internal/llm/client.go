// Package llm provides the completion-service clients used for AI schedule
// optimization and task breakdown.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the text-in/text-out contract against the completion service.
// Callers never depend on a provider's wire format, only on this interface
// plus the convention that JSON responses parse into the expected schema.
type Client interface {
	// Chat sends messages and returns the raw response text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON sends messages and parses the response as JSON into result.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}

// extractJSON pulls a JSON payload out of a response that may wrap it in
// markdown code fences or surrounding prose.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		idx := strings.Index(s, fence)
		if idx == -1 {
			continue
		}
		start := idx + len(fence)
		for start < len(s) && (s[start] == '\n' || s[start] == '\r') {
			start++
		}
		end := strings.Index(s[start:], "```")
		if end == -1 {
			continue
		}
		return strings.TrimRight(s[start:start+end], "\n\r")
	}

	// No fence: scan for the first balanced object or array.
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		depth := 0
		for j := i; j < len(s); j++ {
			switch s[j] {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					return s[i : j+1]
				}
			}
		}
	}

	return s
}

// decodeJSON extracts and unmarshals a JSON response body.
func decodeJSON(content string, result any) error {
	payload := extractJSON(content)
	if err := json.Unmarshal([]byte(payload), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}
