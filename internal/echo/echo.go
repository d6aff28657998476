// Package echo synthesizes local replies when no backend is configured
// or a backend call fails.
package echo

import "github.com/themobileprof/inference-gateway/pkg/llm"

// Prompt returns the content of the last user message. If the
// conversation has no user message, the last message of any role is
// used.
func Prompt(messages []llm.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

// Reply returns the echo reply for a prompt
func Reply(prompt string) string {
	return "Echo: " + prompt
}
