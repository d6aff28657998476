package gateway

import (
	"time"

	"github.com/themobileprof/inference-gateway/pkg/llm"
)

// EstimateTokens approximates a token count from text length, roughly 4
// characters per token with a minimum of 1. Best-effort only; not a
// compatibility-critical value.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// BuildResponse wraps completion text in an OpenAI-compatible
// chat.completion object
func BuildResponse(requestID, model, content, prompt string) *llm.ChatResponse {
	promptTokens := EstimateTokens(prompt)
	completionTokens := EstimateTokens(content)

	return &llm.ChatResponse{
		ID:      requestID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []llm.Choice{
			{
				Index: 0,
				Message: llm.ChatMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: llm.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

// BuildChunk builds one chat.completion.chunk. A nil content produces an
// empty delta (the terminal chunk), a nil finishReason serializes null.
func BuildChunk(requestID, model string, content, finishReason *string) llm.ChatChunk {
	var delta llm.Delta
	if content != nil {
		delta.Content = *content
	}

	return llm.ChatChunk{
		ID:      requestID,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []llm.ChunkChoice{
			{Index: 0, Delta: delta, FinishReason: finishReason},
		},
	}
}
