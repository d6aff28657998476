package llm

import "context"

// Client is the interface to an OpenAI-compatible inference backend.
// The resolved request identity is passed explicitly so implementations
// can forward it as a correlation header.
type Client interface {
	// ChatCompletion sends a non-streaming chat completion request
	ChatCompletion(ctx context.Context, req ChatRequest, requestID string) (*ChatResponse, error)

	// StreamChatCompletion sends a streaming chat completion request.
	// The returned channel is closed when the stream ends or ctx is
	// cancelled.
	StreamChatCompletion(ctx context.Context, req ChatRequest, requestID string) (<-chan ChatChunk, error)
}
