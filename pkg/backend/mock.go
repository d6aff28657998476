package backend

import (
	"context"
	"sync"

	"github.com/themobileprof/inference-gateway/pkg/llm"
)

// MockClient implements the llm.Client interface for testing
type MockClient struct {
	mu sync.Mutex

	// StreamFunc allows customizing the streaming behavior
	StreamFunc func(context.Context, llm.ChatRequest, string) (<-chan llm.ChatChunk, error)

	// ChatFunc allows customizing the non-streaming behavior
	ChatFunc func(context.Context, llm.ChatRequest, string) (*llm.ChatResponse, error)

	// Tracking for assertions
	StreamCalls []llm.ChatRequest
	ChatCalls   []llm.ChatRequest
	RequestIDs  []string
}

// Ensure MockClient implements llm.Client
var _ llm.Client = (*MockClient)(nil)

// NewMockClient creates a new mock client with default behavior
func NewMockClient() *MockClient {
	return &MockClient{}
}

// StreamChatCompletion implements llm.Client.StreamChatCompletion
func (m *MockClient) StreamChatCompletion(ctx context.Context, req llm.ChatRequest, requestID string) (<-chan llm.ChatChunk, error) {
	m.mu.Lock()
	m.StreamCalls = append(m.StreamCalls, req)
	m.RequestIDs = append(m.RequestIDs, requestID)
	m.mu.Unlock()

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req, requestID)
	}

	// Default mock behavior: two content chunks and a stop chunk
	ch := make(chan llm.ChatChunk, 3)
	go func() {
		defer close(ch)

		ch <- llm.ChatChunk{
			ID:      "mock-chunk",
			Object:  "chat.completion.chunk",
			Created: 1234567890,
			Model:   req.Model,
			Choices: []llm.ChunkChoice{
				{Index: 0, Delta: llm.Delta{Content: "This is "}},
			},
		}

		ch <- llm.ChatChunk{
			ID:      "mock-chunk",
			Object:  "chat.completion.chunk",
			Created: 1234567890,
			Model:   req.Model,
			Choices: []llm.ChunkChoice{
				{Index: 0, Delta: llm.Delta{Content: "a mock response."}},
			},
		}

		finishReason := "stop"
		ch <- llm.ChatChunk{
			ID:      "mock-chunk",
			Object:  "chat.completion.chunk",
			Created: 1234567890,
			Model:   req.Model,
			Choices: []llm.ChunkChoice{
				{Index: 0, FinishReason: &finishReason},
			},
		}
	}()

	return ch, nil
}

// ChatCompletion implements llm.Client.ChatCompletion
func (m *MockClient) ChatCompletion(ctx context.Context, req llm.ChatRequest, requestID string) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, req)
	m.RequestIDs = append(m.RequestIDs, requestID)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req, requestID)
	}

	return &llm.ChatResponse{
		ID:      "mock-response",
		Object:  "chat.completion",
		Created: 1234567890,
		Model:   req.Model,
		Choices: []llm.Choice{
			{
				Index: 0,
				Message: llm.ChatMessage{
					Role:    "assistant",
					Content: "This is a mock response.",
				},
				FinishReason: "stop",
			},
		},
		Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

// Reset clears the call history
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StreamCalls = nil
	m.ChatCalls = nil
	m.RequestIDs = nil
}

// ChatCallCount returns the number of non-streaming calls made
func (m *MockClient) ChatCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// StreamCallCount returns the number of streaming calls made
func (m *MockClient) StreamCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.StreamCalls)
}
