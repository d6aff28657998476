package gateway

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/themobileprof/inference-gateway/pkg/backend"
	"github.com/themobileprof/inference-gateway/pkg/llm"
)

func userRequest(content string) llm.ChatRequest {
	return llm.ChatRequest{
		Model: "echo",
		Messages: []llm.ChatMessage{
			{Role: "user", Content: content},
		},
	}
}

func failingClient(err error) *backend.MockClient {
	mock := backend.NewMockClient()
	mock.ChatFunc = func(context.Context, llm.ChatRequest, string) (*llm.ChatResponse, error) {
		return nil, err
	}
	mock.StreamFunc = func(context.Context, llm.ChatRequest, string) (<-chan llm.ChatChunk, error) {
		return nil, err
	}
	return mock
}

func TestCompleteEchoOnlyMode(t *testing.T) {
	engine := NewEngine(nil, true, 0)

	resp, err := engine.Complete(context.Background(), userRequest("Hello!"), "req-1")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.ID != "req-1" {
		t.Errorf("id = %q, want %q", resp.ID, "req-1")
	}
	if resp.Object != "chat.completion" {
		t.Errorf("object = %q", resp.Object)
	}
	if resp.Model != "echo" {
		t.Errorf("model = %q, want %q", resp.Model, "echo")
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("choices = %d, want 1", len(resp.Choices))
	}
	if got := resp.Choices[0].Message.Content; got != "Echo: Hello!" {
		t.Errorf("content = %q, want %q", got, "Echo: Hello!")
	}
	if resp.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %q, want stop", resp.Choices[0].FinishReason)
	}
	if resp.Usage.TotalTokens != resp.Usage.PromptTokens+resp.Usage.CompletionTokens {
		t.Error("usage totals do not add up")
	}
}

func TestCompleteBackendSuccessIsRestamped(t *testing.T) {
	mock := backend.NewMockClient()
	engine := NewEngine(mock, true, 0)

	req := userRequest("hi")
	req.Model = "gpt-4"

	resp, err := engine.Complete(context.Background(), req, "req-9")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.ID != "req-9" {
		t.Errorf("id = %q, want resolved identity", resp.ID)
	}
	if resp.Model != "gpt-4" {
		t.Errorf("model = %q, want canonical model", resp.Model)
	}
	if resp.Choices[0].Message.Content != "This is a mock response." {
		t.Errorf("content = %q, backend content should relay unchanged", resp.Choices[0].Message.Content)
	}
	if mock.ChatCallCount() != 1 {
		t.Errorf("backend called %d times, want 1", mock.ChatCallCount())
	}
	if len(mock.RequestIDs) != 1 || mock.RequestIDs[0] != "req-9" {
		t.Errorf("request id forwarded = %v, want [req-9]", mock.RequestIDs)
	}
}

func TestCompleteFallsBackOnEveryFailureCondition(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"backend http error", &backend.StatusError{StatusCode: 500, Body: "boom"}},
		{"connection failure", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}},
		{"timeout", context.DeadlineExceeded},
		{"non-JSON body", &backend.ParseError{Cause: errors.New("invalid character")}},
		{"read failure", errors.New("unexpected EOF")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(failingClient(tt.err), true, 0)

			resp, err := engine.Complete(context.Background(), userRequest("Hello!"), "req-2")
			if err != nil {
				t.Fatalf("fallback mode must absorb backend failures, got %v", err)
			}
			if len(resp.Choices) == 0 {
				t.Fatal("fallback response has no choices")
			}
			if got := resp.Choices[0].Message.Content; got != "Echo: Hello!" {
				t.Errorf("content = %q, want echo fallback", got)
			}
		})
	}
}

func TestCompleteEmptyChoicesFallsBack(t *testing.T) {
	mock := backend.NewMockClient()
	mock.ChatFunc = func(context.Context, llm.ChatRequest, string) (*llm.ChatResponse, error) {
		return &llm.ChatResponse{ID: "upstream", Object: "chat.completion"}, nil
	}
	engine := NewEngine(mock, true, 0)

	resp, err := engine.Complete(context.Background(), userRequest("hi"), "req-3")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Choices[0].Message.Content != "Echo: hi" {
		t.Errorf("content = %q, want echo fallback", resp.Choices[0].Message.Content)
	}
}

func TestCompleteNonFallbackModeSurfacesErrors(t *testing.T) {
	backendErr := &backend.StatusError{StatusCode: 503, Body: "down"}
	engine := NewEngine(failingClient(backendErr), false, 0)

	_, err := engine.Complete(context.Background(), userRequest("hi"), "req-4")
	if err == nil {
		t.Fatal("non-fallback mode must surface backend errors")
	}

	var statusErr *backend.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *backend.StatusError", err)
	}
	if got := ErrorStatus(err); got != 502 {
		t.Errorf("ErrorStatus() = %d, want 502", got)
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	mock := failingClient(&backend.StatusError{StatusCode: 500})
	engine := NewEngine(mock, true, 0)

	// Trip the breaker
	for i := 0; i < 5; i++ {
		if _, err := engine.Complete(context.Background(), userRequest("hi"), "req"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	callsWhenOpen := mock.ChatCallCount()

	// Subsequent calls still succeed via echo without touching the
	// backend
	resp, err := engine.Complete(context.Background(), userRequest("Hello!"), "req-5")
	if err != nil {
		t.Fatalf("Complete() with open breaker: %v", err)
	}
	if resp.Choices[0].Message.Content != "Echo: Hello!" {
		t.Errorf("content = %q, want echo fallback", resp.Choices[0].Message.Content)
	}
	if mock.ChatCallCount() != callsWhenOpen {
		t.Errorf("backend called while breaker open: %d -> %d", callsWhenOpen, mock.ChatCallCount())
	}
}

func collectStream(t *testing.T, ch <-chan llm.ChatChunk) []llm.ChatChunk {
	t.Helper()
	var chunks []llm.ChatChunk
	deadline := time.After(2 * time.Second)
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return chunks
			}
			chunks = append(chunks, chunk)
		case <-deadline:
			t.Fatal("stream did not close")
		}
	}
}

func TestStreamEchoMode(t *testing.T) {
	engine := NewEngine(nil, true, 0)

	ch, err := engine.Stream(context.Background(), userRequest("Hello!"), "req-6")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	chunks := collectStream(t, ch)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	var content strings.Builder
	for _, chunk := range chunks {
		if chunk.ID != "req-6" {
			t.Errorf("chunk id = %q, want req-6", chunk.ID)
		}
		if chunk.Object != "chat.completion.chunk" {
			t.Errorf("chunk object = %q", chunk.Object)
		}
		content.WriteString(chunk.Choices[0].Delta.Content)
	}
	if content.String() != "Echo: Hello!" {
		t.Errorf("streamed content = %q, want %q", content.String(), "Echo: Hello!")
	}

	last := chunks[len(chunks)-1]
	if last.Choices[0].FinishReason == nil || *last.Choices[0].FinishReason != "stop" {
		t.Error("final chunk must carry finish_reason stop")
	}
	if chunks[0].Choices[0].FinishReason != nil {
		t.Error("non-final chunk must carry null finish_reason")
	}
}

func TestStreamAndCompleteAgreeOnContent(t *testing.T) {
	engine := NewEngine(nil, true, 0)
	req := userRequest("same text both ways")

	resp, err := engine.Complete(context.Background(), req, "req-7")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	ch, err := engine.Stream(context.Background(), req, "req-7")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	var streamed strings.Builder
	for _, chunk := range collectStream(t, ch) {
		streamed.WriteString(chunk.Choices[0].Delta.Content)
	}

	if streamed.String() != resp.Choices[0].Message.Content {
		t.Errorf("streaming content %q != non-streaming content %q",
			streamed.String(), resp.Choices[0].Message.Content)
	}
}

func TestStreamBackendChunksAreRestamped(t *testing.T) {
	mock := backend.NewMockClient()
	engine := NewEngine(mock, true, 0)

	req := userRequest("hi")
	req.Model = "gpt-4"

	ch, err := engine.Stream(context.Background(), req, "req-8")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	chunks := collectStream(t, ch)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for _, chunk := range chunks {
		if chunk.ID != "req-8" {
			t.Errorf("chunk id = %q, want req-8", chunk.ID)
		}
		if chunk.Model != "gpt-4" {
			t.Errorf("chunk model = %q, want gpt-4", chunk.Model)
		}
	}
}

func TestStreamFallsBackOnBackendError(t *testing.T) {
	engine := NewEngine(failingClient(errors.New("connection reset")), true, 0)

	ch, err := engine.Stream(context.Background(), userRequest("Hello!"), "req-10")
	if err != nil {
		t.Fatalf("fallback mode must absorb stream setup failures, got %v", err)
	}

	var content strings.Builder
	for _, chunk := range collectStream(t, ch) {
		content.WriteString(chunk.Choices[0].Delta.Content)
	}
	if content.String() != "Echo: Hello!" {
		t.Errorf("streamed content = %q, want echo fallback", content.String())
	}
}

func TestStreamNonFallbackModeSurfacesErrors(t *testing.T) {
	engine := NewEngine(failingClient(context.DeadlineExceeded), false, 0)

	_, err := engine.Stream(context.Background(), userRequest("hi"), "req-11")
	if err == nil {
		t.Fatal("non-fallback mode must surface stream failures")
	}
	if got := ErrorStatus(err); got != 504 {
		t.Errorf("ErrorStatus() = %d, want 504 for timeout", got)
	}
}

func TestStreamStopsWhenClientDisconnects(t *testing.T) {
	mock := backend.NewMockClient()
	blocked := make(chan llm.ChatChunk)
	mock.StreamFunc = func(ctx context.Context, _ llm.ChatRequest, _ string) (<-chan llm.ChatChunk, error) {
		return blocked, nil
	}
	engine := NewEngine(mock, true, 0)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := engine.Stream(ctx, userRequest("hi"), "req-12")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	// Client goes away while the upstream is silent; the relay must
	// close its output promptly instead of waiting for a chunk
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			for range ch {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay channel did not close after cancellation")
	}
	close(blocked)
}
