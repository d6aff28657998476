// Package gateway implements the forwarding engine: echo-mode
// short-circuit, backend calls with error classification, and fallback
// to echo. It composes the response assembler and is transport-agnostic;
// HTTP concerns live in internal/api.
package gateway

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/themobileprof/inference-gateway/internal/circuitbreaker"
	"github.com/themobileprof/inference-gateway/internal/echo"
	"github.com/themobileprof/inference-gateway/internal/metrics"
	"github.com/themobileprof/inference-gateway/pkg/backend"
	"github.com/themobileprof/inference-gateway/pkg/llm"
)

// Engine orchestrates one chat-completion call. All fields are set at
// construction and never mutated, so a single Engine serves concurrent
// requests.
type Engine struct {
	client          llm.Client // nil means echo-only mode
	fallbackEnabled bool
	timeout         time.Duration
	breaker         *circuitbreaker.CircuitBreaker
}

// NewEngine creates a forwarding engine. A nil client puts the engine in
// echo-only mode. When fallbackEnabled is false, backend failures are
// returned to the caller instead of degrading to echo.
func NewEngine(client llm.Client, fallbackEnabled bool, timeout time.Duration) *Engine {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		client:          client,
		fallbackEnabled: fallbackEnabled,
		timeout:         timeout,
		breaker:         circuitbreaker.New(5, time.Minute),
	}
}

// Complete handles a non-streaming request
func (e *Engine) Complete(ctx context.Context, req llm.ChatRequest, requestID string) (*llm.ChatResponse, error) {
	prompt := echo.Prompt(req.Messages)

	if e.client == nil {
		metrics.RecordRequest("echo", "success")
		return BuildResponse(requestID, req.Model, echo.Reply(prompt), prompt), nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var resp *llm.ChatResponse
	start := time.Now()
	err := e.breaker.Call(func() error {
		r, callErr := e.client.ChatCompletion(ctx, req, requestID)
		if callErr != nil {
			return callErr
		}
		if len(r.Choices) == 0 {
			return &backend.ParseError{Cause: errors.New("backend completion has no choices")}
		}
		resp = r
		return nil
	})
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		metrics.RecordBackendRequest(time.Since(start), err == nil)
	}

	if err != nil {
		return e.completeFallback(req, requestID, prompt, err)
	}

	// Relay the backend completion re-stamped with the resolved
	// identity and the canonical model
	resp.ID = requestID
	resp.Model = req.Model
	metrics.RecordRequest("backend", "success")
	return resp, nil
}

func (e *Engine) completeFallback(req llm.ChatRequest, requestID, prompt string, err error) (*llm.ChatResponse, error) {
	condition := Classify(err)
	log.Printf("Backend call failed (%s): %v", condition, err)

	if !e.fallbackEnabled {
		metrics.RecordRequest("backend", "error")
		return nil, err
	}

	metrics.RecordFallback(string(condition))
	metrics.RecordRequest("backend", "fallback")
	return BuildResponse(requestID, req.Model, echo.Reply(prompt), prompt), nil
}

// Stream handles a streaming request. The returned channel delivers
// chunks in generation order and is closed when the stream ends; the
// caller appends the [DONE] terminator.
func (e *Engine) Stream(ctx context.Context, req llm.ChatRequest, requestID string) (<-chan llm.ChatChunk, error) {
	prompt := echo.Prompt(req.Messages)

	if e.client == nil {
		metrics.RecordRequest("echo", "success")
		return echoStream(requestID, req.Model, prompt), nil
	}

	// The timeout bounds the whole stream, not just its first byte.
	// cancel is handed to the relay goroutine.
	streamCtx, cancel := context.WithTimeout(ctx, e.timeout)

	var upstream <-chan llm.ChatChunk
	err := e.breaker.Call(func() error {
		ch, callErr := e.client.StreamChatCompletion(streamCtx, req, requestID)
		if callErr != nil {
			return callErr
		}
		upstream = ch
		return nil
	})

	if err != nil {
		cancel()
		condition := Classify(err)
		log.Printf("Backend stream failed (%s): %v", condition, err)

		if !e.fallbackEnabled {
			metrics.RecordRequest("backend", "error")
			return nil, err
		}

		metrics.RecordFallback(string(condition))
		metrics.RecordRequest("backend", "fallback")
		return echoStream(requestID, req.Model, prompt), nil
	}

	metrics.RecordRequest("backend", "success")

	out := make(chan llm.ChatChunk, 32)
	go func() {
		defer close(out)
		defer cancel()

		for {
			select {
			case chunk, ok := <-upstream:
				if !ok {
					return
				}
				chunk.ID = requestID
				chunk.Model = req.Model
				select {
				case out <- chunk:
				case <-streamCtx.Done():
					return
				}
			case <-streamCtx.Done():
				return
			}
		}
	}()

	return out, nil
}

// echoStream emits one content chunk and one terminal stop chunk. The
// channel is pre-filled and closed so the consumer still receives every
// chunk in order.
func echoStream(requestID, model, prompt string) <-chan llm.ChatChunk {
	content := echo.Reply(prompt)
	stop := "stop"

	ch := make(chan llm.ChatChunk, 2)
	ch <- BuildChunk(requestID, model, &content, nil)
	ch <- BuildChunk(requestID, model, nil, &stop)
	close(ch)
	return ch
}
