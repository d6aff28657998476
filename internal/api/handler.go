// Package api wires the request pipeline to HTTP: JSON parsing, schema
// validation, identity resolution, the forwarding engine, and SSE
// delivery for streaming responses.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/inference-gateway/internal/gateway"
	"github.com/themobileprof/inference-gateway/internal/requestid"
	"github.com/themobileprof/inference-gateway/internal/validate"
	"github.com/themobileprof/inference-gateway/pkg/llm"
)

// Handler serves the OpenAI-compatible HTTP surface
type Handler struct {
	engine *gateway.Engine
}

// NewHandler creates a new API handler
func NewHandler(engine *gateway.Engine) *Handler {
	return &Handler{engine: engine}
}

// Healthz reports liveness regardless of backend state
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListModels returns the static local model listing
func (h *Handler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, llm.ModelList{
		Object: "list",
		Data: []llm.Model{
			{
				ID:      "echo",
				Object:  "model",
				Created: 0,
				OwnedBy: "inference-gateway",
			},
		},
	})
}

// ChatCompletions handles POST /v1/chat/completions, both streaming and
// non-streaming
func (h *Handler) ChatCompletions(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "malformed_body",
			"message": "request body is not valid JSON",
		})
		return
	}

	if verr := validate.Check(raw); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   verr.Key,
			"message": verr.Message,
		})
		return
	}

	req := validate.Normalize(raw)

	// Resolved once; the same value goes to the response header and
	// every response body
	requestID := requestid.Resolve(c.Request.Header)
	c.Header("X-Request-ID", requestID)

	ctx := c.Request.Context()

	if !req.Stream {
		resp, err := h.engine.Complete(ctx, req, requestID)
		if err != nil {
			c.JSON(gateway.ErrorStatus(err), gin.H{"error": gateway.ErrorMessage(err)})
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	chunks, err := h.engine.Stream(ctx, req, requestID)
	if err != nil {
		c.JSON(gateway.ErrorStatus(err), gin.H{"error": gateway.ErrorMessage(err)})
		return
	}

	streamSSE(c, chunks)
}

// streamSSE writes each chunk as a `data:` event, flushing immediately
// so delivery stays incremental, and terminates with `data: [DONE]`.
// Stops producing as soon as the client disconnects.
func streamSSE(c *gin.Context, chunks <-chan llm.ChatChunk) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				fmt.Fprint(c.Writer, "data: [DONE]\n\n")
				c.Writer.Flush()
				return
			}
			data, err := json.Marshal(chunk)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", data)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
