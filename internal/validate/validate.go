// Package validate checks and normalizes raw chat-completion request
// bodies into the canonical llm.ChatRequest. Validation and
// normalization are separate stages: Check never mutates its input, and
// Normalize is total on input that passed Check.
package validate

import (
	"math"

	"github.com/themobileprof/inference-gateway/pkg/llm"
)

// Bounds for optional numeric fields
const (
	MinMaxTokens   = 1
	MaxMaxTokens   = 128000
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// DefaultModel is used when the request omits the model field
const DefaultModel = "echo"

// Error is a field-level validation failure. Key is a stable machine
// identifier, Message a human-readable description.
type Error struct {
	Key     string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Key + ": " + e.Message
}

// Check validates a parsed JSON object against the chat-completion
// schema. Rules are applied in a fixed order and the first failure wins.
func Check(raw map[string]interface{}) *Error {
	if err := checkMessages(raw); err != nil {
		return err
	}

	if v, ok := raw["stream"]; ok {
		if _, isBool := v.(bool); !isBool {
			return &Error{Key: "invalid_stream", Message: "stream must be a boolean"}
		}
	}

	if v, ok := raw["max_tokens"]; ok {
		n, isNum := v.(float64)
		if !isNum || n != math.Trunc(n) || n < MinMaxTokens || n > MaxMaxTokens {
			return &Error{Key: "invalid_max_tokens", Message: "max_tokens must be an integer between 1 and 128000"}
		}
	}

	if v, ok := raw["model"]; ok {
		if _, isStr := v.(string); !isStr {
			return &Error{Key: "invalid_model", Message: "model must be a string"}
		}
	}

	if v, ok := raw["temperature"]; ok {
		n, isNum := v.(float64)
		if !isNum || n < MinTemperature || n > MaxTemperature {
			return &Error{Key: "invalid_temperature", Message: "temperature must be a number between 0.0 and 2.0"}
		}
	}

	if v, ok := raw["stop"]; ok {
		if !validStop(v) {
			return &Error{Key: "invalid_stop", Message: "stop must be a string or an array of strings"}
		}
	}

	return nil
}

func checkMessages(raw map[string]interface{}) *Error {
	invalid := &Error{Key: "invalid_messages", Message: "messages must be a non-empty array of {role, content} objects with string fields"}

	v, ok := raw["messages"]
	if !ok {
		return invalid
	}

	list, ok := v.([]interface{})
	if !ok || len(list) == 0 {
		return invalid
	}

	for _, item := range list {
		msg, ok := item.(map[string]interface{})
		if !ok {
			return invalid
		}
		if _, ok := msg["role"].(string); !ok {
			return invalid
		}
		if _, ok := msg["content"].(string); !ok {
			return invalid
		}
	}

	return nil
}

func validStop(v interface{}) bool {
	switch stop := v.(type) {
	case string:
		return true
	case []interface{}:
		for _, item := range stop {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Normalize builds the canonical request from a validated body: defaults
// are applied and every unrecognized key is dropped, so unknown fields
// never reach downstream logic or the backend.
func Normalize(raw map[string]interface{}) llm.ChatRequest {
	req := llm.ChatRequest{
		Model:  DefaultModel,
		Stream: false,
	}

	list := raw["messages"].([]interface{})
	req.Messages = make([]llm.ChatMessage, 0, len(list))
	for _, item := range list {
		msg := item.(map[string]interface{})
		req.Messages = append(req.Messages, llm.ChatMessage{
			Role:    msg["role"].(string),
			Content: msg["content"].(string),
		})
	}

	if v, ok := raw["model"].(string); ok {
		req.Model = v
	}
	if v, ok := raw["stream"].(bool); ok {
		req.Stream = v
	}
	if v, ok := raw["max_tokens"].(float64); ok {
		n := int(v)
		req.MaxTokens = &n
	}
	if v, ok := raw["temperature"].(float64); ok {
		t := v
		req.Temperature = &t
	}

	switch stop := raw["stop"].(type) {
	case string:
		req.Stop = stop
	case []interface{}:
		seqs := make([]string, 0, len(stop))
		for _, item := range stop {
			seqs = append(seqs, item.(string))
		}
		req.Stop = seqs
	}

	return req
}
