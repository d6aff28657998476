package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/themobileprof/inference-gateway/internal/circuitbreaker"
	"github.com/themobileprof/inference-gateway/pkg/backend"
)

// Condition identifies a class of backend failure. Every condition maps
// to the same fallback decision; the distinction exists for logs and
// metrics, and for the status code surfaced in non-fallback mode.
type Condition string

const (
	ConditionBackendStatus Condition = "backend_status"
	ConditionConnect       Condition = "connect"
	ConditionTimeout       Condition = "timeout"
	ConditionReadWrite     Condition = "read_write"
	ConditionBadResponse   Condition = "bad_response"
	ConditionCircuitOpen   Condition = "circuit_open"
)

// Classify maps a backend call error to its failure condition
func Classify(err error) Condition {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return ConditionCircuitOpen
	}

	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		return ConditionBackendStatus
	}

	var parseErr *backend.ParseError
	if errors.As(err, &parseErr) {
		return ConditionBadResponse
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ConditionTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConditionTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ConditionConnect
	}

	return ConditionReadWrite
}

// ErrorStatus maps a backend failure to the HTTP status surfaced when
// fallback is disabled: 504 for timeouts, 502 for everything else.
func ErrorStatus(err error) int {
	if Classify(err) == ConditionTimeout {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// ErrorMessage describes a backend failure for the non-fallback error
// body.
func ErrorMessage(err error) string {
	switch Classify(err) {
	case ConditionBackendStatus:
		var statusErr *backend.StatusError
		errors.As(err, &statusErr)
		return fmt.Sprintf("Backend error: %d", statusErr.StatusCode)
	case ConditionConnect:
		return fmt.Sprintf("Backend connection failed: %v", err)
	case ConditionTimeout:
		return "Backend request timed out"
	case ConditionBadResponse:
		return "Backend returned non-JSON response"
	case ConditionCircuitOpen:
		return "Backend temporarily unavailable"
	default:
		return fmt.Sprintf("Backend read failed: %v", err)
	}
}
