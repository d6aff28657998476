// Package requestid derives the tracking identifier for one inbound
// call. The same value must be used for the response body id and the
// X-Request-ID response header, so Resolve is called exactly once per
// request.
package requestid

import (
	"net/http"

	"github.com/google/uuid"
)

// Headers checked for a client-supplied identity, in precedence order
var headerNames = []string{"X-Request-ID", "Request-Id"}

// Resolve returns the client-supplied request ID when present, or a
// freshly generated UUID otherwise. Header lookup is case-insensitive.
func Resolve(h http.Header) string {
	for _, name := range headerNames {
		if value := h.Get(name); value != "" {
			return value
		}
	}
	return uuid.NewString()
}
