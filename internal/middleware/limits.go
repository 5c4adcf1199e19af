package middleware

import (
	"net/http"
	"time"
)

// Common size limits.
const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize covers webhook payloads and form posts with
	// plenty of headroom.
	DefaultMaxBodySize = 1 * MB
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// MaxBodySize rejects request bodies over maxBytes with 413.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout bounds handler execution. Handlers that exceed it get a 503 and a
// cancelled request context.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "Request timeout")
	}
}
