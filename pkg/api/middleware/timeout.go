package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"veristone-hq/clarion/pkg/api"
)

// TimeoutMiddleware bounds one request end to end using context.WithTimeout.
// The deadline covers the whole analysis: body read, remote fetch, and the
// upstream fan-out all inherit it through the request context. On expiry
// the client receives a 504 envelope.
//
// Example usage:
//
//	handler = TimeoutMiddleware(60 * time.Second)(handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			// Re-propagate handler panics on the request goroutine so the
			// recovery middleware can catch them (same pattern as
			// net/http.TimeoutHandler).
			panicChan := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- p
					}
				}()
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicChan:
				panic(p)

			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					return
				}

				slog.Warn("Request deadline exceeded",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("timeout", timeout.String()))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_ = json.NewEncoder(w).Encode(
					api.NewErrorEnvelope("request timeout", ""))
			}
		})
	}
}
