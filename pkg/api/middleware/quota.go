package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"veristone-hq/clarion/pkg/api"
	"veristone-hq/clarion/pkg/limits"
	"veristone-hq/clarion/pkg/security/auth"
)

// QuotaMiddleware gates requests on per-key usage quotas. The key is the
// API key name placed in the context by the auth middleware; unkeyed
// requests share the anonymous bucket. Usage is measured at the boundary:
// one request plus the wire bytes received.
//
// Under the block action an exhausted quota answers 429 with the quota
// detail and a Retry-After hint. Under warn the request passes and the
// violation is logged.
//
// Example usage:
//
//	handler = QuotaMiddleware(enforcer)(handler)
func QuotaMiddleware(enforcer *limits.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enforcer == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := auth.KeyNameFromContext(r.Context())
			if key == "" {
				key = limits.AnonymousKey
			}

			bytes := r.ContentLength
			if bytes < 0 {
				bytes = 0
			}

			decision := enforcer.Admit(key, bytes)
			if !decision.Allowed {
				slog.Warn("Quota exhausted",
					slog.String("key", key),
					slog.String("window", decision.Window),
					slog.String("resource", decision.Resource),
					slog.Int64("limit", decision.Limit),
					slog.Int64("used", decision.Used),
					slog.String("request_id", GetRequestID(r.Context())))

				if decision.RetryAfter > 0 {
					w.Header().Set("Retry-After",
						strconv.Itoa(int(decision.RetryAfter.Seconds())))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(
					api.NewErrorEnvelope("quota exceeded", decision.Reason))
				return
			}

			// Warn action: over quota but configured to allow.
			if decision.Reason != "" {
				slog.Warn("Quota exceeded, allowing per configured action",
					slog.String("key", key),
					slog.String("window", decision.Window),
					slog.String("resource", decision.Resource),
					slog.String("request_id", GetRequestID(r.Context())))
			}

			next.ServeHTTP(w, r)
		})
	}
}
