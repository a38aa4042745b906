package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"veristone-hq/clarion/pkg/api"
)

// APIKeySource defines where to extract presented API keys from.
type APIKeySource struct {
	// Header is the header name to read.
	Header string

	// Scheme is an optional prefix ("Bearer"); empty means the raw value.
	Scheme string
}

// DefaultSources checks the Authorization header with the Bearer scheme
// first, then the bare X-API-Key header. Query parameters are not
// supported: secrets in URLs end up in access logs.
func DefaultSources() []APIKeySource {
	return []APIKeySource{
		{Header: "Authorization", Scheme: "Bearer"},
		{Header: "X-API-Key"},
	}
}

// APIKeyMiddleware is the HTTP gate for API key authentication. It is a
// pass/fail boundary check: a request either carries a valid, enabled key
// or is answered 401. No roles or scopes attach to a key.
type APIKeyMiddleware struct {
	validator KeyValidator
	sources   []APIKeySource
}

// NewAPIKeyMiddleware creates the authentication gate. A nil or empty
// sources list falls back to DefaultSources.
func NewAPIKeyMiddleware(validator KeyValidator, sources []APIKeySource) *APIKeyMiddleware {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &APIKeyMiddleware{
		validator: validator,
		sources:   sources,
	}
}

// Handle wraps an HTTP handler with API key authentication.
func (m *APIKeyMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := m.extractAPIKey(r)
		if presented == "" {
			slog.Warn("Missing API key",
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			writeUnauthorized(w)
			return
		}

		info, err := m.validator.Validate(presented)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, ErrKeyDisabled) {
				level = slog.LevelInfo
			}
			slog.Log(r.Context(), level, "API key rejected",
				"error", err.Error(),
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			writeUnauthorized(w)
			return
		}

		slog.Debug("API key authenticated",
			"key", info.Name,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), keyInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractAPIKey tries each configured source in order and returns the
// first value found, empty when none carries a key.
func (m *APIKeyMiddleware) extractAPIKey(r *http.Request) string {
	for _, source := range m.sources {
		value := r.Header.Get(source.Header)
		if value == "" {
			continue
		}

		if source.Scheme == "" {
			return value
		}

		prefix := source.Scheme + " "
		if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
			return strings.TrimSpace(value[len(prefix):])
		}
	}

	return ""
}

// writeUnauthorized answers the uniform 401 envelope. The same body covers
// missing, unknown, and disabled keys.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.NewErrorEnvelope("unauthorized", ""))
}

// Context key for the authenticated key identity.
type contextKey string

const keyInfoKey contextKey = "api_key_info"

// GetKeyInfo retrieves the authenticated key identity from the context.
func GetKeyInfo(ctx context.Context) (*KeyInfo, bool) {
	info, ok := ctx.Value(keyInfoKey).(*KeyInfo)
	return info, ok
}

// KeyNameFromContext returns the authenticated key name, empty when the
// request did not pass through the gate.
func KeyNameFromContext(ctx context.Context) string {
	if info, ok := GetKeyInfo(ctx); ok {
		return info.Name
	}
	return ""
}
