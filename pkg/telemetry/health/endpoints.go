package health

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// VersionInfo is the payload of the version endpoint.
type VersionInfo struct {
	// Version is the semantic version (e.g. "1.0.0").
	Version string `json:"version"`

	// Commit is the git commit hash the binary was built from.
	Commit string `json:"commit"`

	// BuildTime is when the binary was built.
	BuildTime string `json:"build_time"`

	// GoVersion is the Go toolchain version used to build.
	GoVersion string `json:"go_version"`
}

// LivenessHandler serves the liveness probe. It always answers 200 while
// the process can handle requests.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snapshot := c.Liveness()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(snapshot)
		}
	}
}

// ReadinessHandler serves the readiness probe: 200 with per-dependency
// results when every probe passes, 503 when any dependency is degraded.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snapshot := c.Readiness(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if snapshot.Status == StatusDegraded || snapshot.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(snapshot)
		}
	}
}

// VersionHandler serves build information.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(info)
		}
	}
}

// RateLimited wraps a probe handler with a token-bucket limit so
// aggressive orchestrator probing cannot turn the readiness checks into
// load. Non-positive rates disable the limit.
func RateLimited(handler http.HandlerFunc, requestsPerSecond int) http.HandlerFunc {
	if requestsPerSecond <= 0 {
		return handler
	}

	tokens := make(chan struct{}, requestsPerSecond)
	for i := 0; i < requestsPerSecond; i++ {
		tokens <- struct{}{}
	}

	ticker := time.NewTicker(time.Second / time.Duration(requestsPerSecond))
	go func() {
		for range ticker.C {
			select {
			case tokens <- struct{}{}:
			default:
			}
		}
	}()

	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-tokens:
			handler(w, r)
		default:
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
		}
	}
}
