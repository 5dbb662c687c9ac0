package cluster

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// NewBasicHealthHandler is a liveness check: it only proves the process
// is serving HTTP.
func NewBasicHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Service is alive.")
	}
}

// CheckFunc returns an error when the dependency it probes is unhealthy.
type CheckFunc func() error

// HealthAggregator runs every registered check behind a single endpoint.
type HealthAggregator struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewHealthAggregator() *HealthAggregator {
	return &HealthAggregator{
		checks: make(map[string]CheckFunc),
	}
}

func (h *HealthAggregator) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Check runs all checks and returns the failures by name.
func (h *HealthAggregator) Check() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	failures := make(map[string]string)
	for name, check := range h.checks {
		if err := check(); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}

// Handler answers 200 when every check passes and 503 with the failures
// otherwise.
func (h *HealthAggregator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failures := h.Check()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(failures)
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}
