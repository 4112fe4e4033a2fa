// Package handlers implements the HTTP handlers for the API server.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/bucketree/bucketree/internal/errors"
)

// HealthChecker reports the health of one subsystem.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthResponse is the body returned by the health endpoints when the
// service is healthy or degraded.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Time    time.Time         `json:"time"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// checkTimeout bounds each individual health check.
const checkTimeout = 5 * time.Second

// HealthManager runs registered checkers and serves the health endpoints.
type HealthManager struct {
	version  string
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthManager creates a manager reporting the given version.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		version:  version,
		checkers: make(map[string]HealthChecker),
	}
}

// RegisterChecker adds a named health checker. Re-registering a name
// replaces the previous checker.
func (m *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[name] = checker
}

// runChecks executes every checker with a per-check timeout.
func (m *HealthManager) runChecks(ctx context.Context) map[string]string {
	m.mu.RLock()
	checkers := make(map[string]HealthChecker, len(m.checkers))
	for name, c := range m.checkers {
		checkers[name] = c
	}
	m.mu.RUnlock()

	results := make(map[string]string, len(checkers))
	for name, c := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.CheckHealth(checkCtx)
		cancel()

		switch {
		case err == nil:
			results[name] = "healthy"
		case checkCtx.Err() == context.DeadlineExceeded:
			results[name] = "timeout"
		default:
			results[name] = "unhealthy"
		}
	}
	return results
}

// determineOverallStatus folds per-check results into a single status.
// Any unhealthy check makes the service unhealthy; timeouts alone mean
// degraded.
func (m *HealthManager) determineOverallStatus(checks map[string]string) string {
	status := "healthy"
	for _, s := range checks {
		switch s {
		case "unhealthy":
			return "unhealthy"
		case "timeout":
			status = "degraded"
		}
	}
	return status
}

// HealthHandler serves the full health report.
func (m *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := m.runChecks(r.Context())
	status := m.determineOverallStatus(checks)

	if status == "unhealthy" {
		details := map[string]any{"checks": checks}
		apperrors.WriteError(w, r, http.StatusServiceUnavailable,
			apperrors.CodeServiceUnavailable, "one or more health checks failed", details)
		return
	}

	writeHealth(w, HealthResponse{
		Status:  status,
		Version: m.version,
		Time:    time.Now().UTC(),
		Checks:  checks,
	})
}

// LivenessHandler reports process liveness. It never runs checkers: a
// live process should not be restarted because a dependency is down.
func (m *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, HealthResponse{
		Status:  "healthy",
		Version: m.version,
		Time:    time.Now().UTC(),
	})
}

// ReadinessHandler reports whether the service can take traffic.
func (m *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	m.HealthHandler(w, r)
}

// StartupHandler reports whether startup completed.
func (m *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	m.LivenessHandler(w, r)
}

func writeHealth(w http.ResponseWriter, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// globalHealthManager backs the package-level handlers used by route
// registration before a server instance exists.
var globalHealthManager *HealthManager

// InitHealthManager initializes the global health manager.
func InitHealthManager(version string) {
	globalHealthManager = NewHealthManager(version)
}

// GetHealthManager returns the global manager, or nil before init.
func GetHealthManager() *HealthManager {
	return globalHealthManager
}

// HealthHandler serves the global health report.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if globalHealthManager == nil {
		writeUninitialized(w, r)
		return
	}
	globalHealthManager.HealthHandler(w, r)
}

// LivenessHandler serves the global liveness probe.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	if globalHealthManager == nil {
		writeUninitialized(w, r)
		return
	}
	globalHealthManager.LivenessHandler(w, r)
}

// ReadinessHandler serves the global readiness probe.
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if globalHealthManager == nil {
		writeUninitialized(w, r)
		return
	}
	globalHealthManager.ReadinessHandler(w, r)
}

// StartupHandler serves the global startup probe.
func StartupHandler(w http.ResponseWriter, r *http.Request) {
	if globalHealthManager == nil {
		writeUninitialized(w, r)
		return
	}
	globalHealthManager.StartupHandler(w, r)
}

func writeUninitialized(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteError(w, r, http.StatusServiceUnavailable,
		apperrors.CodeServiceUnavailable, "health manager not initialized", nil)
}
