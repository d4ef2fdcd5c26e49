package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker is a dependency that can report whether it is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheckerFunc adapts a function to HealthChecker
type HealthCheckerFunc func(ctx context.Context) error

// Health implements HealthChecker
func (f HealthCheckerFunc) Health(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests
type HealthHandler struct {
	critical map[string]HealthChecker
	optional map[string]HealthChecker
	stats    func() interface{}
	timeout  time.Duration
}

// NewHealthHandler creates a new health handler. The database is the only
// critical dependency; further checks are added with WithCheck.
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{
		critical: map[string]HealthChecker{"database": db},
		optional: map[string]HealthChecker{},
		timeout:  2 * time.Second,
	}
}

// WithCheck registers a non-critical dependency. Its failure degrades the
// detailed report but does not fail readiness.
func (h *HealthHandler) WithCheck(name string, c HealthChecker) *HealthHandler {
	h.optional[name] = c
	return h
}

// WithStats attaches a snapshot function reported under "pool"
func (h *HealthHandler) WithStats(fn func() interface{}) *HealthHandler {
	h.stats = fn
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
	Uptime  string            `json:"uptime,omitempty"`
	Pool    interface{}       `json:"pool,omitempty"`
}

// Version is reported by the health endpoints
var Version = "dev"

var startTime = time.Now()

// GetHealth handles GET /health
func GetHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(startTime).String(),
		Checks:  map[string]string{},
	})
}

// GetHealthDetailed handles GET /health/detailed. A failing critical check
// answers 503, a failing optional one only marks the report degraded.
func (h *HealthHandler) GetHealthDetailed(w http.ResponseWriter, r *http.Request) {
	critical := h.run(r.Context(), h.critical)
	optional := h.run(r.Context(), h.optional)

	status, httpStatus := "ok", http.StatusOK
	checks := make(map[string]string, len(critical)+len(optional))
	for name, err := range optional {
		checks[name] = describe(err)
		if err != nil {
			status = "degraded"
		}
	}
	for name, err := range critical {
		checks[name] = describe(err)
		if err != nil {
			status, httpStatus = "unhealthy", http.StatusServiceUnavailable
		}
	}

	resp := HealthResponse{
		Status:  status,
		Version: Version,
		Uptime:  time.Since(startTime).String(),
		Checks:  checks,
	}
	if h.stats != nil {
		resp.Pool = h.stats()
	}
	respondWithJSON(w, httpStatus, resp)
}

// GetReadiness handles GET /health/ready
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	results := h.run(r.Context(), h.critical)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if results[name] != nil {
			respondWithError(w, http.StatusServiceUnavailable, "NOT_READY", name+" not ready")
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GetLiveness handles GET /health/live
func GetLiveness(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// run checks every dependency concurrently under the handler timeout
func (h *HealthHandler) run(ctx context.Context, checks map[string]HealthChecker) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]error, len(checks))
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, c := range checks {
		name, c := name, c
		g.Go(func() error {
			err := c.Health(gctx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func describe(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
