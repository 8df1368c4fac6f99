package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const probeTimeout = 2 * time.Second

// ProbeFunc reports whether a single dependency is reachable.
type ProbeFunc func(ctx context.Context) error

// HealthStatus is the JSON body served on the health endpoint.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker aggregates named dependency probes. Probes are registered
// at startup; Check runs each under its own short timeout so one stuck
// dependency cannot hold the endpoint open.
type HealthChecker struct {
	probes map[string]ProbeFunc
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{probes: make(map[string]ProbeFunc)}
}

// AddProbe registers a named dependency check. Not safe to call once the
// handler is serving.
func (h *HealthChecker) AddProbe(name string, probe ProbeFunc) {
	h.probes[name] = probe
}

// DatabaseProbe pings the invoice database pool.
func DatabaseProbe(pool *pgxpool.Pool) ProbeFunc {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

// Check runs every registered probe and reports per-dependency results.
// The aggregate status is unhealthy when any probe fails; a checker with
// no probes reports healthy.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(h.probes)),
	}

	for name, probe := range h.probes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := probe(probeCtx)
		cancel()

		if err != nil {
			status.Checks[name] = "unhealthy: " + err.Error()
			status.Status = "unhealthy"
		} else {
			status.Checks[name] = "healthy"
		}
	}

	return status
}

// HealthHandler serves the aggregated probe results, answering 503 when
// any dependency is down.
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(status)
	}
}
