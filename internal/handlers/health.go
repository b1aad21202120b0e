package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/otcheredev/hospital-visitor-access/internal/response"
	"github.com/rs/zerolog/log"
)

// Checker reports whether a dependency is reachable
type Checker func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]Checker
	timeout time.Duration
}

func NewHealthHandler(checks map[string]Checker) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string, len(h.checks)),
	}

	for name, err := range h.run(r.Context()) {
		if err != nil {
			log.Warn().Err(err).Str("service", name).Msg("Health check failed")
			res.Services[name] = "unhealthy"
			res.Status = "degraded"
		} else {
			res.Services[name] = "healthy"
		}
	}

	status := http.StatusOK
	if res.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, res)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	for name, err := range h.run(r.Context()) {
		if err != nil {
			response.WriteError(w, http.StatusServiceUnavailable, name+" not ready", response.CodeUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *HealthHandler) run(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(map[string]error, len(h.checks))
	for name, check := range h.checks {
		results[name] = check(ctx)
	}
	return results
}
