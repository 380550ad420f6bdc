package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/coopsoc/lending-engine/internal/store"
	"github.com/coopsoc/lending-engine/pkg/response"
)

type HealthHandler struct {
	store   store.DocumentStore
	timeout time.Duration
}

func NewHealthHandler(documentStore store.DocumentStore, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		store:   documentStore,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready performs a readiness check including store connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		status.Status = "error"
		status.Checks["store"] = "failed: " + err.Error()
	} else {
		status.Checks["store"] = "ok"
	}

	if status.Status == "error" {
		response.Error(w, http.StatusServiceUnavailable, "Service not ready", nil)
		return
	}

	response.Success(w, status)
}
