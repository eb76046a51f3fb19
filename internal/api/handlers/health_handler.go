package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/version"
)

var startTime = time.Now()

// HealthHandler обробляє health check endpoints
type HealthHandler struct{}

// NewHealthHandler створює новий HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse структура відповіді health check
type HealthResponse struct {
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Go        string            `json:"go_version"`
	BuildInfo map[string]string `json:"build_info,omitempty"`
}

// Health перевіряє статус системи
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Uptime:    time.Since(startTime).String(),
		Version:   version.GetVersion(),
		Go:        runtime.Version(),
		BuildInfo: version.GetBuildInfo(),
	})
}

// Ping простий ping endpoint
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"pong"}`))
}
