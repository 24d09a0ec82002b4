package handlers

import (
	"net/http"
	"time"
)

const version = "0.1.0"

// HealthResponse represents the health check response. With every store in
// process memory there is nothing external to probe; the counts double as
// a liveness sanity check.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Rooms     int    `json:"rooms"`
	Users     int    `json:"users"`
	Messages  int    `json:"messages"`
	Timestamp string `json:"timestamp"`
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Rooms:     h.state.Rooms.Count(),
		Users:     h.state.Presence.Count(),
		Messages:  h.state.Messages.StoredCount(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
