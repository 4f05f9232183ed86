package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fortuna/gridiron/internal/ingest/sportsdata"
	"github.com/fortuna/gridiron/internal/roster"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// RosterProvider serves season stats and the roster.
type RosterProvider interface {
	Season() string
	SeasonStats(ctx context.Context) ([]sportsdata.StatRow, error)
	Roster(ctx context.Context) ([]roster.Player, error)
}

// StatusFunc contributes extra fields to the health payload.
type StatusFunc func() map[string]interface{}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	rosters RosterProvider
	status  StatusFunc
	log     logrus.FieldLogger
}

// NewHandler creates a new handler. status may be nil.
func NewHandler(rosters RosterProvider, status StatusFunc, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		rosters: rosters,
		status:  status,
		log:     log.WithField("component", "rest"),
	}
}

// Root answers liveness checks with plain text.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Backend is running"))
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status":  "healthy",
		"service": "gridiron",
		"version": Version,
		"season":  h.rosters.Season(),
	}
	if h.status != nil {
		for k, v := range h.status() {
			payload[k] = v
		}
	}

	respondJSON(w, http.StatusOK, payload)
}

// GetSeasonStats returns the raw season stat rows
func (h *Handler) GetSeasonStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.rosters.SeasonStats(r.Context())
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "Failed to fetch season stats", err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetPlayers returns the deduplicated, enriched roster
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.rosters.Roster(r.Context())
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "Failed to fetch players", err)
		return
	}

	respondJSON(w, http.StatusOK, players)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError logs err and writes a generic error payload. Upstream detail
// never reaches the client.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	entry := h.log.WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"request_id": RequestID(r.Context()),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)

	respondJSON(w, status, map[string]string{"error": message})
}
