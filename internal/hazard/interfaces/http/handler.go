package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"aura-panel/internal/hazard/application"
)

// Handler serves the watchdog state and acknowledgement endpoints.
type Handler struct {
	watchdog *application.Watchdog
}

// NewHandler constructs a handler.
func NewHandler(watchdog *application.Watchdog) (*Handler, error) {
	if watchdog == nil {
		return nil, errors.New("watchdog handler: nil watchdog")
	}
	return &Handler{watchdog: watchdog}, nil
}

// ServeHTTP handles /api/v1/watchdog/state and /api/v1/watchdog/ack.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/watchdog/state":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		respondJSON(w, h.watchdog.Session())
	case "/api/v1/watchdog/ack":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		respondJSON(w, h.watchdog.Acknowledge(r.Context()))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
