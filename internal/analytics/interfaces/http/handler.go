package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"aura-panel/internal/analytics/application"
)

// Handler serves the analytics summary and PDF report endpoints.
type Handler struct {
	service *application.Service
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("analytics handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /analytics/summary and /analytics/report.pdf.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	window, err := application.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		http.Error(w, "window must be day, week, month or year", http.StatusBadRequest)
		return
	}

	switch r.URL.Path {
	case "/analytics/summary":
		summary, err := h.service.Summarize(r.Context(), window)
		if err != nil {
			http.Error(w, "summary failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summary)
	case "/analytics/report.pdf":
		summary, err := h.service.Summarize(r.Context(), window)
		if err != nil {
			http.Error(w, "summary failed", http.StatusInternalServerError)
			return
		}
		payload, err := BuildSummaryPDF(summary)
		if err != nil {
			http.Error(w, "report failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="hazard-report.pdf"`)
		_, _ = w.Write(payload)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
