package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	logbook "aura-panel/internal/logbook/domain"
	"aura-panel/internal/observability/metrics"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Handler serves the system log endpoints.
type Handler struct {
	repo logbook.Repository
}

// NewHandler constructs a handler.
func NewHandler(repo logbook.Repository) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("logbook handler: nil repository")
	}
	return &Handler{repo: repo}, nil
}

// ServeHTTP handles /logs and /logs/export.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/logs":
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/logs/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type createRequest struct {
	Level    string          `json:"level"`
	Source   string          `json:"source"`
	Category string          `json:"category"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	record := logbook.Record{
		Level:    req.Level,
		Source:   req.Source,
		Category: req.Category,
		Message:  req.Message,
		Data:     req.Data,
	}
	err := h.repo.Append(r.Context(), &record)
	metrics.IncLogAppend(err)
	if err != nil {
		if errors.Is(err, logbook.ErrEmptyMessage) {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "log append failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"), defaultListLimit, maxListLimit)
	records, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		http.Error(w, "log query failed", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []logbook.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func clampLimit(value string, fallback, max int) int {
	limit := fallback
	if value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}
	return limit
}
