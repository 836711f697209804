package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	hazard "aura-panel/internal/hazard/domain"
	"aura-panel/internal/hazard/notify"
	logbook "aura-panel/internal/logbook/domain"
	"aura-panel/internal/observability/metrics"
)

// Handler forwards manually raised alerts to the configured messaging
// channel and records them in the logbook. The channel may be nil when
// no messenger credentials are configured; forwarding then reports
// telegram_sent=false without failing the request.
type Handler struct {
	channel  notify.Channel
	template *notify.Template
	logs     logbook.Repository
	logger   *log.Logger
}

// NewHandler constructs an alert forwarding handler.
func NewHandler(channel notify.Channel, template *notify.Template, logs logbook.Repository, logger *log.Logger) (*Handler, error) {
	if template == nil {
		return nil, errors.New("alerting handler: nil template")
	}
	if logs == nil {
		return nil, errors.New("alerting handler: nil logbook repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{channel: channel, template: template, logs: logs, logger: logger}, nil
}

type forwardResponse struct {
	TelegramSent bool `json:"telegram_sent"`
}

// ServeHTTP handles POST /alert/{type}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	alertType := strings.TrimPrefix(r.URL.Path, "/alert/")
	var verdict hazard.Verdict
	switch alertType {
	case string(hazard.VerdictFire):
		verdict = hazard.VerdictFire
	case string(hazard.VerdictGas):
		verdict = hazard.VerdictGas
	default:
		http.Error(w, "unknown alert type", http.StatusNotFound)
		return
	}

	hz := hazard.Hazard{
		Type:       verdict,
		Message:    fmt.Sprintf("Manual %s alert raised from dashboard", verdict),
		RoverState: "manual",
		DetectedAt: time.Now().UTC(),
	}

	sent := false
	if h.channel != nil {
		content, err := h.template.Render(hz)
		if err != nil {
			h.logger.Printf("alert forward: render failed: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := h.channel.Send(ctx, content); err != nil {
				h.logger.Printf("alert forward: telegram send failed: %v", err)
			} else {
				sent = true
			}
		}
	}
	metrics.IncAlertForward(string(verdict), sent)

	record := logbook.Record{
		Level:    logbook.LevelWarning,
		Source:   "dashboard",
		Category: string(verdict),
		Message:  hz.Message,
	}
	err := h.logs.Append(r.Context(), &record)
	metrics.IncLogAppend(err)
	if err != nil {
		h.logger.Printf("alert forward: log append failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(forwardResponse{TelegramSent: sent})
}
