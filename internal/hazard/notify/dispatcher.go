package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	hazard "aura-panel/internal/hazard/domain"
	logbook "aura-panel/internal/logbook/domain"
	"aura-panel/internal/observability/metrics"
)

// Action is one independent side effect fired on a rising edge. Actions are
// best-effort by contract: a failing action must not prevent the others.
type Action struct {
	Name string
	Run  func(ctx context.Context, h hazard.Hazard) error
}

// Dispatcher fans a hazard out to an ordered list of independent actions.
type Dispatcher struct {
	actions []Action
	logger  *log.Logger
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(logger *log.Logger, actions ...Action) *Dispatcher {
	return &Dispatcher{actions: actions, logger: logger}
}

// Dispatch runs every action exactly once for the hazard. Each action is
// wrapped individually so an error or panic in one cannot block or roll
// back the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, h hazard.Hazard) {
	if d == nil {
		return
	}
	for _, action := range d.actions {
		d.run(ctx, action, h)
	}
}

func (d *Dispatcher) run(ctx context.Context, action Action, h hazard.Hazard) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncDispatch(action.Name, fmt.Errorf("panic: %v", r))
			if d.logger != nil {
				d.logger.Printf("notify %s panic: %v", action.Name, r)
			}
		}
	}()
	if action.Run == nil {
		return
	}
	err := action.Run(ctx, h)
	metrics.IncDispatch(action.Name, err)
	if err != nil && d.logger != nil {
		d.logger.Printf("notify %s error: %v", action.Name, err)
	}
}

// SirenAction starts the local audible alarm. The siren keeps sounding
// until the operator acknowledges the session.
func SirenAction(siren *Siren) Action {
	return Action{
		Name: "siren",
		Run: func(_ context.Context, _ hazard.Hazard) error {
			siren.Start()
			return nil
		},
	}
}

// DesktopAction raises a local system notification.
func DesktopAction(notifier DesktopNotifier) Action {
	return Action{
		Name: "desktop",
		Run: func(_ context.Context, h hazard.Hazard) error {
			if notifier == nil {
				return nil
			}
			notifier.Notify(h)
			return nil
		},
	}
}

// LogbookAction persists a durable record of the hazard, raw snapshot
// included. Storage errors are returned for metrics but the caller treats
// them as best-effort.
func LogbookAction(repo logbook.Repository) Action {
	return Action{
		Name: "logbook",
		Run: func(ctx context.Context, h hazard.Hazard) error {
			if repo == nil {
				return nil
			}
			raw, err := json.Marshal(h.Snapshot)
			if err != nil {
				raw = nil
			}
			record := logbook.Record{
				Level:    logbook.LevelWarning,
				Source:   "watchdog",
				Category: string(h.Type),
				Message:  h.Message,
				Data:     raw,
			}
			err = repo.Append(ctx, &record)
			metrics.IncLogAppend(err)
			return err
		},
	}
}

// MessageAction forwards the hazard through an external messaging channel.
func MessageAction(channel Channel, template *Template) Action {
	return Action{
		Name: "message",
		Run: func(ctx context.Context, h hazard.Hazard) error {
			if channel == nil {
				return nil
			}
			content, err := template.Render(h)
			if err != nil {
				return err
			}
			return channel.Send(ctx, content)
		},
	}
}
