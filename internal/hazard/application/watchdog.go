package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	hazard "aura-panel/internal/hazard/domain"
	"aura-panel/internal/hazard/notify"
	logbook "aura-panel/internal/logbook/domain"
	"aura-panel/internal/observability/metrics"
	telemetry "aura-panel/internal/telemetry/domain"
)

// TelemetrySource is the rover as the watchdog sees it: an unreliable,
// polled endpoint plus a best-effort remote silence command.
type TelemetrySource interface {
	Status(ctx context.Context) (telemetry.Snapshot, error)
	BuzzerOff(ctx context.Context) error
}

// HazardDispatcher fires the notification fan-out for one rising edge.
type HazardDispatcher interface {
	Dispatch(ctx context.Context, h hazard.Hazard)
}

// Event is a hazard lifecycle update published to the dashboard.
type Event struct {
	Type    string             `json:"type"` // armed, acknowledged, edge
	Channel string             `json:"channel"`
	Hazard  *hazard.Hazard     `json:"hazard,omitempty"`
	Session hazard.SessionView `json:"session"`
	At      time.Time          `json:"at"`
}

// EventSink receives lifecycle events. Implementations must not block.
type EventSink interface {
	Publish(event Event)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Watchdog drives the hazard detection loop: poll telemetry, evaluate,
// detect rising edges, dispatch notifications and arm the alert session.
// It owns the edge state and the session for its lifetime.
type Watchdog struct {
	source       TelemetrySource
	dispatcher   HazardDispatcher
	siren        *notify.Siren
	session      *hazard.AlertSession
	edges        *hazard.EdgeDetector
	gasThreshold float64

	logs   logbook.Repository
	sink   EventSink
	clock  Clock
	logger *log.Logger

	poller          *Poller
	dispatchTimeout time.Duration
	wg              sync.WaitGroup
}

// Option configures the watchdog.
type Option func(*Watchdog)

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(w *Watchdog) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithEventSink wires a lifecycle event sink.
func WithEventSink(sink EventSink) Option {
	return func(w *Watchdog) {
		w.sink = sink
	}
}

// WithLogbook wires durable logging for acknowledgements and edge events.
func WithLogbook(repo logbook.Repository) Option {
	return func(w *Watchdog) {
		w.logs = repo
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watchdog) {
		w.logger = logger
	}
}

// WithDispatchTimeout bounds the notification fan-out for one edge.
func WithDispatchTimeout(timeout time.Duration) Option {
	return func(w *Watchdog) {
		if timeout > 0 {
			w.dispatchTimeout = timeout
		}
	}
}

// NewWatchdog constructs a watchdog.
func NewWatchdog(source TelemetrySource, dispatcher HazardDispatcher, siren *notify.Siren, gasThreshold float64, opts ...Option) (*Watchdog, error) {
	if source == nil {
		return nil, errors.New("watchdog: nil telemetry source")
	}
	if dispatcher == nil {
		return nil, errors.New("watchdog: nil dispatcher")
	}
	w := &Watchdog{
		source:          source,
		dispatcher:      dispatcher,
		siren:           siren,
		session:         hazard.NewAlertSession(),
		edges:           hazard.NewEdgeDetector(),
		gasThreshold:    gasThreshold,
		clock:           systemClock{},
		dispatchTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins polling at the given interval.
func (w *Watchdog) Start(ctx context.Context, interval time.Duration) error {
	if w == nil {
		return errors.New("watchdog: nil watchdog")
	}
	poller, err := NewPoller(interval, w.Poll)
	if err != nil {
		return err
	}
	w.poller = poller
	poller.Start(ctx)
	return nil
}

// Stop tears the watchdog down: the poller stops, outstanding dispatches
// drain and the siren is released. No side effect fires after Stop returns.
func (w *Watchdog) Stop() {
	if w == nil {
		return
	}
	if w.poller != nil {
		w.poller.Stop()
	}
	w.wg.Wait()
	w.siren.Stop()
}

// Session exposes the alert session for the HTTP layer.
func (w *Watchdog) Session() hazard.SessionView {
	if w == nil {
		return hazard.SessionView{State: hazard.StateIdle}
	}
	return w.session.View()
}

// Poll performs one tick: fetch telemetry, evaluate and act on edges.
// A failed fetch skips the tick entirely, leaving edge state untouched;
// the next tick is the retry.
func (w *Watchdog) Poll(ctx context.Context) {
	if w == nil {
		return
	}
	start := time.Now()
	snapshot, err := w.source.Status(ctx)
	metrics.ObservePoll(time.Since(start).Seconds(), err)
	if err != nil {
		if w.logger != nil {
			w.logger.Printf("watchdog: telemetry fetch failed: %v", err)
		}
		return
	}
	w.evaluate(ctx, snapshot)
}

func (w *Watchdog) evaluate(ctx context.Context, snapshot telemetry.Snapshot) {
	verdict := hazard.Evaluate(snapshot, w.gasThreshold)

	// Edge bookkeeping runs on every tick for every channel, armed session
	// or not, so a hazard that clears and reoccurs is seen as a new edge.
	fireEdge := w.edges.IsRisingEdge(hazard.ChannelFire, verdict == hazard.VerdictFire)
	gasEdge := w.edges.IsRisingEdge(hazard.ChannelGas, verdict == hazard.VerdictGas)
	obstacleEdge := w.edges.IsRisingEdge(hazard.ChannelEdge, snapshot.Edge)

	if fireEdge {
		w.raise(ctx, buildHazard(hazard.VerdictFire, snapshot, w.gasThreshold, w.clock.Now()))
	}
	if gasEdge {
		w.raise(ctx, buildHazard(hazard.VerdictGas, snapshot, w.gasThreshold, w.clock.Now()))
	}
	if obstacleEdge {
		w.recordObstacle(ctx, snapshot)
	}
}

// raise handles one rising edge: dispatch the notification fan-out (fire
// and forget) and arm the session when idle. An armed session is never
// overwritten, but dispatch still runs once per edge.
func (w *Watchdog) raise(ctx context.Context, h hazard.Hazard) {
	metrics.IncHazardEvent(string(h.Type), "detected")

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.dispatchTimeout)
		defer cancel()
		w.dispatcher.Dispatch(dispatchCtx, h)
	}()

	if w.session.Arm(h) {
		metrics.IncHazardEvent(string(h.Type), "armed")
		w.publish(Event{Type: "armed", Channel: string(h.Type), Hazard: &h, Session: w.session.View(), At: w.clock.Now().UTC()})
	}
}

// Acknowledge silences the local alarm, clears the session and issues a
// best-effort remote buzzer-off. The remote call never blocks the state
// transition. Acknowledging an idle session is a harmless no-op.
func (w *Watchdog) Acknowledge(ctx context.Context) hazard.SessionView {
	if w == nil {
		return hazard.SessionView{State: hazard.StateIdle}
	}
	w.siren.Stop()

	acked, err := w.session.Acknowledge()
	if errors.Is(err, hazard.ErrNotArmed) {
		return w.session.View()
	}

	metrics.IncHazardEvent(string(acked.Type), "acknowledged")
	w.appendLog(ctx, logbook.LevelInfo, string(acked.Type), fmt.Sprintf("Hazard acknowledged: %s", acked.Message), acked.Snapshot)
	w.publish(Event{Type: "acknowledged", Channel: string(acked.Type), Hazard: &acked, Session: w.session.View(), At: w.clock.Now().UTC()})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		silenceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := w.source.BuzzerOff(silenceCtx); err != nil && w.logger != nil {
			w.logger.Printf("watchdog: remote buzzer off failed: %v", err)
		}
	}()

	return w.session.View()
}

// recordObstacle logs an edge/obstacle rising edge. The obstacle channel
// feeds analytics only: no session, no siren.
func (w *Watchdog) recordObstacle(ctx context.Context, snapshot telemetry.Snapshot) {
	metrics.IncHazardEvent(string(hazard.ChannelEdge), "detected")
	w.appendLog(ctx, logbook.LevelInfo, string(hazard.ChannelEdge), "Edge/obstacle detected", snapshot)
	w.publish(Event{Type: "edge", Channel: string(hazard.ChannelEdge), Session: w.session.View(), At: w.clock.Now().UTC()})
}

func (w *Watchdog) appendLog(ctx context.Context, level, category, message string, snapshot telemetry.Snapshot) {
	if w.logs == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		raw = nil
	}
	record := logbook.Record{Level: level, Source: "watchdog", Category: category, Message: message, Data: raw}
	if err := w.logs.Append(ctx, &record); err != nil && w.logger != nil {
		// Logging must never break the main flow.
		w.logger.Printf("watchdog: log append failed: %v", err)
	}
}

func (w *Watchdog) publish(event Event) {
	if w.sink == nil {
		return
	}
	w.sink.Publish(event)
}

func buildHazard(verdict hazard.Verdict, snapshot telemetry.Snapshot, gasThreshold float64, now time.Time) hazard.Hazard {
	h := hazard.Hazard{
		Type:       verdict,
		RoverState: snapshot.RoverState,
		DetectedAt: now.UTC(),
		Snapshot:   snapshot,
	}
	switch verdict {
	case hazard.VerdictFire:
		h.Message = "Flame detected by onboard sensor"
	case hazard.VerdictGas:
		if gas, ok := snapshot.GasReading(); ok {
			level := gas
			h.GasLevel = &level
			h.Message = fmt.Sprintf("Gas level %.0f exceeds threshold %.0f", gas, gasThreshold)
		} else {
			h.Message = "Gas hazard detected"
		}
	}
	return h
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
