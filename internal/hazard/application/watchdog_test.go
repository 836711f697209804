package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	hazard "aura-panel/internal/hazard/domain"
	"aura-panel/internal/hazard/notify"
	logbookmemory "aura-panel/internal/logbook/infrastructure/memory"
	telemetry "aura-panel/internal/telemetry/domain"
)

type stubSource struct {
	mu        sync.Mutex
	snapshots []telemetry.Snapshot
	errs      []error
	index     int
	buzzerOff int
}

func (s *stubSource) Status(_ context.Context) (telemetry.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index
	s.index++
	if i < len(s.errs) && s.errs[i] != nil {
		return telemetry.Snapshot{}, s.errs[i]
	}
	if i >= len(s.snapshots) {
		return telemetry.Snapshot{}, nil
	}
	return s.snapshots[i], nil
}

func (s *stubSource) BuzzerOff(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buzzerOff++
	return nil
}

func (s *stubSource) buzzerOffCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buzzerOff
}

type recordingDispatcher struct {
	mu      sync.Mutex
	hazards []hazard.Hazard
}

func (d *recordingDispatcher) Dispatch(_ context.Context, h hazard.Hazard) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hazards = append(d.hazards, h)
}

func (d *recordingDispatcher) dispatched() []hazard.Hazard {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]hazard.Hazard, len(d.hazards))
	copy(out, d.hazards)
	return out
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) published() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

func testSiren() *notify.Siren {
	return notify.NewSiren(
		notify.WithOutput(io.Discard),
		notify.WithPattern(notify.Pattern{On: time.Millisecond, Off: time.Millisecond}),
	)
}

func newTestWatchdog(t *testing.T, source TelemetrySource, dispatcher HazardDispatcher, opts ...Option) *Watchdog {
	t.Helper()
	w, err := NewWatchdog(source, dispatcher, testSiren(), 1500, opts...)
	if err != nil {
		t.Fatalf("new watchdog: %v", err)
	}
	return w
}

func gasPtr(v float64) *float64 { return &v }

func TestWatchdogDispatchesOncePerRisingEdge(t *testing.T) {
	source := &stubSource{snapshots: []telemetry.Snapshot{
		{Flame: true},
		{Flame: true},
		{},
		{Flame: true},
	}}
	dispatcher := &recordingDispatcher{}
	w := newTestWatchdog(t, source, dispatcher)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		w.Poll(ctx)
	}
	w.wg.Wait()

	hazards := dispatcher.dispatched()
	if len(hazards) != 2 {
		t.Fatalf("dispatched %d hazards, want 2 (one per rising edge)", len(hazards))
	}
	for _, h := range hazards {
		if h.Type != hazard.VerdictFire {
			t.Fatalf("dispatched type = %s, want fire", h.Type)
		}
	}
}


func TestWatchdogGasEdgeArmsWithReading(t *testing.T) {
	source := &stubSource{snapshots: []telemetry.Snapshot{
		{Gas: gasPtr(1000)},
		{Gas: gasPtr(1600), RoverState: "manual"},
	}}
	dispatcher := &recordingDispatcher{}
	sink := &recordingSink{}
	w := newTestWatchdog(t, source, dispatcher, WithEventSink(sink))

	ctx := context.Background()
	w.Poll(ctx)
	if len(dispatcher.dispatched()) != 0 {
		t.Fatal("below-threshold reading must not dispatch")
	}
	w.Poll(ctx)
	w.wg.Wait()

	hazards := dispatcher.dispatched()
	if len(hazards) != 1 {
		t.Fatalf("dispatched %d hazards, want 1", len(hazards))
	}
	h := hazards[0]
	if h.Type != hazard.VerdictGas {
		t.Fatalf("type = %s, want gas", h.Type)
	}
	if h.GasLevel == nil || *h.GasLevel != 1600 {
		t.Fatalf("gas level = %v, want 1600", h.GasLevel)
	}
	if !strings.Contains(h.Message, "1600") || !strings.Contains(h.Message, "1500") {
		t.Fatalf("message %q must carry reading and threshold", h.Message)
	}

	view := w.Session()
	if view.State != hazard.StateArmed {
		t.Fatalf("session state = %s, want armed", view.State)
	}
	events := sink.published()
	if len(events) != 1 || events[0].Type != "armed" || events[0].Channel != "gas" {
		t.Fatalf("published events = %+v", events)
	}
}

func TestWatchdogFireSuppressesGasSameTick(t *testing.T) {
	source := &stubSource{snapshots: []telemetry.Snapshot{
		{Flame: true, Gas: gasPtr(2000)},
	}}
	dispatcher := &recordingDispatcher{}
	w := newTestWatchdog(t, source, dispatcher)

	w.Poll(context.Background())
	w.wg.Wait()

	hazards := dispatcher.dispatched()
	if len(hazards) != 1 {
		t.Fatalf("dispatched %d hazards, want 1", len(hazards))
	}
	if hazards[0].Type != hazard.VerdictFire {
		t.Fatalf("type = %s, want fire", hazards[0].Type)
	}
}

func TestWatchdogFetchFailureLeavesEdgeState(t *testing.T) {
	source := &stubSource{
		snapshots: []telemetry.Snapshot{
			{Flame: true},
			{},
			{Flame: true},
		},
		errs: []error{nil, errors.New("connection refused"), nil},
	}
	dispatcher := &recordingDispatcher{}
	w := newTestWatchdog(t, source, dispatcher)

	ctx := context.Background()
	w.Poll(ctx) // rising edge
	w.Poll(ctx) // fetch fails, edge state untouched
	w.Poll(ctx) // still active from the detector's point of view
	w.wg.Wait()

	if got := len(dispatcher.dispatched()); got != 1 {
		t.Fatalf("dispatched %d hazards, want 1: a failed fetch is not a clear", got)
	}
}

func TestWatchdogArmedSessionIsNotOverwritten(t *testing.T) {
	source := &stubSource{snapshots: []telemetry.Snapshot{
		{Flame: true},
		{Gas: gasPtr(1800)},
	}}
	dispatcher := &recordingDispatcher{}
	w := newTestWatchdog(t, source, dispatcher)

	ctx := context.Background()
	w.Poll(ctx)
	w.Poll(ctx)
	w.wg.Wait()

	// The gas edge still dispatches its own notification fan-out.
	if got := len(dispatcher.dispatched()); got != 2 {
		t.Fatalf("dispatched %d hazards, want 2", got)
	}
	view := w.Session()
	if view.Hazard == nil || view.Hazard.Type != hazard.VerdictFire {
		t.Fatalf("session hazard = %+v, want the first (fire)", view.Hazard)
	}
}

func TestWatchdogAcknowledge(t *testing.T) {
	source := &stubSource{snapshots: []telemetry.Snapshot{{Flame: true}}}
	dispatcher := &recordingDispatcher{}
	sink := &recordingSink{}
	logs := logbookmemory.NewRepository()
	w := newTestWatchdog(t, source, dispatcher, WithEventSink(sink), WithLogbook(logs))

	ctx := context.Background()
	w.Poll(ctx)
	w.wg.Wait()
	if !w.session.Armed() {
		t.Fatal("expected armed session")
	}

	view := w.Acknowledge(ctx)
	w.wg.Wait()

	if view.State != hazard.StateIdle {
		t.Fatalf("state after ack = %s, want idle", view.State)
	}
	if source.buzzerOffCalls() != 1 {
		t.Fatalf("buzzer off calls = %d, want 1", source.buzzerOffCalls())
	}

	records, err := logs.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	found := false
	for _, record := range records {
		if strings.Contains(record.Message, "acknowledged") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no acknowledgement record in %+v", records)
	}

	events := sink.published()
	if len(events) != 2 || events[1].Type != "acknowledged" {
		t.Fatalf("published events = %+v", events)
	}
}

func TestWatchdogAcknowledgeIdleIsNoop(t *testing.T) {
	source := &stubSource{}
	w := newTestWatchdog(t, source, &recordingDispatcher{})

	view := w.Acknowledge(context.Background())
	w.wg.Wait()

	if view.State != hazard.StateIdle {
		t.Fatalf("state = %s, want idle", view.State)
	}
	if source.buzzerOffCalls() != 0 {
		t.Fatal("idle acknowledge must not call the rover")
	}
}

func TestWatchdogObstacleEdgeLogsWithoutArming(t *testing.T) {
	source := &stubSource{snapshots: []telemetry.Snapshot{{Edge: true}}}
	dispatcher := &recordingDispatcher{}
	sink := &recordingSink{}
	logs := logbookmemory.NewRepository()
	w := newTestWatchdog(t, source, dispatcher, WithEventSink(sink), WithLogbook(logs))

	ctx := context.Background()
	w.Poll(ctx)
	w.wg.Wait()

	if len(dispatcher.dispatched()) != 0 {
		t.Fatal("obstacle edges must not run the notification fan-out")
	}
	if w.session.Armed() {
		t.Fatal("obstacle edges must not arm the session")
	}
	records, err := logs.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].Category != string(hazard.ChannelEdge) {
		t.Fatalf("records = %+v", records)
	}
	events := sink.published()
	if len(events) != 1 || events[0].Type != "edge" {
		t.Fatalf("published events = %+v", events)
	}
}

func TestWatchdogStopSilencesSiren(t *testing.T) {
	source := &stubSource{snapshots: []telemetry.Snapshot{{Flame: true}}}
	siren := testSiren()
	w, err := NewWatchdog(source, &recordingDispatcher{}, siren, 1500)
	if err != nil {
		t.Fatalf("new watchdog: %v", err)
	}

	siren.Start()
	if err := w.Start(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Stop()

	if siren.Active() {
		t.Fatal("siren must be silent after stop")
	}
}

func TestWatchdogClockStampsHazard(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	source := &stubSource{snapshots: []telemetry.Snapshot{{Flame: true}}}
	dispatcher := &recordingDispatcher{}
	w := newTestWatchdog(t, source, dispatcher, WithClock(fakeClock{now: now}))

	w.Poll(context.Background())
	w.wg.Wait()

	hazards := dispatcher.dispatched()
	if len(hazards) != 1 {
		t.Fatalf("dispatched %d hazards, want 1", len(hazards))
	}
	if !hazards[0].DetectedAt.Equal(now) {
		t.Fatalf("detected at = %s, want %s", hazards[0].DetectedAt, now)
	}
}
