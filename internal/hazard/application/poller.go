package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"aura-panel/internal/observability/metrics"
)

// Poller invokes a callback on a fixed interval. At most one invocation is
// in flight at a time: a tick that lands while the previous callback is
// still running is skipped, never queued, so a slow telemetry response
// cannot pile up re-evaluations.
type Poller struct {
	interval time.Duration
	tick     func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	busy   bool
	ticks  sync.WaitGroup
}

// NewPoller constructs a poller.
func NewPoller(interval time.Duration, tick func(ctx context.Context)) (*Poller, error) {
	if interval <= 0 {
		return nil, errors.New("poller: interval must be positive")
	}
	if tick == nil {
		return nil, errors.New("poller: nil tick callback")
	}
	return &Poller{interval: interval, tick: tick}, nil
}

// Start begins the polling loop. Starting an already running poller is a
// no-op.
func (p *Poller) Start(ctx context.Context) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels the loop and waits for it and any in-flight tick to finish.
// After Stop returns no further callback fires.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.ticks.Wait()
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fire(ctx)
		}
	}
}

func (p *Poller) fire(ctx context.Context) {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		metrics.IncPollSkipped()
		return
	}
	p.busy = true
	p.mu.Unlock()

	p.ticks.Add(1)
	go func() {
		defer p.ticks.Done()
		defer func() {
			p.mu.Lock()
			p.busy = false
			p.mu.Unlock()
		}()
		p.tick(ctx)
	}()
}
