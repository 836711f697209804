package notify

import (
	"io"
	"os"
	"sync"
	"time"
)

// Pattern is the siren pulse envelope: tone for On, silence for Off.
type Pattern struct {
	On  time.Duration
	Off time.Duration
}

// Siren drives the local audible alarm. It owns a single tone resource:
// starting a new alarm while one is sounding stops the previous one first,
// so at most one alarm sounds at a time.
type Siren struct {
	mu      sync.Mutex
	out     io.Writer
	pattern Pattern
	active  *Handle
}

// SirenOption configures the siren.
type SirenOption func(*Siren)

// WithOutput overrides where pulses are written. Defaults to stdout, where
// the BEL byte rings the hosting terminal.
func WithOutput(out io.Writer) SirenOption {
	return func(s *Siren) {
		if out != nil {
			s.out = out
		}
	}
}

// WithPattern overrides the pulse envelope.
func WithPattern(pattern Pattern) SirenOption {
	return func(s *Siren) {
		if pattern.On > 0 && pattern.Off > 0 {
			s.pattern = pattern
		}
	}
}

// NewSiren constructs a siren.
func NewSiren(opts ...SirenOption) *Siren {
	s := &Siren{
		out:     os.Stdout,
		pattern: Pattern{On: 300 * time.Millisecond, Off: 200 * time.Millisecond},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle represents an acquired alarm resource. Release is guaranteed safe
// on every exit path: it is idempotent and returns only after the tone
// goroutine has stopped, so no pulse can follow it.
type Handle struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// Release silences the alarm.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Start begins a continuous pulse until the handle is released. Any
// previously sounding alarm is stopped first.
func (s *Siren) Start() *Handle {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	previous := s.active
	handle := &Handle{stop: make(chan struct{}), done: make(chan struct{})}
	s.active = handle
	s.mu.Unlock()

	previous.Release()
	go s.run(handle)
	return handle
}

// Stop silences the currently sounding alarm, if any.
func (s *Siren) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	active := s.active
	s.active = nil
	s.mu.Unlock()
	active.Release()
}

// Active reports whether an alarm is currently sounding.
func (s *Siren) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

func (s *Siren) run(h *Handle) {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		default:
		}
		_, _ = s.out.Write([]byte("\a"))
		select {
		case <-h.stop:
			return
		case <-time.After(s.pattern.On):
		}
		select {
		case <-h.stop:
			return
		case <-time.After(s.pattern.Off):
		}
	}
}
