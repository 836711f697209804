package hazard

import "sync"

// Session state machine: Idle (nothing shown) -> Armed (hazard visible,
// awaiting the operator) -> Idle again, only through Acknowledge.
const (
	StateIdle  = "idle"
	StateArmed = "armed"
)

// AlertSession holds the currently displayed hazard until an operator
// acknowledges it. The session never clears itself when the underlying
// condition goes away: a human must consciously dismiss a safety warning.
//
// The polling loop arms and the acknowledgement handler clears, so access
// is guarded by a mutex.
type AlertSession struct {
	mu     sync.Mutex
	armed  bool
	hazard Hazard
}

// SessionView is a read-only snapshot of the session for the dashboard.
type SessionView struct {
	State  string  `json:"state"`
	Hazard *Hazard `json:"hazard,omitempty"`
}

// NewAlertSession constructs an idle session.
func NewAlertSession() *AlertSession {
	return &AlertSession{}
}

// Arm transitions Idle -> Armed and reports whether the transition happened.
// An already armed session is never overwritten: the first detected hazard
// wins until the operator acknowledges it.
func (s *AlertSession) Arm(h Hazard) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		return false
	}
	s.armed = true
	s.hazard = h
	return true
}

// Acknowledge transitions Armed -> Idle and returns the hazard that was
// displayed. Returns ErrNotArmed when the session is already idle.
func (s *AlertSession) Acknowledge() (Hazard, error) {
	if s == nil {
		return Hazard{}, ErrNotArmed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return Hazard{}, ErrNotArmed
	}
	h := s.hazard
	s.armed = false
	s.hazard = Hazard{}
	return h, nil
}

// Armed reports whether a hazard is currently displayed.
func (s *AlertSession) Armed() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// View returns the current session state for API consumers.
func (s *AlertSession) View() SessionView {
	if s == nil {
		return SessionView{State: StateIdle}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return SessionView{State: StateIdle}
	}
	h := s.hazard
	return SessionView{State: StateArmed, Hazard: &h}
}
