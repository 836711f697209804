package telemetry

import "time"

// Snapshot is one rover sensor reading as returned by GET /status.
// Gas and Distance are nil when the rover did not report them; a missing
// reading means "unknown" and must never be coerced to a zero hazard value.
type Snapshot struct {
	Flame      bool      `json:"flame"`
	Gas        *float64  `json:"gas"`
	DistanceCm *float64  `json:"distance"`
	Edge       bool      `json:"edge"`
	RoverState string    `json:"state"`
	ReceivedAt time.Time `json:"-"`
}

// GasReading returns the gas value and whether it was present.
func (s Snapshot) GasReading() (float64, bool) {
	if s.Gas == nil {
		return 0, false
	}
	return *s.Gas, true
}
