package hazard

import (
	"errors"
	"time"

	telemetry "aura-panel/internal/telemetry/domain"
)

// Verdict is the outcome of evaluating one telemetry snapshot.
type Verdict string

const (
	VerdictNone Verdict = "none"
	VerdictFire Verdict = "fire"
	VerdictGas  Verdict = "gas"
)

// Channel identifies an independently tracked alarm source.
type Channel string

const (
	ChannelFire Channel = "fire"
	ChannelGas  Channel = "gas"
	ChannelEdge Channel = "edge"
)

// Valid returns true when the channel is a known alarm source.
func (c Channel) Valid() bool {
	switch c {
	case ChannelFire, ChannelGas, ChannelEdge:
		return true
	default:
		return false
	}
}

// Hazard describes one detected hazard episode. Snapshot carries the raw
// telemetry the hazard was derived from, for durable logging.
type Hazard struct {
	Type       Verdict            `json:"type"`
	Message    string             `json:"message"`
	RoverState string             `json:"rover_state"`
	GasLevel   *float64           `json:"gas_level,omitempty"`
	DetectedAt time.Time          `json:"detected_at"`
	Snapshot   telemetry.Snapshot `json:"snapshot"`
}

var (
	// ErrNotArmed is returned when acknowledging an idle session.
	ErrNotArmed = errors.New("hazard: session not armed")
)
