package hazard

// EdgeDetector tracks, per channel, whether the hazard was active on the
// previous evaluation and derives rising-edge transitions from it. State is
// process-lifetime only; every channel starts inactive.
//
// The detector is single-writer (the polling loop) and therefore unlocked.
type EdgeDetector struct {
	wasActive map[Channel]bool
}

// NewEdgeDetector constructs a detector with all channels inactive.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{wasActive: make(map[Channel]bool)}
}

// IsRisingEdge reports whether the channel transitioned inactive -> active
// and records the new level. The stored level is updated on every call, so
// sustained activity yields exactly one rising edge until the channel clears.
func (d *EdgeDetector) IsRisingEdge(channel Channel, activeNow bool) bool {
	if d == nil {
		return false
	}
	was := d.wasActive[channel]
	d.wasActive[channel] = activeNow
	return activeNow && !was
}

// Reset clears the stored level for a channel.
func (d *EdgeDetector) Reset(channel Channel) {
	if d == nil {
		return
	}
	delete(d.wasActive, channel)
}
