package hazard

import (
	telemetry "aura-panel/internal/telemetry/domain"
)

// Evaluate maps one snapshot and the configured gas threshold to a verdict.
// Fire takes priority over gas when both conditions hold in the same snapshot.
// A missing gas reading is "unknown", never a hazard. The comparison is a
// strict greater-than: a reading exactly at the threshold does not trigger.
func Evaluate(snapshot telemetry.Snapshot, gasThreshold float64) Verdict {
	if snapshot.Flame {
		return VerdictFire
	}
	if gas, ok := snapshot.GasReading(); ok && gas > gasThreshold {
		return VerdictGas
	}
	return VerdictNone
}
