package notify

import (
	hazard "aura-panel/internal/hazard/domain"
)

// DesktopNotifier raises a local system notification for a hazard. Repeated
// hazards on the same channel carry the same tag so notification daemons
// replace the previous one instead of stacking.
type DesktopNotifier interface {
	Notify(h hazard.Hazard)
}

// NoopNotifier drops notifications. Used when the host has no notification
// capability or notifications are disabled.
type NoopNotifier struct{}

// Notify does nothing.
func (NoopNotifier) Notify(hazard.Hazard) {}

func notificationTag(h hazard.Hazard) string {
	return "aura-" + string(h.Type)
}
