//go:build linux

package notify

import (
	"log"
	"os/exec"

	hazard "aura-panel/internal/hazard/domain"
)

// NotifySendNotifier sends Linux desktop notifications via notify-send.
// Delivery runs in a background goroutine so a slow notification daemon
// cannot stall the dispatch path.
type NotifySendNotifier struct {
	enabled bool
	logger  *log.Logger
}

// NewPlatformNotifier creates the platform-appropriate notifier for Linux.
func NewPlatformNotifier(enabled bool, logger *log.Logger) DesktopNotifier {
	return &NotifySendNotifier{enabled: enabled, logger: logger}
}

// Notify sends a desktop notification for the hazard. Errors are logged but
// never surfaced: the visual dashboard alert is the required channel.
func (n *NotifySendNotifier) Notify(h hazard.Hazard) {
	if n == nil || !n.enabled {
		return
	}
	title := "AURA rover: " + string(h.Type) + " hazard"
	urgency := "critical"

	go func() {
		cmd := exec.Command("notify-send",
			"--urgency", urgency,
			"--app-name", "aura-panel",
			"--hint", "string:x-dunst-stack-tag:"+notificationTag(h),
			title, h.Message)
		if err := cmd.Run(); err != nil && n.logger != nil {
			n.logger.Printf("desktop notification error: %v", err)
		}
	}()
}
