//go:build darwin

package notify

import (
	"fmt"
	"log"
	"os/exec"

	hazard "aura-panel/internal/hazard/domain"
)

// OsascriptNotifier sends macOS notifications via osascript. Notification
// Center groups by title, so repeated hazards on a channel replace rather
// than stack.
type OsascriptNotifier struct {
	enabled bool
	logger  *log.Logger
}

// NewPlatformNotifier creates the platform-appropriate notifier for macOS.
func NewPlatformNotifier(enabled bool, logger *log.Logger) DesktopNotifier {
	return &OsascriptNotifier{enabled: enabled, logger: logger}
}

// Notify sends a notification for the hazard. Errors are logged but never
// surfaced.
func (n *OsascriptNotifier) Notify(h hazard.Hazard) {
	if n == nil || !n.enabled {
		return
	}
	title := "AURA rover: " + string(h.Type) + " hazard"
	script := fmt.Sprintf("display notification %q with title %q subtitle %q",
		h.Message, title, notificationTag(h))

	go func() {
		cmd := exec.Command("osascript", "-e", script)
		if err := cmd.Run(); err != nil && n.logger != nil {
			n.logger.Printf("desktop notification error: %v", err)
		}
	}()
}
