//go:build !linux && !darwin

package notify

import "log"

// NewPlatformNotifier returns a no-op notifier on hosts without a known
// notification mechanism. Unsupported capability is not an error.
func NewPlatformNotifier(_ bool, _ *log.Logger) DesktopNotifier {
	return NoopNotifier{}
}
