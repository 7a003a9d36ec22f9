// Package notify provides cross-platform desktop notifications for
// transfer completion/failure and repo auto-lock events (component K),
// via github.com/gen2brain/beeep.
package notify

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rescale-labs/safebox/internal/logging"
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger  *logging.Logger
	enabled bool
	mu      sync.RWMutex
}

// Config holds notification configuration. NewNotifier reads only
// Enabled; the Show* fields are carried in the configuration but no
// Notifier method consults them, so they do not filter notifications.
type Config struct {
	// Enabled determines if notifications are sent at all.
	Enabled bool

	// ShowTransferComplete names the finished-upload/download notification
	// kind; not consulted by Notifier.
	ShowTransferComplete bool

	// ShowTransferFailed names the non-retriable transfer failure
	// notification kind; not consulted by Notifier.
	ShowTransferFailed bool

	// ShowAutoLock names the repo auto-lock notification kind; not
	// consulted by Notifier.
	ShowAutoLock bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:              true,
		ShowTransferComplete: true,
		ShowTransferFailed:   true,
		ShowAutoLock:         false,
	}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Notifier{
		logger:  logger,
		enabled: cfg.Enabled,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// TransferComplete sends a notification for a finished upload or download.
func (n *Notifier) TransferComplete(name string, path string) {
	if !n.IsEnabled() {
		return
	}

	title := "Transfer Complete"
	message := fmt.Sprintf("%q finished:\n%s", truncate(name, 40), shortenPath(path))

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Str("name", name).Msg("failed to send transfer complete notification")
	}
}

// TransferFailed sends a notification for a failed, non-retriable upload
// or download.
func (n *Notifier) TransferFailed(name string, errMsg string) {
	if !n.IsEnabled() {
		return
	}

	title := "Transfer Failed"
	message := fmt.Sprintf("%q failed:\n%s", truncate(name, 40), truncate(errMsg, 100))

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Str("name", name).Msg("failed to send transfer failed notification")
	}
}

// RepoAutoLocked sends a notification when a repo is auto-locked after
// a period of inactivity.
func (n *Notifier) RepoAutoLocked(repoName string) {
	if !n.IsEnabled() {
		return
	}

	title := "Safe Box Locked"
	message := fmt.Sprintf("%q was locked after a period of inactivity.", truncate(repoName, 40))

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Str("repo", repoName).Msg("failed to send auto-lock notification")
	}
}

// send is the internal method that actually sends the notification.
func (n *Notifier) send(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: Uses toast notifications
	// - macOS: Uses NSUserNotificationCenter
	// - Linux: Uses D-Bus notifications
	return beeep.Notify(title, message, "")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// shortenPath abbreviates a long path for display in notifications.
func shortenPath(path string) string {
	const maxLen = 60

	if len(path) <= maxLen {
		return path
	}

	// Try to show drive/root + ... + last 2 path components
	_, file := filepath.Split(path)
	parentDir := filepath.Base(filepath.Dir(path))

	// Build shortened path
	short := filepath.Join("...", parentDir, file)

	// Add volume/drive if there's room
	vol := filepath.VolumeName(path)
	if vol != "" && len(vol)+len(short)+1 <= maxLen {
		short = vol + string(filepath.Separator) + short
	}

	// If still too long, just truncate
	if len(short) > maxLen {
		return "..." + path[len(path)-(maxLen-3):]
	}

	return short
}
