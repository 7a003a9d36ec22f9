// Package config implements the configuration surface (§6): TOML-backed
// options with defaults, plus the log/config directory convention.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// LogDirectory returns the log directory for embedders that want the
// library's own diagnostic logs written to disk rather than a supplied
// io.Writer.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\SafeBox\logs
//   - Unix: ~/.config/safebox/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "safebox-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "SafeBox", "logs")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "safebox-logs")
		}
		return filepath.Join(homeDir, ".config", "safebox", "logs")
	}
	return filepath.Join(configDir, "safebox", "logs")
}

// EnsureLogDirectory creates the log directory if it doesn't exist,
// restricted to the owner.
func EnsureLogDirectory() error {
	return os.MkdirAll(LogDirectory(), 0700)
}
