package notify

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("Expected Enabled to be true by default")
	}
	if !cfg.ShowTransferComplete {
		t.Error("Expected ShowTransferComplete to be true by default")
	}
	if !cfg.ShowTransferFailed {
		t.Error("Expected ShowTransferFailed to be true by default")
	}
	if cfg.ShowAutoLock {
		t.Error("Expected ShowAutoLock to be false by default")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestShortenPath(t *testing.T) {
	tests := []struct {
		input string
		short bool // expect it to be shortened
	}{
		{"/short/path", false},
		{"/a/very/long/path/that/exceeds/the/maximum/length/for/notification/display/file.txt", true},
		{"C:\\Users\\TestUser\\Downloads\\file.txt", false},
	}

	for _, tt := range tests {
		result := shortenPath(tt.input)
		if tt.short && len(result) >= len(tt.input) {
			t.Errorf("shortenPath(%q) was not shortened: %q", tt.input, result)
		}
	}
}

func TestNewNotifier(t *testing.T) {
	n := NewNotifier(nil, nil)
	if n == nil {
		t.Fatal("NewNotifier returned nil")
	}
	if !n.IsEnabled() {
		t.Error("Expected notifier to be enabled by default")
	}

	cfg := &Config{Enabled: false}
	n2 := NewNotifier(cfg, nil)
	if n2.IsEnabled() {
		t.Error("Expected notifier to be disabled when config.Enabled=false")
	}
}

func TestSetEnabled(t *testing.T) {
	n := NewNotifier(nil, nil)

	if !n.IsEnabled() {
		t.Error("Expected initially enabled")
	}

	n.SetEnabled(false)
	if n.IsEnabled() {
		t.Error("Expected disabled after SetEnabled(false)")
	}

	n.SetEnabled(true)
	if !n.IsEnabled() {
		t.Error("Expected enabled after SetEnabled(true)")
	}
}

func TestNotifierDisabledNoSend(t *testing.T) {
	// When disabled, notification methods should not panic or error.
	cfg := &Config{Enabled: false}
	n := NewNotifier(cfg, nil)

	n.TransferComplete("report.pdf", "/path/to/output")
	n.TransferFailed("report.pdf", "test error")
	n.RepoAutoLocked("My Box")

	// If we get here without panicking, the test passes.
}
