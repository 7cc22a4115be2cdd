// Package input synthesizes the paste keystroke after a commit. Injection is
// best-effort: when it fails the committed payload stays on the clipboard for
// a manual paste.
package input

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Injector issues a paste keystroke to the focused application.
type Injector interface {
	Paste(ctx context.Context) error
}

// SystemInjector injects keystrokes via platform commands: xdotool on Linux,
// osascript on macOS.
type SystemInjector struct{}

// NewSystem creates a SystemInjector.
func NewSystem() *SystemInjector {
	return &SystemInjector{}
}

// IsSupported reports whether an injection command is available.
func (s *SystemInjector) IsSupported() bool {
	switch runtime.GOOS {
	case "linux":
		_, err := exec.LookPath("xdotool")
		return err == nil
	case "darwin":
		_, err := exec.LookPath("osascript")
		return err == nil
	default:
		return false
	}
}

// Paste implements Injector.
func (s *SystemInjector) Paste(ctx context.Context) error {
	switch runtime.GOOS {
	case "linux":
		cmd := exec.CommandContext(ctx, "xdotool", "key", "--clearmodifiers", "ctrl+v")
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("failed to run xdotool: %w", err)
		}
		return nil
	case "darwin":
		script := `tell application "System Events" to keystroke "v" using command down`
		cmd := exec.CommandContext(ctx, "osascript", "-e", script)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("failed to run osascript: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("synthetic paste not supported on %s", runtime.GOOS)
	}
}

// MockInjector records paste attempts for tests.
type MockInjector struct {
	Calls int
	Err   error
	done  chan struct{}
}

// NewMock creates a MockInjector whose Done channel receives one signal per
// paste attempt.
func NewMock() *MockInjector {
	return &MockInjector{done: make(chan struct{}, 8)}
}

// Paste implements Injector.
func (m *MockInjector) Paste(ctx context.Context) error {
	m.Calls++
	select {
	case m.done <- struct{}{}:
	default:
	}
	return m.Err
}

// Done signals each paste attempt, letting tests wait for the delayed
// injection without sleeping.
func (m *MockInjector) Done() <-chan struct{} {
	return m.done
}
