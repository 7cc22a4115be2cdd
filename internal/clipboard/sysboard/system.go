// Package sysboard implements clipboard access using platform commands.
// On macOS it uses pbcopy/pbpaste (text only), on Linux xclip with xsel as
// a text fallback; image queries go through xclip's MIME targets. Every
// command runs under the caller's context so a wedged helper cannot block
// the poll loop.
package sysboard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/ykotov/clipvault/internal/clipboard"
)

// SystemBoard is a clipboard.Device backed by external commands.
type SystemBoard struct{}

// New creates a SystemBoard.
func New() *SystemBoard {
	return &SystemBoard{}
}

// IsSupported reports whether the required helper commands are present.
func (s *SystemBoard) IsSupported() bool {
	switch runtime.GOOS {
	case "darwin":
		_, errCopy := exec.LookPath("pbcopy")
		_, errPaste := exec.LookPath("pbpaste")
		return errCopy == nil && errPaste == nil
	case "linux":
		if _, err := exec.LookPath("xclip"); err == nil {
			return true
		}
		_, err := exec.LookPath("xsel")
		return err == nil
	default:
		return false
	}
}

// ReadText implements clipboard.Device.
func (s *SystemBoard) ReadText(ctx context.Context) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		out, err := run(ctx, nil, "pbpaste")
		if err != nil {
			return "", clipboard.ErrNoContent
		}
		return string(out), nil
	case "linux":
		if out, err := run(ctx, nil, "xclip", "-selection", "clipboard", "-o"); err == nil {
			return string(out), nil
		}
		out, err := run(ctx, nil, "xsel", "--clipboard", "--output")
		if err != nil {
			return "", clipboard.ErrNoContent
		}
		return string(out), nil
	default:
		return "", clipboard.ErrUnavailable
	}
}

// ReadImage implements clipboard.Device. Encodings are tried in
// clipboard.ImageTargets order; the first non-empty result wins.
func (s *SystemBoard) ReadImage(ctx context.Context) ([]byte, error) {
	if runtime.GOOS != "linux" {
		// pbpaste has no raw image output; the native backend covers macOS.
		return nil, clipboard.ErrNoContent
	}
	for _, target := range clipboard.ImageTargets {
		out, err := run(ctx, nil, "xclip", "-selection", "clipboard", "-t", target, "-o")
		if err == nil && len(out) > 0 {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, clipboard.ErrNoContent
}

// WriteText implements clipboard.Device.
func (s *SystemBoard) WriteText(ctx context.Context, text string) error {
	data := []byte(text)
	switch runtime.GOOS {
	case "darwin":
		_, err := run(ctx, data, "pbcopy")
		if err != nil {
			return fmt.Errorf("failed to run pbcopy: %w", err)
		}
		return nil
	case "linux":
		if _, err := run(ctx, data, "xclip", "-selection", "clipboard"); err == nil {
			return nil
		}
		if _, err := run(ctx, data, "xsel", "--clipboard", "--input"); err != nil {
			return fmt.Errorf("failed to write clipboard (tried xclip and xsel): %w", err)
		}
		return nil
	default:
		return clipboard.ErrUnavailable
	}
}

// WriteImage implements clipboard.Device. Images are always written back as
// PNG, which is how the blob store keeps them.
func (s *SystemBoard) WriteImage(ctx context.Context, data []byte) error {
	if runtime.GOOS != "linux" {
		return clipboard.ErrUnavailable
	}
	if _, err := run(ctx, data, "xclip", "-selection", "clipboard", "-t", "image/png"); err != nil {
		return fmt.Errorf("failed to write image to clipboard: %w", err)
	}
	return nil
}

// run executes a command with optional stdin and returns its stdout.
func run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
