// Package clipboard defines the device interface through which clipvault
// reads and writes the operating system clipboard.
//
// Two real implementations exist:
//
//	nativeboard — golang.design/x/clipboard, used when a display is available
//	sysboard    — external commands (xclip/xsel, pbpaste/pbcopy) as fallback
//
// mockboard provides an in-memory device for tests.
package clipboard

import (
	"context"
	"errors"
	"time"
)

// QueryTimeout bounds a single clipboard query so a stalled OS call can
// never stall a poll loop indefinitely.
const QueryTimeout = time.Second

var (
	// ErrNoContent reports that the clipboard holds nothing usable of the
	// requested kind. Transient; callers retry next tick.
	ErrNoContent = errors.New("no compatible clipboard content")

	// ErrUnavailable reports that no clipboard mechanism could be reached
	// at all (headless session, missing helper binaries).
	ErrUnavailable = errors.New("clipboard unavailable")
)

// ImageTargets is the ordered list of image encodings queried from the OS
// clipboard. PNG is tried first; the first non-empty result wins.
var ImageTargets = []string{
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/gif",
	"image/bmp",
}

// Device is the OS clipboard as seen by the watcher and retrieval service.
// Implementations must honor the context deadline on every call.
type Device interface {
	// ReadText returns the current textual clipboard content.
	// Returns ErrNoContent when no text is present.
	ReadText(ctx context.Context) (string, error)

	// ReadImage returns raw image bytes, trying ImageTargets in order.
	// Returns ErrNoContent when no image encoding yields data.
	ReadImage(ctx context.Context) ([]byte, error)

	// WriteText replaces the clipboard content with text.
	WriteText(ctx context.Context, text string) error

	// WriteImage replaces the clipboard content with raw image bytes.
	WriteImage(ctx context.Context, data []byte) error
}
