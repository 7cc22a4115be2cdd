// Package nativeboard implements clipboard access via golang.design/x/clipboard.
// It is the preferred backend when a display environment is available; callers
// fall back to sysboard when Init fails (headless session, missing X11).
//
// The native API only distinguishes text and PNG image data, which covers the
// common case; sysboard handles the remaining image encodings.
package nativeboard

import (
	"context"
	"fmt"

	xclip "golang.design/x/clipboard"

	"github.com/ykotov/clipvault/internal/clipboard"
)

// NativeBoard is a clipboard.Device backed by golang.design/x/clipboard.
type NativeBoard struct{}

// New initializes the native clipboard. Returns clipboard.ErrUnavailable
// (wrapped) when no display environment is reachable.
func New() (*NativeBoard, error) {
	if err := xclip.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", clipboard.ErrUnavailable, err)
	}
	return &NativeBoard{}, nil
}

// ReadText implements clipboard.Device. Native reads are in-process and do
// not block on external helpers, so the context is only checked up front.
func (n *NativeBoard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := xclip.Read(xclip.FmtText)
	if len(data) == 0 {
		return "", clipboard.ErrNoContent
	}
	return string(data), nil
}

// ReadImage implements clipboard.Device. The native backend yields PNG data.
func (n *NativeBoard) ReadImage(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := xclip.Read(xclip.FmtImage)
	if len(data) == 0 {
		return nil, clipboard.ErrNoContent
	}
	return data, nil
}

// WriteText implements clipboard.Device.
func (n *NativeBoard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	xclip.Write(xclip.FmtText, []byte(text))
	return nil
}

// WriteImage implements clipboard.Device.
func (n *NativeBoard) WriteImage(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	xclip.Write(xclip.FmtImage, data)
	return nil
}
