// Package watcher polls the OS clipboard, classifies new content, and feeds
// accepted changes into the history store. It is the sole producer into the
// store during normal operation.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ykotov/clipvault/internal/blob"
	"github.com/ykotov/clipvault/internal/clipboard"
	"github.com/ykotov/clipvault/internal/history"
)

const (
	// DefaultInterval is the nominal poll interval.
	DefaultInterval = 300 * time.Millisecond

	// DefaultBackoff is the sleep after an unexpected error before polling
	// resumes at the normal interval.
	DefaultBackoff = time.Second
)

// Archiver mirrors accepted entries into long-term storage. Optional.
type Archiver interface {
	Record(e history.Entry) error
}

// Config carries optional watcher settings.
type Config struct {
	Interval time.Duration
	Backoff  time.Duration
	Archive  Archiver
}

// Watcher runs the clipboard poll loop. Image content is checked before
// text each tick; after an image is accepted the text check is deferred to
// the next tick so the same clipboard change is not processed twice.
type Watcher struct {
	device   clipboard.Device
	history  *history.Store
	archive  Archiver
	interval time.Duration
	backoff  time.Duration

	// Only one last-seen kind is authoritative at a time: accepting an
	// image clears lastText and vice versa.
	lastText      string
	lastImageHash string
}

// New creates a watcher over device feeding hist.
func New(device clipboard.Device, hist *history.Store, cfg Config) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &Watcher{
		device:   device,
		history:  hist,
		archive:  cfg.Archive,
		interval: cfg.Interval,
		backoff:  cfg.Backoff,
	}
}

// Run polls until ctx is canceled. No clipboard failure terminates the
// loop: query errors mean "no new content this tick", and anything
// unexpected is logged and followed by a longer backoff sleep.
func (w *Watcher) Run(ctx context.Context) {
	w.prime(ctx)
	slog.Info("clipboard watcher started", "interval", w.interval)

	delay := w.interval
	for {
		select {
		case <-ctx.Done():
			slog.Info("clipboard watcher stopped")
			return
		case <-time.After(delay):
		}

		delay = w.interval
		if err := w.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.Error("clipboard poll failed, backing off", "error", err)
			delay = w.backoff
		}
	}
}

// Tick performs one poll step. Exported for tests, which drive the loop
// directly instead of sleeping through real intervals.
func (w *Watcher) Tick(ctx context.Context) error {
	newImage, err := w.checkImage(ctx)
	if err != nil {
		return err
	}
	if newImage {
		// Wait one tick before checking text so the same clipboard change
		// is not double-processed.
		return nil
	}
	return w.checkText(ctx)
}

// checkImage reports whether a new image was accepted this tick.
func (w *Watcher) checkImage(ctx context.Context) (bool, error) {
	qctx, cancel := context.WithTimeout(ctx, clipboard.QueryTimeout)
	defer cancel()

	data, err := w.device.ReadImage(qctx)
	if err != nil {
		if errors.Is(err, clipboard.ErrNoContent) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}

	hash := blob.Hash(data)
	if hash == w.lastImageHash {
		return false, nil
	}

	w.lastImageHash = hash
	w.lastText = ""
	if entry, ok := w.history.AppendImage(data); ok {
		slog.Debug("image added to history", "hash", hash, "entries", w.history.Len())
		w.record(entry)
	}
	return true, nil
}

func (w *Watcher) checkText(ctx context.Context) error {
	qctx, cancel := context.WithTimeout(ctx, clipboard.QueryTimeout)
	defer cancel()

	text, err := w.device.ReadText(qctx)
	if err != nil {
		if errors.Is(err, clipboard.ErrNoContent) {
			return nil
		}
		return err
	}
	if text == w.lastText || strings.TrimSpace(text) == "" {
		return nil
	}

	w.lastText = text
	w.lastImageHash = ""
	if entry, ok := w.history.AppendText(text); ok {
		slog.Debug("text added to history", "preview", entry.Preview, "entries", w.history.Len())
		w.record(entry)
	}
	return nil
}

// prime remembers whatever is on the clipboard at startup so pre-existing
// content is not re-recorded on the first tick.
func (w *Watcher) prime(ctx context.Context) {
	qctx, cancel := context.WithTimeout(ctx, clipboard.QueryTimeout)
	defer cancel()

	if data, err := w.device.ReadImage(qctx); err == nil && len(data) > 0 {
		w.lastImageHash = blob.Hash(data)
		return
	}
	if text, err := w.device.ReadText(qctx); err == nil {
		w.lastText = text
	}
}

func (w *Watcher) record(entry history.Entry) {
	if w.archive == nil {
		return
	}
	if err := w.archive.Record(entry); err != nil {
		slog.Warn("failed to archive entry", "kind", entry.Kind, "error", err)
	}
}
