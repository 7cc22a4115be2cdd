// Package retrieval exposes filtered, reverse-chronological views of the
// history store for selection, navigation, deletion, and commit back to the
// OS clipboard.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ykotov/clipvault/internal/clipboard"
	"github.com/ykotov/clipvault/internal/history"
	"github.com/ykotov/clipvault/internal/input"
)

// ImageKeyword is the fixed keyword matching image entries in a filter
// query: an image entry matches when the lowercased query contains it.
const ImageKeyword = "image"

const (
	// DefaultGuardWindow suppresses commits arriving right after the view
	// opened; they are accidental triggers from the keystroke that opened it.
	DefaultGuardWindow = 500 * time.Millisecond

	// DefaultPasteDelay is the pause between writing the clipboard and
	// issuing the synthetic paste, giving focus time to return to the
	// target application.
	DefaultPasteDelay = 150 * time.Millisecond
)

// ViewState is the retrieval view's lifecycle state.
type ViewState int

const (
	StateClosed ViewState = iota
	StateOpen             // just opened, guard active
	StateActive           // guard cleared
)

func (s ViewState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateActive:
		return "active"
	default:
		return "closed"
	}
}

// Config carries optional service settings.
type Config struct {
	GuardWindow time.Duration
	PasteDelay  time.Duration
	Now         func() time.Time // test hook
}

// Service is the read-side view over the history store. All view state is
// owned here and mutated under one mutex; rendering collaborators only ever
// see snapshots.
type Service struct {
	mu       sync.Mutex
	history  *history.Store
	device   clipboard.Device
	injector input.Injector // nil disables synthetic paste
	guard    time.Duration
	delay    time.Duration
	now      func() time.Time

	state    ViewState
	openedAt time.Time
	query    string
	view     []history.Entry // reverse-chronological
	cursor   int
}

// New creates a retrieval service. injector may be nil, in which case
// committed payloads are left on the clipboard for a manual paste.
func New(hist *history.Store, device clipboard.Device, injector input.Injector, cfg Config) *Service {
	if cfg.GuardWindow <= 0 {
		cfg.GuardWindow = DefaultGuardWindow
	}
	if cfg.PasteDelay <= 0 {
		cfg.PasteDelay = DefaultPasteDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		history:  hist,
		device:   device,
		injector: injector,
		guard:    cfg.GuardWindow,
		delay:    cfg.PasteDelay,
		now:      cfg.Now,
	}
}

// Open transitions the view to OPEN with the guard active and builds the
// unfiltered view. Reopening an already-open view only refreshes it and
// moves straight to ACTIVE; the guard is not re-armed.
func (s *Service) Open() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		s.state = StateOpen
		s.openedAt = s.now()
	} else {
		s.state = StateActive
	}
	s.filterLocked(s.query)
	return s.snapshotLocked()
}

// Close transitions the view to CLOSED. View data is discarded.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	s.query = ""
	s.view = nil
	s.cursor = 0
}

// State returns the current view state. OPEN lazily promotes to ACTIVE once
// the guard window has elapsed.
func (s *Service) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateOpen && s.now().Sub(s.openedAt) >= s.guard {
		s.state = StateActive
	}
	return s.state
}

// Filter rebuilds the view for query and resets the cursor. An empty query
// yields the full history. Result order is reverse-chronological.
func (s *Service) Filter(query string) []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterLocked(query)
	return s.snapshotLocked()
}

// View returns the current view snapshot, most recent entry first.
func (s *Service) View() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Cursor returns the highlighted position within the current view.
func (s *Service) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Navigate moves the cursor by delta, clamped to [0, len-1]. A no-op on an
// empty view; the cursor never wraps. Returns the new cursor.
func (s *Service) Navigate(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.view) == 0 {
		return s.cursor
	}
	next := s.cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= len(s.view) {
		next = len(s.view) - 1
	}
	s.cursor = next
	return s.cursor
}

// Commit writes the entry at the given view index back to the OS clipboard
// and, after a short delay, attempts a synthetic paste. Commits inside the
// guard window are suppressed entirely. Returns whether the commit was
// performed; a failed synthetic paste is not an error, the payload stays on
// the clipboard for a manual paste.
func (s *Service) Commit(index int) (bool, error) {
	s.mu.Lock()

	if s.state == StateClosed {
		s.mu.Unlock()
		return false, nil
	}
	if s.state == StateOpen {
		if s.now().Sub(s.openedAt) < s.guard {
			s.mu.Unlock()
			slog.Debug("commit suppressed by guard window")
			return false, nil
		}
		s.state = StateActive
	}
	if index < 0 || index >= len(s.view) {
		s.mu.Unlock()
		return false, fmt.Errorf("commit index %d out of range (view has %d entries)", index, len(s.view))
	}
	entry := s.view[index]
	s.mu.Unlock()

	if err := s.writeEntry(entry); err != nil {
		return false, err
	}

	s.Close()
	s.schedulePaste(entry.Kind)
	return true, nil
}

// DeleteSelected removes the entry at the given view index from history and
// recomputes the view with the active query.
func (s *Service) DeleteSelected(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.view) {
		return fmt.Errorf("delete index %d out of range (view has %d entries)", index, len(s.view))
	}
	s.history.Remove(s.view[index])
	s.filterLocked(s.query)
	return nil
}

// ClearAll removes every entry and recomputes the (now empty) view.
func (s *Service) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
	s.filterLocked(s.query)
}

// Changes exposes the history store's mutation signal so a presentation
// collaborator can refresh its view.
func (s *Service) Changes() <-chan struct{} {
	return s.history.Changes()
}

// filterLocked rebuilds the reverse-chronological view for query.
func (s *Service) filterLocked(query string) {
	s.query = query
	needle := strings.ToLower(query)

	entries := s.history.Entries()
	view := make([]history.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if matches(entries[i], needle) {
			view = append(view, entries[i])
		}
	}
	s.view = view
	s.cursor = 0
}

func matches(e history.Entry, needle string) bool {
	if needle == "" {
		return true
	}
	if e.Kind == history.KindImage {
		return strings.Contains(needle, ImageKeyword)
	}
	return strings.Contains(strings.ToLower(e.Text), needle) ||
		strings.Contains(strings.ToLower(e.Preview), needle)
}

func (s *Service) snapshotLocked() []history.Entry {
	out := make([]history.Entry, len(s.view))
	copy(out, s.view)
	return out
}

// writeEntry puts the entry's payload on the OS clipboard: raw image bytes
// for image entries, the original text for text entries.
func (s *Service) writeEntry(entry history.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), clipboard.QueryTimeout)
	defer cancel()

	if entry.Kind == history.KindImage {
		data, err := os.ReadFile(entry.ImagePath)
		if err != nil {
			return fmt.Errorf("failed to read image blob %s: %w", entry.ImagePath, err)
		}
		if err := s.device.WriteImage(ctx, data); err != nil {
			return fmt.Errorf("failed to write image to clipboard: %w", err)
		}
		return nil
	}

	if err := s.device.WriteText(ctx, entry.Text); err != nil {
		return fmt.Errorf("failed to write text to clipboard: %w", err)
	}
	return nil
}

// schedulePaste launches the delayed synthetic paste as a short-lived
// detached task. There is no cancellation path: if the trigger context is
// gone by the time it runs, it completes or fails silently, logged only.
func (s *Service) schedulePaste(kind history.Kind) {
	if s.injector == nil {
		return
	}
	go func() {
		time.Sleep(s.delay)
		ctx, cancel := context.WithTimeout(context.Background(), clipboard.QueryTimeout)
		defer cancel()
		if err := s.injector.Paste(ctx); err != nil {
			slog.Warn("synthetic paste failed, payload left on clipboard",
				"kind", kind, "error", err)
		}
	}()
}
