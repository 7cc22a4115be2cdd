package history

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ykotov/clipvault/internal/blob"
)

// DefaultMaxHistory is the default bound on the number of retained entries.
const DefaultMaxHistory = 100

// Store is the single authoritative owner of the bounded history sequence.
// All mutation passes through its mutex; persistence happens inside the
// critical section so concurrent writers never interleave partial updates
// to the in-memory sequence or the durable file.
type Store struct {
	mu      sync.Mutex
	path    string
	blobs   *blob.Store
	max     int
	entries []Entry // oldest first
	changes chan struct{}
	now     func() time.Time
}

// Open loads the durable history at path, or starts empty when the file is
// missing or unreadable. Corrupt storage is logged, never fatal: the next
// successful save reconciles it.
func Open(path string, blobs *blob.Store, maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	s := &Store{
		path:    path,
		blobs:   blobs,
		max:     maxHistory,
		changes: make(chan struct{}, 1),
		now:     time.Now,
	}
	s.load()
	return s
}

// MaxHistory returns the configured entry bound.
func (s *Store) MaxHistory() int {
	return s.max
}

// Entries returns a snapshot of the sequence, oldest first. The snapshot is
// never mutated after return, so readers observe a consistent view.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Changes returns a channel that receives a signal after every successful
// mutation. The channel is buffered and signals coalesce; consumers should
// re-read Entries when they receive.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// AppendText records a new text entry. The append is skipped when the text
// is empty after trimming or value-equal to the immediately preceding entry.
// Equality against earlier, non-adjacent entries does not block insertion.
// Returns the created entry and whether it was appended.
func (s *Store) AppendText(text string) (Entry, bool) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := NewTextEntry(text, s.now())
	if n := len(s.entries); n > 0 && s.entries[n-1].SameValue(entry) {
		return Entry{}, false
	}

	s.appendLocked(entry)
	return entry, true
}

// AppendImage stores image bytes in the blob store and records an image
// entry for them. A no-op when the image duplicates the current last entry.
// Blob write failures are logged and skip the append; they do not stop
// monitoring.
func (s *Store) AppendImage(data []byte) (Entry, bool) {
	if len(data) == 0 {
		return Entry{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var lastHash string
	if n := len(s.entries); n > 0 && s.entries[n-1].Kind == KindImage {
		lastHash = s.entries[n-1].ImageHash
	}

	stored, err := s.blobs.Store(data, lastHash)
	if errors.Is(err, blob.ErrDuplicate) {
		return Entry{}, false
	}
	if err != nil {
		slog.Error("failed to store image blob", "error", err)
		return Entry{}, false
	}

	entry := NewImageEntry(stored.Hash, stored.ImagePath, stored.PreviewPath, s.now())
	s.appendLocked(entry)
	return entry, true
}

// Remove deletes the given entry by identity. Image blob files are removed
// best-effort, unless another surviving entry still references the same
// hash. Returns whether an entry was removed.
func (s *Store) Remove(e Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Is(e) {
			removed := s.entries[i]
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.deleteBlobsLocked(removed)
			s.saveLocked()
			s.notify()
			return true
		}
	}
	return false
}

// Clear removes all entries and their blob files, then persists the empty
// sequence.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.entries
	s.entries = nil
	for _, e := range old {
		s.deleteBlobsLocked(e)
	}
	s.saveLocked()
	s.notify()
}

// appendLocked appends, evicts beyond capacity (oldest first), persists,
// and signals. Caller holds the mutex.
func (s *Store) appendLocked(entry Entry) {
	s.entries = append(s.entries, entry)
	for len(s.entries) > s.max {
		evicted := s.entries[0]
		s.entries = s.entries[1:]
		s.deleteBlobsLocked(evicted)
	}
	s.saveLocked()
	s.notify()
}

// deleteBlobsLocked removes an image entry's files best-effort. Files are
// kept while a non-adjacent duplicate entry still references the hash.
func (s *Store) deleteBlobsLocked(e Entry) {
	if e.Kind != KindImage {
		return
	}
	for _, other := range s.entries {
		if other.Kind == KindImage && other.ImageHash == e.ImageHash {
			return
		}
	}
	s.blobs.Delete(e.ImagePath)
	if e.PreviewPath != e.ImagePath {
		s.blobs.Delete(e.PreviewPath)
	}
}

// saveLocked writes the full sequence plus a last-update timestamp. Failure
// is logged and does not roll back: the in-memory sequence stays
// authoritative until the next successful save.
func (s *Store) saveLocked() {
	data, err := encodeDocument(s.entries, s.now())
	if err != nil {
		slog.Error("failed to encode history", "error", err, "entries", len(s.entries))
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		slog.Error("failed to save history", "error", err, "path", s.path)
	}
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read history file, starting empty",
				"error", err, "path", s.path)
		}
		return
	}

	entries, err := decodeDocument(data)
	if err != nil {
		slog.Warn("corrupt history file, starting empty", "error", err, "path", s.path)
		return
	}

	// Respect the bound even if the file grew under a larger configuration.
	// Dropped entries release their blob files like any other eviction.
	if len(entries) > s.max {
		dropped := entries[:len(entries)-s.max]
		s.entries = entries[len(entries)-s.max:]
		for _, e := range dropped {
			s.deleteBlobsLocked(e)
		}
		return
	}
	s.entries = entries
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
