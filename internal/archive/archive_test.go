package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ykotov/clipvault/internal/history"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRecordAndCount(t *testing.T) {
	a := openTestArchive(t)

	now := time.Now()
	entries := []history.Entry{
		history.NewTextEntry("first snippet", now),
		history.NewTextEntry("second snippet", now.Add(time.Second)),
		history.NewImageEntry("deadbeef", "/img/deadbeef.png", "/img/deadbeef_preview.png", now.Add(2*time.Second)),
	}
	for _, e := range entries {
		if err := a.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := a.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestSearch(t *testing.T) {
	a := openTestArchive(t)

	now := time.Now()
	seed := []history.Entry{
		history.NewTextEntry("Grocery List", now),
		history.NewTextEntry("meeting notes", now.Add(time.Second)),
		history.NewImageEntry("cafe01", "/img/cafe01.png", "/img/cafe01.png", now.Add(2*time.Second)),
		history.NewTextEntry("grocery receipt", now.Add(3*time.Second)),
	}
	for _, e := range seed {
		if err := a.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	tests := []struct {
		name    string
		pattern string
		limit   int
		want    []string // expected previews, newest first
	}{
		{"case-insensitive match", "GROCERY", 0, []string{"grocery receipt", "Grocery List"}},
		{"image keyword matches image rows", "image", 0, []string{"[image]"}},
		{"limit caps results", "grocery", 1, []string{"grocery receipt"}},
		{"no matches", "missing", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := a.Search(tt.pattern, tt.limit)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if len(results) != len(tt.want) {
				t.Fatalf("got %d results, want %d: %+v", len(results), len(tt.want), results)
			}
			for i, want := range tt.want {
				if results[i].Preview != want {
					t.Errorf("result %d preview = %q, want %q", i, results[i].Preview, want)
				}
			}
		})
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.db")

	a, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	if err := a.Record(history.NewTextEntry("durable", time.Now())); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen archive: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d after reopen, want 1", n)
	}
}
