// Package history owns the bounded, deduplicating, time-ordered sequence of
// clipboard entries and its durable JSON form.
package history

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the two entry variants.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

const (
	// previewLimit is the number of leading characters kept in a text preview.
	previewLimit = 100

	// previewEllipsis marks a truncated preview.
	previewEllipsis = "..."

	// ImagePreview is the fixed placeholder preview for image entries.
	ImagePreview = "[image]"
)

// Entry is one recorded clipboard snapshot, either text or image.
// Entries are immutable once created; they are only ever removed.
type Entry struct {
	Kind Kind
	Time time.Time

	// Text variant
	Text    string
	Preview string

	// Image variant
	ImageHash   string
	ImagePath   string
	PreviewPath string
}

// NewTextEntry builds a text entry. The original text is preserved verbatim,
// including surrounding whitespace; only the preview is truncated.
func NewTextEntry(text string, now time.Time) Entry {
	return Entry{
		Kind:    KindText,
		Time:    now,
		Text:    text,
		Preview: truncatePreview(text),
	}
}

// NewImageEntry builds an image entry referencing stored blob files.
func NewImageEntry(hash, imagePath, previewPath string, now time.Time) Entry {
	return Entry{
		Kind:        KindImage,
		Time:        now,
		Preview:     ImagePreview,
		ImageHash:   hash,
		ImagePath:   imagePath,
		PreviewPath: previewPath,
	}
}

// SameValue reports value equality as used by adjacent deduplication:
// same kind and same text, or same kind and same image hash.
func (e Entry) SameValue(o Entry) bool {
	if e.Kind != o.Kind {
		return false
	}
	if e.Kind == KindImage {
		return e.ImageHash == o.ImageHash
	}
	return e.Text == o.Text
}

// Is reports entry identity: value equality plus the creation instant.
// Used to locate a specific entry for removal.
func (e Entry) Is(o Entry) bool {
	return e.SameValue(o) && e.Time.Equal(o.Time)
}

// truncatePreview keeps the first previewLimit characters of text, appending
// an ellipsis when truncated.
func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + previewEllipsis
}

// entryRecord is the wire form of an Entry in the durable history document.
type entryRecord struct {
	Type        string `json:"type,omitempty"`
	Timestamp   string `json:"timestamp"`
	Text        string `json:"text,omitempty"`
	Preview     string `json:"preview,omitempty"`
	ImagePath   string `json:"image_path,omitempty"`
	PreviewPath string `json:"preview_path,omitempty"`
	ImageHash   string `json:"image_hash,omitempty"`
}

// document is the durable history file: the ordered entry list plus the
// instant of the last successful save.
type document struct {
	History    []entryRecord `json:"history"`
	LastUpdate string        `json:"last_update"`
}

// legacyTimestampLayout matches zone-less ISO-8601 timestamps written by the
// original implementation.
const legacyTimestampLayout = "2006-01-02T15:04:05.999999999"

func (e Entry) record() entryRecord {
	rec := entryRecord{
		Type:      string(e.Kind),
		Timestamp: e.Time.Format(time.RFC3339Nano),
		Preview:   e.Preview,
	}
	switch e.Kind {
	case KindImage:
		rec.ImagePath = e.ImagePath
		rec.PreviewPath = e.PreviewPath
		rec.ImageHash = e.ImageHash
	default:
		rec.Text = e.Text
	}
	return rec
}

// entry converts a wire record to an Entry. Records without a type marker
// are normalized to text, once, here at the load boundary.
func (r entryRecord) entry() Entry {
	kind := Kind(r.Type)
	if kind != KindImage {
		kind = KindText
	}

	e := Entry{
		Kind:    kind,
		Time:    parseTimestamp(r.Timestamp),
		Preview: r.Preview,
	}
	switch kind {
	case KindImage:
		e.ImagePath = r.ImagePath
		e.PreviewPath = r.PreviewPath
		e.ImageHash = r.ImageHash
		if e.Preview == "" {
			e.Preview = ImagePreview
		}
	default:
		e.Text = r.Text
		if e.Preview == "" {
			e.Preview = truncatePreview(r.Text)
		}
	}
	return e
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyTimestampLayout, s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// encodeDocument serializes entries plus a last-update timestamp.
func encodeDocument(entries []Entry, now time.Time) ([]byte, error) {
	doc := document{
		History:    make([]entryRecord, 0, len(entries)),
		LastUpdate: now.Format(time.RFC3339Nano),
	}
	for _, e := range entries {
		doc.History = append(doc.History, e.record())
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return data, nil
}

// decodeDocument parses a durable history document into entries.
func decodeDocument(data []byte) ([]Entry, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}

	entries := make([]Entry, 0, len(doc.History))
	for _, rec := range doc.History {
		entries = append(entries, rec.entry())
	}
	return entries, nil
}
