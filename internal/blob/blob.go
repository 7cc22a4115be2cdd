// Package blob provides content-addressed storage for clipboard images.
// Each distinct image is written once as <hash>.png alongside a downscaled
// <hash>_preview.png thumbnail. Paths are stable for the lifetime of the
// history entries that reference them.
package blob

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
)

// ErrDuplicate is returned by Store when the incoming image hash matches the
// caller's current last image hash. No file is written in that case.
var ErrDuplicate = errors.New("image duplicates current last entry")

// PreviewMaxSide is the longest side of a generated thumbnail in pixels.
const PreviewMaxSide = 150

// Stored describes an image persisted by the store.
type Stored struct {
	Hash        string // hex-encoded SHA-256 of the raw image bytes
	ImagePath   string // full image file
	PreviewPath string // thumbnail, or ImagePath when thumbnailing failed
}

// Store is a content-addressed image blob store rooted at a single directory.
type Store struct {
	dir string
}

// NewStore creates a blob store rooted at dir, creating it if needed.
// An unusable directory is a startup failure.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the blob directory.
func (s *Store) Dir() string {
	return s.dir
}

// Hash returns the hex-encoded SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Store persists image bytes under their content hash. lastHash is the hash
// of the caller's current last image entry (empty when the last entry is not
// an image); a matching hash returns ErrDuplicate without writing anything.
// Thumbnail generation failure is non-fatal: the preview path falls back to
// the full image path.
func (s *Store) Store(data []byte, lastHash string) (*Stored, error) {
	hash := Hash(data)
	if lastHash != "" && hash == lastHash {
		return nil, ErrDuplicate
	}

	imagePath := filepath.Join(s.dir, hash+".png")
	if err := os.WriteFile(imagePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write image blob: %w", err)
	}

	previewPath := filepath.Join(s.dir, hash+"_preview.png")
	if err := s.writePreview(data, previewPath); err != nil {
		slog.Warn("thumbnail generation failed, using full image as preview",
			"hash", hash, "error", err)
		previewPath = imagePath
	}

	return &Stored{
		Hash:        hash,
		ImagePath:   imagePath,
		PreviewPath: previewPath,
	}, nil
}

// Delete removes a blob or preview file best-effort. Missing files and
// permission failures are swallowed: the entry referencing the path is
// already gone and monitoring must not stop over stale files.
func (s *Store) Delete(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Debug("failed to delete blob file", "path", path, "error", err)
	}
}

// writePreview decodes data and writes a PNG thumbnail whose longest side is
// at most PreviewMaxSide, preserving aspect ratio. Images already within the
// bound are re-encoded unscaled.
func (s *Store) writePreview(data []byte, path string) error {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", w, h)
	}

	tw, th := previewSize(w, h)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preview file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	return nil
}

// previewSize scales (w, h) down so the longest side is PreviewMaxSide.
// Dimensions already within the bound are returned unchanged.
func previewSize(w, h int) (int, int) {
	if w <= PreviewMaxSide && h <= PreviewMaxSide {
		return w, h
	}
	if w >= h {
		scaled := h * PreviewMaxSide / w
		if scaled < 1 {
			scaled = 1
		}
		return PreviewMaxSide, scaled
	}
	scaled := w * PreviewMaxSide / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, PreviewMaxSide
}
