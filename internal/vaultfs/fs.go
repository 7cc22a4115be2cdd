// Package vaultfs resolves and prepares the clipvault data directory.
// It owns the on-disk layout (history file, image blob directory, archive
// database) and migrates data left behind by the legacy implementation,
// which kept a bare JSON file and image directory in the user's home.
package vaultfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDir is the default data directory, relative to the user's home.
	DataDir = ".config/clipvault"

	// HistoryFile is the durable history document inside the data directory.
	HistoryFile = "history.json"

	// ImagesDir holds content-addressed image blobs and their previews.
	ImagesDir = "images"

	// ArchiveFile is the SQLite archive database.
	ArchiveFile = "archive.db"

	// Legacy locations used by the original implementation.
	legacyHistoryFile = ".clipboard_history.json"
	legacyImagesDir   = ".clipboard_history_images"
)

// Vault is the prepared data directory for a single user profile.
type Vault struct {
	root string
}

// New resolves the default data directory under the user's home, creates it
// if needed, and migrates legacy data into it. Failure here is fatal to
// startup: without a data directory neither history nor blobs can persist.
func New() (*Vault, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	v, err := NewAt(filepath.Join(homeDir, DataDir))
	if err != nil {
		return nil, err
	}

	if err := v.migrateLegacy(homeDir); err != nil {
		return nil, err
	}
	return v, nil
}

// NewAt prepares a vault rooted at an explicit directory. Used for the
// --data flag and for tests.
func NewAt(root string) (*Vault, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, ImagesDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Vault{root: root}, nil
}

// Root returns the vault's root directory.
func (v *Vault) Root() string {
	return v.root
}

// HistoryPath returns the path of the durable history document.
func (v *Vault) HistoryPath() string {
	return filepath.Join(v.root, HistoryFile)
}

// ImagesPath returns the image blob directory.
func (v *Vault) ImagesPath() string {
	return filepath.Join(v.root, ImagesDir)
}

// ArchivePath returns the path of the archive database.
func (v *Vault) ArchivePath() string {
	return filepath.Join(v.root, ArchiveFile)
}

// migrateLegacy moves the original implementation's history file and image
// directory into the vault. Runs only when the new locations are still empty
// so a partially migrated setup is never overwritten.
func (v *Vault) migrateLegacy(homeDir string) error {
	movedHistory := false
	oldHistory := filepath.Join(homeDir, legacyHistoryFile)
	if _, err := os.Stat(oldHistory); err == nil {
		if _, err := os.Stat(v.HistoryPath()); os.IsNotExist(err) {
			if err := os.Rename(oldHistory, v.HistoryPath()); err != nil {
				return fmt.Errorf("failed to migrate legacy history file: %w", err)
			}
			movedHistory = true
		}
	}

	oldImages := filepath.Join(homeDir, legacyImagesDir)
	entries, err := os.ReadDir(oldImages)
	if err != nil {
		return nil // no legacy image directory
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		dst := filepath.Join(v.ImagesPath(), entry.Name())
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := os.Rename(filepath.Join(oldImages, entry.Name()), dst); err != nil {
			return fmt.Errorf("failed to migrate legacy image %s: %w", entry.Name(), err)
		}
	}
	os.Remove(oldImages) // succeeds only when emptied

	if movedHistory {
		if err := v.rewriteImagePaths(); err != nil {
			return fmt.Errorf("failed to rewrite migrated image paths: %w", err)
		}
	}
	return nil
}

// rewriteImagePaths repoints image_path/preview_path in the migrated history
// document at the vault image directory. Blob files are content-addressed,
// so moving them keeps the basename; only the directory changes. Records are
// handled generically so unknown fields survive the rewrite.
func (v *Vault) rewriteImagePaths() error {
	data, err := os.ReadFile(v.HistoryPath())
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil // corrupt document, handled at history load
	}
	records, ok := doc["history"].([]any)
	if !ok {
		return nil
	}

	changed := false
	for _, raw := range records {
		rec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"image_path", "preview_path"} {
			old, ok := rec[key].(string)
			if !ok || old == "" {
				continue
			}
			moved := filepath.Join(v.ImagesPath(), filepath.Base(old))
			if moved != old {
				rec[key] = moved
				changed = true
			}
		}
	}
	if !changed {
		return nil
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(v.HistoryPath(), out, 0644)
}
