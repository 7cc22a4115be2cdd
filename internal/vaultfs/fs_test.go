package vaultfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestNewAtCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "vault")
	v, err := NewAt(root)
	if err != nil {
		t.Fatalf("NewAt failed: %v", err)
	}

	if v.Root() != root {
		t.Errorf("Root = %s, want %s", v.Root(), root)
	}
	info, err := os.Stat(v.ImagesPath())
	if err != nil || !info.IsDir() {
		t.Errorf("images directory not created: %v", err)
	}
	if v.HistoryPath() != filepath.Join(root, HistoryFile) {
		t.Errorf("HistoryPath = %s", v.HistoryPath())
	}
	if v.ArchivePath() != filepath.Join(root, ArchiveFile) {
		t.Errorf("ArchivePath = %s", v.ArchivePath())
	}

	// Idempotent on an existing directory.
	if _, err := NewAt(root); err != nil {
		t.Errorf("NewAt on existing directory failed: %v", err)
	}
}

func TestMigrateLegacy(t *testing.T) {
	home := t.TempDir()

	historyJSON := []byte(`{"history": [], "last_update": "2023-01-01T00:00:00"}`)
	if err := os.WriteFile(filepath.Join(home, legacyHistoryFile), historyJSON, 0644); err != nil {
		t.Fatal(err)
	}
	oldImages := filepath.Join(home, legacyImagesDir)
	if err := os.MkdirAll(oldImages, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(oldImages, "abc.png"), []byte{1, 2}, 0644); err != nil {
		t.Fatal(err)
	}

	v, err := NewAt(filepath.Join(home, DataDir))
	if err != nil {
		t.Fatalf("NewAt failed: %v", err)
	}
	if err := v.migrateLegacy(home); err != nil {
		t.Fatalf("migrateLegacy failed: %v", err)
	}

	got, err := os.ReadFile(v.HistoryPath())
	if err != nil {
		t.Fatalf("migrated history missing: %v", err)
	}
	if string(got) != string(historyJSON) {
		t.Error("migrated history content differs")
	}
	if _, err := os.Stat(filepath.Join(home, legacyHistoryFile)); !os.IsNotExist(err) {
		t.Error("legacy history file should be moved, not copied")
	}

	if _, err := os.Stat(filepath.Join(v.ImagesPath(), "abc.png")); err != nil {
		t.Errorf("migrated image missing: %v", err)
	}
	if _, err := os.Stat(oldImages); !os.IsNotExist(err) {
		t.Error("emptied legacy image directory should be removed")
	}
}

func TestMigrateLegacyRewritesImagePaths(t *testing.T) {
	home := t.TempDir()
	oldImages := filepath.Join(home, legacyImagesDir)
	if err := os.MkdirAll(oldImages, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(oldImages, "cafe01.png"), []byte{1, 2}, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(oldImages, "cafe01_preview.png"), []byte{3}, 0644); err != nil {
		t.Fatal(err)
	}

	historyJSON := fmt.Sprintf(`{
		"history": [
			{"text": "plain", "timestamp": "2023-01-01T00:00:01"},
			{
				"type": "image",
				"timestamp": "2023-01-01T00:00:02",
				"image_path": %q,
				"preview_path": %q,
				"image_hash": "cafe01"
			}
		],
		"last_update": "2023-01-01T00:00:02"
	}`, filepath.Join(oldImages, "cafe01.png"), filepath.Join(oldImages, "cafe01_preview.png"))
	if err := os.WriteFile(filepath.Join(home, legacyHistoryFile), []byte(historyJSON), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := NewAt(filepath.Join(home, DataDir))
	if err != nil {
		t.Fatalf("NewAt failed: %v", err)
	}
	if err := v.migrateLegacy(home); err != nil {
		t.Fatalf("migrateLegacy failed: %v", err)
	}

	data, err := os.ReadFile(v.HistoryPath())
	if err != nil {
		t.Fatalf("migrated history missing: %v", err)
	}
	var doc struct {
		History []struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			ImagePath   string `json:"image_path"`
			PreviewPath string `json:"preview_path"`
			ImageHash   string `json:"image_hash"`
		} `json:"history"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("migrated history does not parse: %v", err)
	}
	if len(doc.History) != 2 {
		t.Fatalf("migrated history has %d records, want 2", len(doc.History))
	}

	img := doc.History[1]
	wantImage := filepath.Join(v.ImagesPath(), "cafe01.png")
	wantPreview := filepath.Join(v.ImagesPath(), "cafe01_preview.png")
	if img.ImagePath != wantImage {
		t.Errorf("image_path = %s, want %s", img.ImagePath, wantImage)
	}
	if img.PreviewPath != wantPreview {
		t.Errorf("preview_path = %s, want %s", img.PreviewPath, wantPreview)
	}
	// The rewritten paths must reference the moved files.
	if _, err := os.Stat(img.ImagePath); err != nil {
		t.Errorf("rewritten image_path dangles: %v", err)
	}
	if _, err := os.Stat(img.PreviewPath); err != nil {
		t.Errorf("rewritten preview_path dangles: %v", err)
	}
	// Fields outside the rewrite must survive untouched.
	if img.ImageHash != "cafe01" {
		t.Errorf("image_hash = %q, want cafe01", img.ImageHash)
	}
	if doc.History[0].Text != "plain" {
		t.Errorf("text record = %q, want plain", doc.History[0].Text)
	}
}

func TestMigrateLegacyDoesNotOverwrite(t *testing.T) {
	home := t.TempDir()

	if err := os.WriteFile(filepath.Join(home, legacyHistoryFile), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := NewAt(filepath.Join(home, DataDir))
	if err != nil {
		t.Fatalf("NewAt failed: %v", err)
	}
	if err := os.WriteFile(v.HistoryPath(), []byte("current"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := v.migrateLegacy(home); err != nil {
		t.Fatalf("migrateLegacy failed: %v", err)
	}

	got, err := os.ReadFile(v.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "current" {
		t.Errorf("existing history = %q after migration, must not be overwritten", got)
	}
}

func TestMigrateLegacyNothingToDo(t *testing.T) {
	home := t.TempDir()
	v, err := NewAt(filepath.Join(home, DataDir))
	if err != nil {
		t.Fatalf("NewAt failed: %v", err)
	}
	if err := v.migrateLegacy(home); err != nil {
		t.Errorf("migrateLegacy with no legacy data failed: %v", err)
	}
}
