package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	m := testManager(t)

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HistoryLimit != 100 {
		t.Errorf("HistoryLimit = %d, want 100", cfg.HistoryLimit)
	}
	if cfg.PollIntervalMS != 300 {
		t.Errorf("PollIntervalMS = %d, want 300", cfg.PollIntervalMS)
	}
	if !cfg.ArchiveEnabled || !cfg.AutoPaste {
		t.Error("archive and auto-paste should default to enabled")
	}
	if cfg.ClearOnStartup {
		t.Error("clear-on-startup should default to disabled")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := testManager(t)

	cfg := DefaultConfig()
	cfg.HistoryLimit = 42
	cfg.PollIntervalMS = 500
	cfg.DataLocation = "/tmp/vault"
	cfg.ClearOnStartup = true
	cfg.LogLevel = "debug"

	if err := m.Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	m := testManager(t)
	if err := os.WriteFile(m.ConfigPath(), []byte("history_limit: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HistoryLimit != 7 {
		t.Errorf("HistoryLimit = %d, want 7", cfg.HistoryLimit)
	}
	if cfg.PollIntervalMS != 300 {
		t.Errorf("PollIntervalMS = %d, unset keys must keep defaults", cfg.PollIntervalMS)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults valid", func(c *Config) {}, true},
		{"zero history limit", func(c *Config) { c.HistoryLimit = 0 }, false},
		{"negative history limit", func(c *Config) { c.HistoryLimit = -1 }, false},
		{"limit at cap", func(c *Config) { c.HistoryLimit = 1000 }, true},
		{"limit over cap", func(c *Config) { c.HistoryLimit = 1001 }, false},
		{"poll interval at floor", func(c *Config) { c.PollIntervalMS = 50 }, true},
		{"poll interval below floor", func(c *Config) { c.PollIntervalMS = 49 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManager(t)
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := m.Save(cfg)
			if tt.valid && err != nil {
				t.Errorf("Save failed for valid config: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Save accepted invalid config")
			}
		})
	}
}

func TestUpdateAndGet(t *testing.T) {
	m := testManager(t)

	if err := m.Update("history-limit", "250"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := m.Update("auto-paste", "false"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if v, err := m.Get("history-limit"); err != nil || v != "250" {
		t.Errorf("Get(history-limit) = (%q, %v), want (250, nil)", v, err)
	}
	if v, err := m.Get("auto-paste"); err != nil || v != "false" {
		t.Errorf("Get(auto-paste) = (%q, %v), want (false, nil)", v, err)
	}

	if err := m.Update("history-limit", "notanumber"); err == nil {
		t.Error("Update accepted a non-integer history limit")
	}
	if err := m.Update("auto-paste", "yes"); err == nil {
		t.Error("Update accepted a non true/false boolean")
	}
	if err := m.Update("no-such-key", "x"); err == nil {
		t.Error("Update accepted an unknown key")
	}
	if _, err := m.Get("no-such-key"); err == nil {
		t.Error("Get accepted an unknown key")
	}
}

func TestList(t *testing.T) {
	m := testManager(t)

	values, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, key := range []string{
		"history-limit", "poll-interval-ms", "archive-enabled",
		"auto-paste", "clear-on-startup", "data-location",
	} {
		if _, ok := values[key]; !ok {
			t.Errorf("List missing key %q", key)
		}
	}
	if values["data-location"] != "[default]" {
		t.Errorf("unset data-location = %q, want [default]", values["data-location"])
	}
}

func TestPollInterval(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PollInterval() != 300*time.Millisecond {
		t.Errorf("PollInterval = %v, want 300ms", cfg.PollInterval())
	}
}
