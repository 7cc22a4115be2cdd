package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the clipvault configuration.
type Config struct {
	HistoryLimit   int    `yaml:"history_limit"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
	DataLocation   string `yaml:"data_location,omitempty"`
	ArchiveEnabled bool   `yaml:"archive_enabled"`
	AutoPaste      bool   `yaml:"auto_paste"`
	ClearOnStartup bool   `yaml:"clear_on_startup"`
	LogLevel       string `yaml:"log_level,omitempty"`
	LogFormat      string `yaml:"log_format,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit:   100,
		PollIntervalMS: 300,
		ArchiveEnabled: true,
		AutoPaste:      true,
	}
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Manager manages configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a configuration manager at the default path.
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return &Manager{
		configPath: filepath.Join(homeDir, ".config", "clipvault", "config.yaml"),
	}, nil
}

// NewManagerWithPath creates a manager with a custom config path.
func NewManagerWithPath(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// Load reads the configuration from file, or returns defaults if the file
// doesn't exist.
func (m *Manager) Load() (*Config, error) {
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Save writes the configuration to file.
func (m *Manager) Save(config *Config) error {
	if err := validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// Update modifies a single configuration value by key.
func (m *Manager) Update(key, value string) error {
	config, err := m.Load()
	if err != nil {
		return err
	}

	switch key {
	case "history-limit":
		var limit int
		if _, err := fmt.Sscanf(value, "%d", &limit); err != nil {
			return fmt.Errorf("invalid integer value for history-limit: %s", value)
		}
		config.HistoryLimit = limit
	case "poll-interval-ms":
		var interval int
		if _, err := fmt.Sscanf(value, "%d", &interval); err != nil {
			return fmt.Errorf("invalid integer value for poll-interval-ms: %s", value)
		}
		config.PollIntervalMS = interval
	case "archive-enabled":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for archive-enabled: %w", err)
		}
		config.ArchiveEnabled = b
	case "auto-paste":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for auto-paste: %w", err)
		}
		config.AutoPaste = b
	case "clear-on-startup":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for clear-on-startup: %w", err)
		}
		config.ClearOnStartup = b
	case "data-location":
		config.DataLocation = value
	case "log-level":
		config.LogLevel = value
	case "log-format":
		config.LogFormat = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return m.Save(config)
}

// Get returns the value for a single configuration key.
func (m *Manager) Get(key string) (string, error) {
	config, err := m.Load()
	if err != nil {
		return "", err
	}

	values := m.values(config)
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return v, nil
}

// List returns all configuration keys and values.
func (m *Manager) List() (map[string]string, error) {
	config, err := m.Load()
	if err != nil {
		return nil, err
	}
	return m.values(config), nil
}

func (m *Manager) values(config *Config) map[string]string {
	location := config.DataLocation
	if location == "" {
		location = "[default]"
	}
	return map[string]string{
		"history-limit":    fmt.Sprintf("%d", config.HistoryLimit),
		"poll-interval-ms": fmt.Sprintf("%d", config.PollIntervalMS),
		"archive-enabled":  fmt.Sprintf("%t", config.ArchiveEnabled),
		"auto-paste":       fmt.Sprintf("%t", config.AutoPaste),
		"clear-on-startup": fmt.Sprintf("%t", config.ClearOnStartup),
		"data-location":    location,
		"log-level":        config.LogLevel,
		"log-format":       config.LogFormat,
	}
}

func validate(config *Config) error {
	if config.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be greater than 0")
	}
	if config.HistoryLimit > 1000 {
		return fmt.Errorf("history_limit cannot exceed 1000 entries")
	}
	if config.PollIntervalMS < 50 {
		return fmt.Errorf("poll_interval_ms must be at least 50")
	}
	return nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%s (must be 'true' or 'false')", value)
	}
}
