package cli

import (
	"fmt"
)

// Args represents the top-level command structure.
type Args struct {
	Watch  *WatchCmd  `arg:"subcommand:watch" help:"Run the clipboard watcher daemon"`
	Show   *ShowCmd   `arg:"subcommand:show" help:"Browse and re-apply clipboard history"`
	Search *SearchCmd `arg:"subcommand:search" help:"Search the long-term entry archive"`
	Clear  *ClearCmd  `arg:"subcommand:clear" help:"Clear clipboard history"`
	Config *ConfigCmd `arg:"subcommand:config" help:"Manage configuration"`

	ConfigPath *string `arg:"--config" help:"Config file path (default: ~/.config/clipvault/config.yaml)"`
	Data       *string `arg:"--data" help:"Data directory (default: ~/.config/clipvault)"`
	LogLevel   *string `arg:"--log-level" help:"Log level: debug, info, warn, error"`
	LogFormat  *string `arg:"--log-format" help:"Log format: auto, text, json"`
}

// WatchCmd represents the 'clipvault watch' command.
type WatchCmd struct {
	Clear bool `arg:"-c,--clear" help:"Clear history on startup"`
}

// ShowCmd represents the 'clipvault show' command.
type ShowCmd struct{}

// SearchCmd represents the 'clipvault search' command.
type SearchCmd struct {
	Pattern string `arg:"positional,required" help:"Text to search for"`
	Limit   int    `arg:"-n,--limit" default:"20" help:"Maximum number of results (0 = no limit)"`
}

// ClearCmd represents the 'clipvault clear' command.
type ClearCmd struct{}

// ConfigCmd represents the 'clipvault config' command. With no key it lists
// all settings; with a key it prints the value; with a key and value it
// updates the setting.
type ConfigCmd struct {
	Key   *string `arg:"positional" help:"Configuration key"`
	Value *string `arg:"positional" help:"New value for the key"`
}

// Description returns the program description.
func (Args) Description() string {
	return "clipvault - clipboard history daemon with bounded, deduplicated recall"
}

// Version returns the program version.
func (Args) Version() string {
	return "clipvault 0.1.0"
}

// Epilogue returns additional help text.
func (Args) Epilogue() string {
	return `Examples:
  clipvault watch                  # Run the watcher daemon
  clipvault watch --clear          # Wipe history, then watch
  clipvault show                   # Interactive history browser
  clipvault search "meeting"       # Search everything ever recorded
  clipvault config history-limit 200

Bind a desktop hotkey to 'pkill -USR1 clipvault' to pop the browser
from a running watch session.`
}

// Validate performs validation on the parsed arguments.
func (args *Args) Validate() error {
	if args.Search != nil {
		return args.Search.Validate()
	}
	if args.Config != nil {
		return args.Config.Validate()
	}
	return nil
}

// Validate validates search command arguments.
func (s *SearchCmd) Validate() error {
	if s.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	return nil
}

// Validate validates config command arguments.
func (c *ConfigCmd) Validate() error {
	if c.Key == nil && c.Value != nil {
		return fmt.Errorf("cannot set a value without a key")
	}
	return nil
}
