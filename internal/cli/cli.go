// Package cli wires the clipvault components together and dispatches the
// parsed command.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ykotov/clipvault/internal/archive"
	"github.com/ykotov/clipvault/internal/blob"
	"github.com/ykotov/clipvault/internal/clipboard"
	"github.com/ykotov/clipvault/internal/clipboard/nativeboard"
	"github.com/ykotov/clipvault/internal/clipboard/sysboard"
	"github.com/ykotov/clipvault/internal/config"
	"github.com/ykotov/clipvault/internal/history"
	"github.com/ykotov/clipvault/internal/hotkey"
	"github.com/ykotov/clipvault/internal/input"
	"github.com/ykotov/clipvault/internal/logging"
	"github.com/ykotov/clipvault/internal/retrieval"
	"github.com/ykotov/clipvault/internal/tui"
	"github.com/ykotov/clipvault/internal/vaultfs"
	"github.com/ykotov/clipvault/internal/watcher"
)

// CLI handles the command-line interface.
type CLI struct {
	cfg        *config.Config
	cfgManager *config.Manager
	vault      *vaultfs.Vault
	histStore  *history.Store
	device     clipboard.Device
}

// NewWithArgs builds a CLI instance from parsed arguments. Failure to set up
// the data directory or blob store aborts startup; everything downstream is
// recoverable.
func NewWithArgs(args *Args) (*CLI, error) {
	var cfgManager *config.Manager
	var err error
	if args.ConfigPath != nil {
		cfgManager = config.NewManagerWithPath(*args.ConfigPath)
	} else {
		cfgManager, err = config.NewManager()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := cfgManager.Load()
	if err != nil {
		return nil, err
	}

	setupLogging(args, cfg)

	vault, err := openVault(args, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := blob.NewStore(vault.ImagesPath())
	if err != nil {
		return nil, err
	}

	hist := history.Open(vault.HistoryPath(), blobs, cfg.HistoryLimit)

	return &CLI{
		cfg:        cfg,
		cfgManager: cfgManager,
		vault:      vault,
		histStore:  hist,
		device:     openDevice(),
	}, nil
}

func setupLogging(args *Args, cfg *config.Config) {
	level := cfg.LogLevel
	if args.LogLevel != nil {
		level = *args.LogLevel
	}
	format := cfg.LogFormat
	if args.LogFormat != nil {
		format = *args.LogFormat
	}
	logging.Setup(logging.ParseFormat(format), logging.ParseLevel(level))
}

func openVault(args *Args, cfg *config.Config) (*vaultfs.Vault, error) {
	if args.Data != nil {
		return vaultfs.NewAt(*args.Data)
	}
	if cfg.DataLocation != "" {
		return vaultfs.NewAt(cfg.DataLocation)
	}
	return vaultfs.New()
}

// openDevice prefers the native clipboard backend and falls back to the
// exec-based one when no display is reachable.
func openDevice() clipboard.Device {
	if native, err := nativeboard.New(); err == nil {
		return native
	}
	board := sysboard.New()
	if !board.IsSupported() {
		slog.Warn("no clipboard helper commands found, clipboard access will fail")
	} else {
		slog.Debug("native clipboard unavailable, using command backend")
	}
	return board
}

// Execute runs the CLI command based on parsed arguments.
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Watch != nil:
		return c.executeWatch(args.Watch)
	case args.Search != nil:
		return c.executeSearch(args.Search)
	case args.Clear != nil:
		return c.executeClear()
	case args.Config != nil:
		return c.executeConfig(args.Config)
	default:
		return c.executeShow()
	}
}

// executeWatch runs the watcher daemon. The poll loop runs in the
// background; the foreground loop owns view state and drains hotkey
// activations, so OS callbacks never touch the view directly.
func (c *CLI) executeWatch(cmd *WatchCmd) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Clear || c.cfg.ClearOnStartup {
		c.histStore.Clear()
		slog.Info("history cleared on startup")
	}

	var rec watcher.Archiver
	if c.cfg.ArchiveEnabled {
		arch, err := archive.Open(c.vault.ArchivePath())
		if err != nil {
			slog.Warn("archive disabled", "error", err)
		} else {
			defer arch.Close()
			rec = arch
		}
	}

	w := watcher.New(c.device, c.histStore, watcher.Config{
		Interval: c.cfg.PollInterval(),
		Archive:  rec,
	})
	go w.Run(ctx)

	events := make(chan struct{}, 1)
	if err := hotkey.NewSignal().Register(ctx, events); err != nil {
		slog.Warn("global hotkey unavailable, use 'clipvault show' manually", "error", err)
	}

	service := retrieval.New(c.histStore, c.device, c.injector(), retrieval.Config{})
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
			if !logging.IsTTY(os.Stdout) {
				slog.Info("hotkey activation received, run 'clipvault show' to browse")
				continue
			}
			if err := tui.Run(service); err != nil {
				slog.Error("history browser failed", "error", err)
			}
		}
	}
}

func (c *CLI) executeShow() error {
	service := retrieval.New(c.histStore, c.device, c.injector(), retrieval.Config{})
	return tui.Run(service)
}

func (c *CLI) executeSearch(cmd *SearchCmd) error {
	arch, err := archive.Open(c.vault.ArchivePath())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer arch.Close()

	results, err := arch.Search(cmd.Pattern, cmd.Limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("[%s] %-5s %s\n", r.Timestamp.Format("2006-01-02 15:04:05"), r.Kind, r.Preview)
	}
	return nil
}

func (c *CLI) executeClear() error {
	n := c.histStore.Len()
	c.histStore.Clear()
	fmt.Printf("Cleared %d entries.\n", n)
	return nil
}

func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Key == nil:
		values, err := c.cfgManager.List()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %s\n", k, values[k])
		}
		return nil
	case cmd.Value == nil:
		value, err := c.cfgManager.Get(*cmd.Key)
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	default:
		if err := c.cfgManager.Update(*cmd.Key, *cmd.Value); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", *cmd.Key, *cmd.Value)
		return nil
	}
}

// injector returns the synthetic-paste collaborator, or nil when auto-paste
// is disabled or unsupported (commit then leaves content for manual paste).
func (c *CLI) injector() input.Injector {
	if !c.cfg.AutoPaste {
		return nil
	}
	sys := input.NewSystem()
	if !sys.IsSupported() {
		slog.Debug("no keystroke injection command found, auto-paste disabled")
		return nil
	}
	return sys
}
