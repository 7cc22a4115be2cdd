// Package hotkey delivers global-activation events to the foreground loop.
//
// Registration mechanics are owned by the desktop environment, not by
// clipvault: the daemon listens for SIGUSR1, and the user binds a system
// hotkey to `pkill -USR1 clipvault` (or equivalent). The OS signal handler
// runs outside the foreground context, so activations are posted onto a
// channel and never touch view state directly.
package hotkey

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Registrar posts one event per hotkey activation onto events.
type Registrar interface {
	// Register starts delivering activation events until ctx is canceled.
	// A non-nil error means no hotkey is available; callers degrade to
	// manual invocation, never fail startup over it.
	Register(ctx context.Context, events chan<- struct{}) error
}

// Signal is a Registrar driven by SIGUSR1.
type Signal struct{}

// NewSignal creates a signal-based registrar.
func NewSignal() *Signal {
	return &Signal{}
}

// Register implements Registrar.
func (s *Signal) Register(ctx context.Context, events chan<- struct{}) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				select {
				case events <- struct{}{}:
				default: // activation already pending
				}
			}
		}
	}()
	return nil
}

// Noop is a Registrar that never fires. Used on platforms without signal
// support and in tests.
type Noop struct{}

// Register implements Registrar.
func (Noop) Register(ctx context.Context, events chan<- struct{}) error {
	return nil
}
