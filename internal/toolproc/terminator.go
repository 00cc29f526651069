package toolproc

import (
	"fmt"
	"log/slog"

	"toolbox/internal/logging"
)

// Terminator kills tool process trees on cancellation.
//
// Termination is fire-once: the kill is attempted a single time with no
// escalation or grace period, and failures are logged rather than returned
// as job errors. A process that ignores the signal is left to the operating
// system.
type Terminator struct {
	logger *slog.Logger
	kill   func(pid int) error
}

// TerminatorOption configures a Terminator.
type TerminatorOption func(*Terminator)

// WithKillFunc overrides the kill syscall (primarily for tests).
func WithKillFunc(kill func(pid int) error) TerminatorOption {
	return func(t *Terminator) {
		if kill != nil {
			t.kill = kill
		}
	}
}

// NewTerminator constructs a Terminator.
func NewTerminator(logger *slog.Logger, opts ...TerminatorOption) *Terminator {
	if logger == nil {
		logger = logging.NewNop()
	}
	t := &Terminator{
		logger: logging.WithComponent(logger, "toolproc"),
		kill:   killTree,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Terminate kills the process identified by proc, if its pid is known.
// Returns an error only so callers can log it; termination failure never
// fails the surrounding operation.
func (t *Terminator) Terminate(proc Process) error {
	if proc == nil {
		return nil
	}
	pid, ok := proc.PID()
	if !ok {
		t.logger.Warn("terminate skipped, pid unknown")
		return nil
	}
	if err := t.kill(pid); err != nil {
		t.logger.Warn("terminate failed", logging.Int("pid", pid), logging.Error(err))
		return fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	t.logger.Info("process terminated", logging.Int("pid", pid))
	return nil
}
