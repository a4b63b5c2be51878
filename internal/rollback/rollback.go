// Package rollback runs the remediation command behind a cooldown guard.
package rollback

import (
	"log/slog"
	"os/exec"
	"time"

	"github.com/jy02140251/deploy-watcher/internal/config"
)

// Engine launches the configured rollback command, enforcing a minimum
// cooldown between invocations. Execute never returns an error: every
// fault becomes a false return plus a log entry.
type Engine struct {
	enabled  bool
	command  string
	cooldown time.Duration
	logger   *slog.Logger

	lastRun time.Time // zero until the first invocation
	now     func() time.Time
}

// New creates an Engine from the rollback config.
func New(cfg config.Rollback, logger *slog.Logger) *Engine {
	return &Engine{
		enabled:  cfg.Enabled,
		command:  cfg.Command,
		cooldown: cfg.CooldownDuration(),
		logger:   logger,
		now:      time.Now,
	}
}

// Execute runs the rollback command once, if enabled and out of cooldown,
// and reports whether it ran and exited zero.
//
// The last-invocation timestamp is recorded when the wait completes, before
// the exit code is inspected, so a failed rollback still consumes a full
// cooldown window. The command runs without a deadline and blocks the
// caller until it finishes.
func (e *Engine) Execute() bool {
	if !e.enabled || e.command == "" {
		return false
	}

	if !e.lastRun.IsZero() {
		if elapsed := e.now().Sub(e.lastRun); elapsed < e.cooldown {
			e.logger.Warn("rollback on cooldown",
				"remaining", (e.cooldown - elapsed).Round(time.Second))
			return false
		}
	}

	e.logger.Warn("executing rollback", "command", e.command)

	out, err := exec.Command("sh", "-c", e.command).CombinedOutput()
	e.lastRun = e.now()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			e.logger.Error("rollback failed",
				"exit_code", exitErr.ExitCode(), "output", string(out))
		} else {
			e.logger.Error("rollback error", "error", err)
		}
		return false
	}

	e.logger.Info("rollback succeeded")
	return true
}
