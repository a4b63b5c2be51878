package rollback

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jy02140251/deploy-watcher/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// markerCommand appends a line to a file so tests can count invocations.
func markerCommand(t *testing.T) (command, marker string) {
	t.Helper()
	marker = filepath.Join(t.TempDir(), "ran")
	return "echo x >> " + marker, marker
}

func invocations(t *testing.T, marker string) int {
	t.Helper()
	data, err := os.ReadFile(marker)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Count(string(data), "x")
}

func TestExecute_Disabled(t *testing.T) {
	command, marker := markerCommand(t)
	e := New(config.Rollback{Enabled: false, Command: command, Cooldown: 1}, discard())

	if e.Execute() {
		t.Error("disabled engine returned true")
	}
	if n := invocations(t, marker); n != 0 {
		t.Errorf("invocations = %d, want 0", n)
	}
}

func TestExecute_NoCommand(t *testing.T) {
	e := New(config.Rollback{Enabled: true, Cooldown: 1}, discard())
	if e.Execute() {
		t.Error("engine without command returned true")
	}
}

func TestExecute_Success(t *testing.T) {
	command, marker := markerCommand(t)
	e := New(config.Rollback{Enabled: true, Command: command, Cooldown: 300}, discard())

	if !e.Execute() {
		t.Fatal("expected successful rollback")
	}
	if n := invocations(t, marker); n != 1 {
		t.Errorf("invocations = %d, want 1", n)
	}
}

func TestExecute_NonZeroExit(t *testing.T) {
	e := New(config.Rollback{Enabled: true, Command: "exit 3", Cooldown: 300}, discard())
	if e.Execute() {
		t.Error("failing command returned true")
	}
	if e.lastRun.IsZero() {
		t.Error("failed invocation must still stamp the cooldown")
	}
}

func TestExecute_Cooldown(t *testing.T) {
	command, marker := markerCommand(t)
	e := New(config.Rollback{Enabled: true, Command: command, Cooldown: 300}, discard())

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }

	if !e.Execute() {
		t.Fatal("first invocation should run")
	}

	clock = clock.Add(299 * time.Second)
	if e.Execute() {
		t.Error("invocation within cooldown returned true")
	}
	if n := invocations(t, marker); n != 1 {
		t.Errorf("invocations = %d, want 1 (cooldown must not launch)", n)
	}

	clock = clock.Add(2 * time.Second)
	if !e.Execute() {
		t.Error("invocation after cooldown should run")
	}
	if n := invocations(t, marker); n != 2 {
		t.Errorf("invocations = %d, want 2", n)
	}
}

func TestExecute_FailureConsumesCooldown(t *testing.T) {
	e := New(config.Rollback{Enabled: true, Command: "exit 1", Cooldown: 300}, discard())

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }

	if e.Execute() {
		t.Fatal("failing command returned true")
	}

	// Swap in a command that would succeed; the cooldown from the failed
	// run must still suppress it.
	command, marker := markerCommand(t)
	e.command = command

	clock = clock.Add(10 * time.Second)
	if e.Execute() {
		t.Error("invocation within cooldown returned true")
	}
	if n := invocations(t, marker); n != 0 {
		t.Errorf("invocations = %d, want 0", n)
	}
}
