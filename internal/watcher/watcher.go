// Package watcher drives the polling loop and the per-service escalation
// state machine.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jy02140251/deploy-watcher/internal/config"
	"github.com/jy02140251/deploy-watcher/internal/notify"
	"github.com/jy02140251/deploy-watcher/internal/probe"
)

// Prober issues one health probe against one service.
type Prober interface {
	Check(ctx context.Context, svc config.Service) probe.Result
}

// Alerter fans a notification out to the configured sinks.
type Alerter interface {
	Notify(ctx context.Context, message string, results []probe.Result) []notify.Outcome
}

// Remediator runs the guarded rollback action.
type Remediator interface {
	Execute() bool
}

// Renderer displays one cycle's results.
type Renderer func(results []probe.Result)

// Watcher holds the per-service failure counters and drives probe cycles.
// Counters are mutated only on the single control path inside RunOnce, so
// no locking is needed.
type Watcher struct {
	services  []config.Service
	prober    Prober
	notifier  Alerter
	rollback  Remediator
	threshold int
	interval  time.Duration
	schedule  string
	logger    *slog.Logger

	// Render, when set, is called with each cycle's results.
	Render Renderer

	failures  map[string]int // consecutive Down count per service
	closers   []func()
	closeOnce sync.Once
}

// New creates a Watcher over the configured services.
func New(cfg *config.Config, prober Prober, alerter Alerter, remediator Remediator, logger *slog.Logger) *Watcher {
	return &Watcher{
		services:  cfg.Services,
		prober:    prober,
		notifier:  alerter,
		rollback:  remediator,
		threshold: cfg.Global.FailureThreshold,
		interval:  cfg.Global.Interval(),
		schedule:  cfg.Global.CheckSchedule,
		logger:    logger,
		failures:  make(map[string]int),
	}
}

// OnClose registers a cleanup func to run when the watcher shuts down.
func (w *Watcher) OnClose(fn func()) {
	w.closers = append(w.closers, fn)
}

// Close releases registered resources. Only the first call has effect.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		for _, fn := range w.closers {
			fn()
		}
	})
}

// CheckAll probes every service concurrently and returns the results in
// service-declaration order. The cycle completes when the slowest probe
// resolves; each probe is bounded by its own timeout.
func (w *Watcher) CheckAll(ctx context.Context) []probe.Result {
	results := make([]probe.Result, len(w.services))

	var wg sync.WaitGroup
	for i, svc := range w.services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = w.prober.Check(ctx, svc)
		}()
	}
	wg.Wait()

	return results
}

// RunOnce performs one cycle: probe all services, render, then fold the
// results into the failure counters in declaration order. A service at or
// above the threshold escalates every cycle it stays Down — notify first,
// then rollback, one service at a time; the rollback cooldown is the only
// thing gating repeated remediation.
func (w *Watcher) RunOnce(ctx context.Context) []probe.Result {
	results := w.CheckAll(ctx)

	if w.Render != nil {
		w.Render(results)
	}

	for _, r := range results {
		switch r.Status {
		case probe.StatusDown:
			w.failures[r.Service]++
			count := w.failures[r.Service]
			w.logger.Warn("service down",
				"service", r.Service, "consecutive_failures", count, "error", r.Err)
			if count >= w.threshold {
				w.notifier.Notify(ctx, "Service DOWN: "+r.Service, results)
				w.rollback.Execute()
			}
		case probe.StatusHealthy, probe.StatusDegraded, probe.StatusUnknown:
			w.failures[r.Service] = 0
		}
	}

	return results
}

// Run loops RunOnce on the configured interval (or cron schedule) until ctx
// is cancelled. A cycle in flight always completes; cancellation is only
// observed between cycles. Registered closers run on every exit path.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	w.logger.Info("deploy-watcher started",
		"services", len(w.services), "interval", w.interval)

	// Cycles must not be aborted mid-flight by the stop signal.
	cycleCtx := context.WithoutCancel(ctx)

	if w.schedule != "" {
		return w.runCron(ctx, cycleCtx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(cycleCtx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutting down")
			return nil
		case <-ticker.C:
			w.RunOnce(cycleCtx)
		}
	}
}

func (w *Watcher) runCron(ctx, cycleCtx context.Context) error {
	// The failure counters have exactly one writer, so a schedule fire
	// that lands while a cycle is still running is skipped.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(cycleCtx) }); err != nil {
		return fmt.Errorf("parsing check_schedule: %w", err)
	}

	w.RunOnce(cycleCtx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	w.logger.Info("shutting down")
	return nil
}
