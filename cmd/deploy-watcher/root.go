package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jy02140251/deploy-watcher/internal/config"
	"github.com/jy02140251/deploy-watcher/internal/display"
	"github.com/jy02140251/deploy-watcher/internal/notify"
	"github.com/jy02140251/deploy-watcher/internal/probe"
	"github.com/jy02140251/deploy-watcher/internal/rollback"
	"github.com/jy02140251/deploy-watcher/internal/watcher"
)

var (
	cfgFile string
	verbose bool
	once    bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "deploy-watcher",
	Short: "Post-deployment health monitor",
	Long: "deploy-watcher probes deployed services on an interval, escalates to " +
		"notification sinks after consecutive failures, and can trigger a " +
		"cooldown-guarded rollback command.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to config YAML")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print cycle results")
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single check cycle and exit")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate config, list services, and exit")
	_ = rootCmd.MarkFlagRequired("config")
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger(verbose)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("Config valid - %d services configured\n", len(cfg.Services))
		for _, svc := range cfg.Services {
			fmt.Printf("  - %s: %s %s\n", svc.Name, svc.Method, svc.URL)
		}
		return nil
	}

	prober := probe.New(cfg.Global.ProbeTimeout())
	notifier, err := notify.New(cfg.Notifications, logger)
	if err != nil {
		return err
	}
	engine := rollback.New(cfg.Rollback, logger)

	w := watcher.New(cfg, prober, notifier, engine, logger)
	w.OnClose(prober.Close)
	w.OnClose(notifier.Close)

	renderer := display.New(os.Stdout)

	if once {
		w.Render = renderer.Render
		results := w.RunOnce(context.Background())
		w.Close()

		failed := 0
		for _, r := range results {
			if r.Status != probe.StatusHealthy {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d services are not healthy", failed, len(results))
		}
		return nil
	}

	if verbose {
		w.Render = renderer.Render
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
