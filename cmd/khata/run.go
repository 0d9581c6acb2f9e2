package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mahadsiddiqui/khata/pkg/autoexport"
	"github.com/mahadsiddiqui/khata/pkg/codec"
	"github.com/mahadsiddiqui/khata/pkg/config"
	"github.com/mahadsiddiqui/khata/pkg/notify"
)

const autoExportSettingsFile = "auto-export-settings.json"

// runDaemon keeps the background schedulers running: the auto-export
// safety net and the reminder scheduler.
func runDaemon(cfg config.Config, logger *slog.Logger) error {
	a := newApp(cfg, logger)

	exporter := autoexport.New(autoexport.Config{
		SettingsPath: filepath.Join(cfg.DataDir, autoExportSettingsFile),
		ExportDir:    cfg.ExportDir,
	}, a, logger.With("component", "autoexport"))
	applyAutoExportOverrides(exporter, cfg.AutoExport)

	reminders := notify.NewScheduler(a.Notifications(), a.Settings(),
		logger.With("component", "reminders"))

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	exporterDone := make(chan error, 1)
	go func() {
		exporterDone <- exporter.Run(ctx)
	}()

	logger.Info("khata daemon started")
	if err := reminders.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("reminder scheduler error", "error", err)
	}

	if err := <-exporterDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("auto-export scheduler error", "error", err)
	}

	logger.Info("khata daemon stopped")
	return nil
}

// applyAutoExportOverrides lets the environment/config file adjust the
// persisted auto-export settings at daemon start.
func applyAutoExportOverrides(exporter *autoexport.Scheduler, o config.AutoExportConfig) {
	st := exporter.Settings()
	changed := false

	if o.Disabled && st.Enabled {
		st.Enabled = false
		changed = true
	}
	if o.IntervalHours > 0 {
		ms := (time.Duration(o.IntervalHours) * time.Hour).Milliseconds()
		if st.IntervalMs != ms {
			st.IntervalMs = ms
			changed = true
		}
	}
	if o.Format != "" && st.Format != codec.Format(o.Format) {
		st.Format = codec.Format(o.Format)
		changed = true
	}

	if changed {
		exporter.SetSettings(st)
	}
}
