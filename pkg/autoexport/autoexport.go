// Package autoexport periodically writes a full export of the ledger as a
// safety net against loss of the local stores.
package autoexport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"

	"github.com/mahadsiddiqui/khata/pkg/codec"
	"github.com/mahadsiddiqui/khata/pkg/ledger"
)

// DefaultInterval is the export cadence when none is configured.
const DefaultInterval = 7 * 24 * time.Hour

// DefaultCheckInterval is how often the running scheduler re-evaluates
// whether an export is due.
const DefaultCheckInterval = time.Hour

// DefaultStartDelay is how long after startup the first due-check runs,
// to catch an overdue export.
const DefaultStartDelay = 10 * time.Second

// Settings is the persisted auto-export record. Whether an export is due
// is always derived from LastExport and IntervalMs, never stored.
type Settings struct {
	Enabled    bool         `json:"enabled"`
	LastExport time.Time    `json:"lastExportTimestamp"`
	IntervalMs int64        `json:"intervalMs"`
	Format     codec.Format `json:"format"`
}

// Interval returns the configured export interval, defaulted when unset.
func (s Settings) Interval() time.Duration {
	if s.IntervalMs <= 0 {
		return DefaultInterval
	}
	return time.Duration(s.IntervalMs) * time.Millisecond
}

// DefaultSettings enables weekly JSON exports.
func DefaultSettings() Settings {
	return Settings{
		Enabled:    true,
		IntervalMs: DefaultInterval.Milliseconds(),
		Format:     codec.FormatJSON,
	}
}

// Source supplies the ledger to export.
type Source interface {
	Load() *ledger.Ledger
}

// Config holds scheduler construction options.
type Config struct {
	// SettingsPath is the persisted settings record.
	SettingsPath string
	// ExportDir receives the dated export files.
	ExportDir string
	// CheckInterval overrides the due-check cadence.
	CheckInterval time.Duration
	// StartDelay overrides the delay before the first due-check.
	StartDelay time.Duration
	// Now overrides the clock.
	Now func() time.Time
}

// Scheduler owns the auto-export settings and the periodic due-checks.
type Scheduler struct {
	mu       sync.Mutex
	settings Settings

	path       string
	dir        string
	checkEvery time.Duration
	startDelay time.Duration
	source     Source
	logger     *slog.Logger
	now        func() time.Time
}

// New opens the settings record and builds a scheduler over source.
func New(cfg Config, source Source, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = DefaultStartDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Scheduler{
		settings:   DefaultSettings(),
		path:       cfg.SettingsPath,
		dir:        cfg.ExportDir,
		checkEvery: cfg.CheckInterval,
		startDelay: cfg.StartDelay,
		source:     source,
		logger:     logger,
		now:        cfg.Now,
	}

	data, err := os.ReadFile(cfg.SettingsPath)
	switch {
	case err == nil && len(data) > 0:
		if uerr := json.Unmarshal(data, &s.settings); uerr != nil {
			logger.Warn("auto-export settings unreadable, using defaults", "error", uerr)
			s.settings = DefaultSettings()
		}
	case err != nil && !os.IsNotExist(err):
		logger.Warn("could not read auto-export settings", "error", err)
	}
	return s
}

// Settings returns the current settings record.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces and persists the settings record.
func (s *Scheduler) SetSettings(st Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
	s.persistLocked()
}

// ShouldExport reports whether an export is due: enabled, and either no
// export recorded yet or the interval has elapsed since the last one.
func (s *Scheduler) ShouldExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.settings.Enabled {
		return false
	}
	if s.settings.LastExport.IsZero() {
		return true
	}
	return s.now().Sub(s.settings.LastExport) >= s.settings.Interval()
}

// TriggerExport serializes the ledger per the configured format and
// writes it as a dated file in the export directory. The last-export
// timestamp advances only on success, so a failed export is retried at
// the next due-check.
func (s *Scheduler) TriggerExport(l *ledger.Ledger) error {
	s.mu.Lock()
	format := s.settings.Format
	s.mu.Unlock()
	if format == "" {
		format = codec.FormatJSON
	}

	data, err := codec.Encode(l, format)
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	name := codec.ExportFileName(format, s.now())
	if err := s.writeFile(filepath.Join(s.dir, name), data); err != nil {
		return fmt.Errorf("writing export %s: %w", name, err)
	}

	s.mu.Lock()
	s.settings.LastExport = s.now()
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("auto-export written",
		"file", name,
		"transactions", len(l.Transactions),
	)
	return nil
}

// writeFile lands the export through a temp file so a half-written export
// never replaces a good one. Transient filesystem errors get one retry.
func (s *Scheduler) writeFile(path string, data []byte) error {
	return retry.Do(
		func() error {
			if err := os.MkdirAll(s.dir, 0o755); err != nil {
				return err
			}
			tmp := path + "." + uuid.New().String() + ".tmp"
			if err := os.WriteFile(tmp, data, 0o600); err != nil {
				return err
			}
			if err := os.Rename(tmp, path); err != nil {
				_ = os.Remove(tmp)
				return err
			}
			return nil
		},
		retry.Attempts(2),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
}

// Run performs one due-check shortly after start, then keeps checking on
// a fixed cadence until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("auto-export scheduler started",
		"check_interval", s.checkEvery,
	)

	start := time.NewTimer(s.startDelay)
	defer start.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-start.C:
		s.check()
	}

	ticker := time.NewTicker(s.checkEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("auto-export scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *Scheduler) check() {
	if !s.ShouldExport() {
		return
	}
	if err := s.TriggerExport(s.source.Load()); err != nil {
		s.logger.Error("auto-export failed, will retry at next check", "error", err)
	}
}

func (s *Scheduler) persistLocked() {
	data, err := json.MarshalIndent(&s.settings, "", "  ")
	if err != nil {
		s.logger.Warn("marshaling auto-export settings failed", "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.logger.Warn("writing auto-export settings failed", "error", err)
	}
}
