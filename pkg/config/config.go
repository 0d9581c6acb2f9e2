// Package config loads the application configuration from an optional
// JSON file and environment variables, the latter winning.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultDataDir holds every persisted record when no directory is
// configured.
const DefaultDataDir = "data"

// Config holds the application configuration.
type Config struct {
	// DataDir is the directory holding all persisted records.
	// Environment variable: KHATA_DATA_DIR
	DataDir string `koanf:"KHATA_DATA_DIR"`

	// ExportDir receives exported files. Defaults to DataDir/exports.
	// Environment variable: KHATA_EXPORT_DIR
	ExportDir string `koanf:"KHATA_EXPORT_DIR"`

	AutoExport AutoExportConfig
}

// AutoExportConfig overrides the persisted auto-export settings at
// daemon start.
type AutoExportConfig struct {
	// Disabled turns the periodic safety-net export off.
	// Environment variable: KHATA_AUTO_EXPORT_DISABLED
	Disabled bool `koanf:"KHATA_AUTO_EXPORT_DISABLED"`

	// IntervalHours is the export cadence. Zero keeps the default (7 days).
	// Environment variable: KHATA_AUTO_EXPORT_INTERVAL_HOURS
	IntervalHours int `koanf:"KHATA_AUTO_EXPORT_INTERVAL_HOURS"`

	// Format is "json" or "csv". Empty keeps the default (json).
	// Environment variable: KHATA_AUTO_EXPORT_FORMAT
	Format string `koanf:"KHATA_AUTO_EXPORT_FORMAT"`
}

// Load reads the optional config file at path, then applies environment
// overrides and defaults.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
				return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}

	cfg := Config{DataDir: DefaultDataDir}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(cfg.DataDir, "exports")
	}
	return cfg, nil
}
