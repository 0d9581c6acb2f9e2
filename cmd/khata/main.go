// Command khata is a local-first personal finance ledger.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mahadsiddiqui/khata/pkg/app"
	"github.com/mahadsiddiqui/khata/pkg/config"
	"github.com/mahadsiddiqui/khata/pkg/logging"
	"github.com/mahadsiddiqui/khata/pkg/notify"
)

const defaultConfigFile = "config.json"

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	configPath := os.Getenv("KHATA_CONFIG")
	if configPath == "" {
		configPath = defaultConfigFile
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("creating data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		err = runAdd(cfg, logger, os.Args[2:])
	case "list":
		err = runList(cfg, logger, os.Args[2:])
	case "summary":
		err = runSummary(cfg, logger, os.Args[2:])
	case "export":
		err = runExport(cfg, logger, os.Args[2:])
	case "import":
		err = runImport(cfg, logger, os.Args[2:])
	case "status":
		err = runStatus(cfg)
	case "run":
		err = runDaemon(cfg, logger)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// newApp builds the application service with the desktop sender when one
// is available.
func newApp(cfg config.Config, logger *slog.Logger) *app.App {
	var sender notify.Sender
	if ds := notify.NewDesktopSender(); ds != nil {
		sender = ds
	}
	return app.New(cfg.DataDir, sender, logger)
}

func printUsage() {
	fmt.Println(`khata - personal finance ledger

Usage:
  khata <command> [flags]

Commands:
  add      Record an income or expense transaction
  list     List recorded transactions
  summary  Show per-currency totals and category breakdown
  export   Export the ledger to a JSON or CSV file
  import   Replace the ledger from a JSON export
  status   Check the health of the local data stores
  run      Run the background schedulers (auto-export, reminders)
  help     Show this help

Environment:
  KHATA_CONFIG     Path to the JSON config file (default config.json)
  KHATA_DATA_DIR   Data directory (default data)
  KHATA_LOG_LEVEL  DEBUG, INFO, WARN, ERROR (default INFO)`)
}
