package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mahadsiddiqui/khata/pkg/app"
	"github.com/mahadsiddiqui/khata/pkg/autoexport"
	"github.com/mahadsiddiqui/khata/pkg/config"
	"github.com/mahadsiddiqui/khata/pkg/ledger"
	"github.com/mahadsiddiqui/khata/pkg/notify"
	"github.com/mahadsiddiqui/khata/pkg/storage"
	"github.com/mahadsiddiqui/khata/pkg/usage"
)

// runStatus reports the health of every persisted record.
func runStatus(cfg config.Config) error {
	fmt.Println("=== Khata Status ===")
	fmt.Println()

	allGood := true

	fmt.Printf("Data directory (%s): ", cfg.DataDir)
	if info, err := os.Stat(cfg.DataDir); err != nil || !info.IsDir() {
		fmt.Println("✗ Not found")
		return nil
	}
	fmt.Println("✓ Found")

	checkLedgerRecord(cfg.DataDir, &allGood)
	checkSatelliteRecords(cfg.DataDir, &allGood)

	fmt.Println()
	if allGood {
		fmt.Println("Status: ✓ All records healthy")
	} else {
		fmt.Println("Status: ⚠ Some records missing or unreadable (load will fall back)")
	}
	return nil
}

func checkLedgerRecord(dir string, allGood *bool) {
	fmt.Print("Primary ledger: ")
	if l, err := readLedgerFile(filepath.Join(dir, storage.PrimaryFile)); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
	} else {
		fmt.Printf("✓ %d transactions, %d categories\n",
			len(l.Transactions), len(l.Categories))
	}

	fmt.Print("Backup copy: ")
	backup := storage.NewBackupBackend(filepath.Join(dir, storage.BackupFile))
	if l, err := backup.Read(); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
	} else {
		fmt.Printf("✓ %d transactions\n", len(l.Transactions))
	}

	fmt.Print("Metadata record: ")
	if _, err := os.Stat(filepath.Join(dir, storage.MetaFile)); err != nil {
		fmt.Println("✗ Not found")
		*allGood = false
	} else {
		fmt.Println("✓ Found")
	}
}

func checkSatelliteRecords(dir string, allGood *bool) {
	fmt.Print("Notification log: ")
	var entries []notify.Notification
	if err := readJSONFile(filepath.Join(dir, app.NotificationsFile), &entries); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
	} else {
		unread := 0
		for _, n := range entries {
			if !n.Read {
				unread++
			}
		}
		fmt.Printf("✓ %d entries (%d unread)\n", len(entries), unread)
	}

	fmt.Print("Usage record: ")
	var rec usage.Record
	if err := readJSONFile(filepath.Join(dir, app.UsageFile), &rec); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
	} else {
		fmt.Printf("✓ %d sessions, last activity %s\n",
			rec.TotalSessions, rec.LastActivity.Format(time.RFC3339))
	}

	fmt.Print("Auto-export: ")
	var st autoexport.Settings
	if err := readJSONFile(filepath.Join(dir, autoExportSettingsFile), &st); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
	} else if !st.Enabled {
		fmt.Println("✓ Disabled")
	} else if st.LastExport.IsZero() {
		fmt.Println("⚠ Enabled, never exported")
	} else {
		fmt.Printf("✓ Last export %s\n", st.LastExport.Format(time.RFC3339))
	}
}

func readLedgerFile(path string) (*ledger.Ledger, error) {
	var l ledger.Ledger
	if err := readJSONFile(path, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("not found")
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON")
	}
	return nil
}
