// Package app wires the ledger store and its satellite records together
// the way the UI drives them: every user action mutates the in-memory
// ledger, saves it whole, and fans out to usage tracking and the
// notification log as independent side effects.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mahadsiddiqui/khata/pkg/codec"
	"github.com/mahadsiddiqui/khata/pkg/ledger"
	"github.com/mahadsiddiqui/khata/pkg/notify"
	"github.com/mahadsiddiqui/khata/pkg/storage"
	"github.com/mahadsiddiqui/khata/pkg/usage"
)

// ErrTransactionNotFound is returned by edit and delete when no entry
// matches the given ID.
var ErrTransactionNotFound = errors.New("transaction not found")

// Satellite record file names under the data directory.
const (
	NotificationsFile        = "notifications.json"
	NotificationSettingsFile = "notification-settings.json"
	UsageFile                = "usage.json"
)

// App is the application service over one data directory.
type App struct {
	store    *storage.Store
	ledger   *ledger.Ledger
	log      *notify.Log
	settings *notify.SettingsStore
	tracker  *usage.Tracker
	logger   *slog.Logger
}

// New loads the ledger and satellite records from dir and opens a
// session. sender may be nil.
func New(dir string, sender notify.Sender, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	store := storage.New(dir, logger.With("component", "storage"))
	a := &App{
		store:    store,
		ledger:   store.Load(),
		log:      notify.NewLog(filepath.Join(dir, NotificationsFile), sender, logger.With("component", "notify")),
		settings: notify.NewSettingsStore(filepath.Join(dir, NotificationSettingsFile), logger.With("component", "notify")),
		tracker:  usage.NewTracker(filepath.Join(dir, UsageFile), logger.With("component", "usage")),
		logger:   logger,
	}
	a.tracker.InitSession()
	return a
}

// Ledger returns a copy of the current ledger.
func (a *App) Ledger() *ledger.Ledger {
	return a.ledger.Clone()
}

// Notifications returns the notification log.
func (a *App) Notifications() *notify.Log { return a.log }

// Settings returns the notification settings store.
func (a *App) Settings() *notify.SettingsStore { return a.settings }

// Usage returns the usage tracker.
func (a *App) Usage() *usage.Tracker { return a.tracker }

// Load implements autoexport.Source by re-reading the persisted ledger,
// so a long-running exporter picks up writes made by other processes.
func (a *App) Load() *ledger.Ledger { return a.store.Load() }

// AddTransaction records a new transaction, generating an ID when the
// caller supplied none.
func (a *App) AddTransaction(t ledger.Transaction) (ledger.Transaction, error) {
	if t.ID == "" {
		t.ID = ledger.NewID()
	}
	a.ledger.Add(t)
	err := a.save()
	a.tracker.Record(usage.KindAdd)
	a.notifyTransaction("Transaction added",
		fmt.Sprintf("%s of %s %.2f in %s recorded.", t.Type, t.Currency, t.Amount, t.Category))
	return t, err
}

// EditTransaction replaces the entry with the same ID.
func (a *App) EditTransaction(t ledger.Transaction) error {
	if !a.ledger.Replace(t) {
		return ErrTransactionNotFound
	}
	err := a.save()
	a.tracker.Record(usage.KindEdit)
	a.notifyTransaction("Transaction updated", "Your changes were saved.")
	return err
}

// DeleteTransaction removes the entry with the given ID.
func (a *App) DeleteTransaction(id string) error {
	if !a.ledger.Remove(id) {
		return ErrTransactionNotFound
	}
	err := a.save()
	a.tracker.Record(usage.KindDelete)
	a.notifyTransaction("Transaction deleted", "The entry was removed.")
	return err
}

// AddCategory appends a category. Duplicates are tolerated.
func (a *App) AddCategory(c ledger.Category) error {
	a.ledger.AddCategory(c)
	return a.save()
}

// ExportJSON serializes the full ledger and returns the payload with its
// dated file name.
func (a *App) ExportJSON() ([]byte, string, error) {
	data, err := codec.EncodeJSON(a.ledger)
	if err != nil {
		return nil, "", err
	}
	a.tracker.Record(usage.KindExport)
	return data, codec.ExportFileName(codec.FormatJSON, time.Now()), nil
}

// ExportCSV serializes the transactions and returns the payload with its
// dated file name.
func (a *App) ExportCSV() ([]byte, string) {
	data := codec.EncodeCSV(a.ledger)
	a.tracker.Record(usage.KindExport)
	return data, codec.ExportFileName(codec.FormatCSV, time.Now())
}

// ImportJSON replaces the whole ledger with the decoded payload. An
// invalid payload is rejected with a warning notification and leaves the
// ledger untouched.
func (a *App) ImportJSON(data []byte) error {
	l, err := codec.Decode(data)
	if err != nil {
		a.logger.Warn("import rejected", "error", err)
		a.log.Append("Import failed",
			"The selected file is not a valid export. Your data was not changed.",
			notify.TypeWarning)
		return err
	}

	a.ledger = l
	saveErr := a.save()
	a.tracker.Record(usage.KindImport)
	a.log.Append("Data imported",
		fmt.Sprintf("Imported %d transactions and %d categories.",
			len(l.Transactions), len(l.Categories)),
		notify.TypeSuccess)
	return saveErr
}

// save persists the whole ledger and surfaces degraded durability as a
// warning notification. Invalid-ledger saves are logged by the store and
// abandoned; they only become user-visible if a later load comes up empty.
func (a *App) save() error {
	err := a.store.Save(a.ledger)
	if errors.Is(err, storage.ErrDurabilityDegraded) {
		a.log.Append("Storage warning",
			"Your data could not be written to disk and lives in memory only. Export it to avoid losing recent changes.",
			notify.TypeWarning)
	}
	return err
}

func (a *App) notifyTransaction(title, message string) {
	if !a.settings.Get().TransactionNotifications {
		return
	}
	a.log.Append(title, message, notify.TypeSuccess)
}
