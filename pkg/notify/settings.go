package notify

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// Settings gates which events produce notifications and which reminders
// are scheduled. Independent of the ledger.
type Settings struct {
	WeeklyReminders          bool `json:"weeklyReminders"`
	MonthlyReminders         bool `json:"monthlyReminders"`
	TransactionNotifications bool `json:"transactionNotifications"`
}

// DefaultSettings enables everything.
func DefaultSettings() Settings {
	return Settings{
		WeeklyReminders:          true,
		MonthlyReminders:         true,
		TransactionNotifications: true,
	}
}

// SettingsStore holds the persisted settings record and notifies
// subscribers on every change, so consumers reschedule instead of
// re-reading on a timer.
type SettingsStore struct {
	mu     sync.Mutex
	path   string
	s      Settings
	subs   []func(Settings)
	logger *slog.Logger
}

// NewSettingsStore opens the settings record at path, falling back to the
// defaults when it is absent or unreadable.
func NewSettingsStore(path string, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	st := &SettingsStore{path: path, s: DefaultSettings(), logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case err == nil && len(data) > 0:
		if uerr := json.Unmarshal(data, &st.s); uerr != nil {
			logger.Warn("notification settings unreadable, using defaults", "error", uerr)
			st.s = DefaultSettings()
		}
	case err != nil && !os.IsNotExist(err):
		logger.Warn("could not read notification settings", "error", err)
	}
	return st
}

// Get returns the current settings.
func (st *SettingsStore) Get() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Set replaces the settings, persists them, and notifies subscribers.
func (st *SettingsStore) Set(s Settings) {
	st.mu.Lock()
	st.s = s
	data, err := json.MarshalIndent(&s, "", "  ")
	if err == nil {
		if werr := os.WriteFile(st.path, data, 0o600); werr != nil {
			st.logger.Warn("writing notification settings failed", "error", werr)
		}
	}
	subs := make([]func(Settings), len(st.subs))
	copy(subs, st.subs)
	st.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// Subscribe registers fn to run on every settings change.
func (st *SettingsStore) Subscribe(fn func(Settings)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subs = append(st.subs, fn)
}
