// Package usage records counts of user actions and session boundaries
// into its own persisted record. Purely additive; never reconciled.
package usage

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

// Kind names one of the tracked user actions.
type Kind string

const (
	KindAdd    Kind = "add"
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
	KindExport Kind = "export"
	KindImport Kind = "import"
)

// SessionGap is the idle time after which a new application start counts
// as a new session rather than a continuation.
const SessionGap = 30 * time.Minute

// Record is the persisted usage state.
type Record struct {
	SessionStart        time.Time      `json:"sessionStart"`
	TotalSessions       int            `json:"totalSessions"`
	TransactionsAdded   int            `json:"transactionsAdded"`
	TransactionsEdited  int            `json:"transactionsEdited"`
	TransactionsDeleted int            `json:"transactionsDeleted"`
	ExportsPerformed    int            `json:"exportsPerformed"`
	ImportsPerformed    int            `json:"importsPerformed"`
	LastActivity        time.Time      `json:"lastActivity"`
	DailyUsage          map[string]int `json:"dailyUsage"`
}

// Stats are derived from the record; never persisted.
type Stats struct {
	TotalActivity int
	// AverageDaily is the mean count over days with any recorded activity.
	AverageDaily float64
	// MostActiveDay is the date with the highest count; ties break to the
	// lexicographically smallest date.
	MostActiveDay   string
	MostActiveCount int
}

// Tracker owns the usage record and its persistence.
type Tracker struct {
	mu     sync.Mutex
	path   string
	rec    Record
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker opens the usage record at path, starting fresh when it is
// absent or unreadable.
func NewTracker(path string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		path:   path,
		rec:    Record{DailyUsage: map[string]int{}},
		logger: logger,
		now:    time.Now,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil && len(data) > 0:
		if uerr := json.Unmarshal(data, &t.rec); uerr != nil {
			logger.Warn("usage record unreadable, starting fresh", "error", uerr)
			t.rec = Record{DailyUsage: map[string]int{}}
		}
	case err != nil && !os.IsNotExist(err):
		logger.Warn("could not read usage record", "error", err)
	}
	if t.rec.DailyUsage == nil {
		t.rec.DailyUsage = map[string]int{}
	}
	return t
}

// InitSession marks an application start. A gap longer than SessionGap
// since the last activity (or no prior activity at all) opens a new
// session; anything shorter continues the current one.
func (t *Tracker) InitSession() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.rec.LastActivity.IsZero() || now.Sub(t.rec.LastActivity) > SessionGap {
		t.rec.TotalSessions++
		t.rec.SessionStart = now
		t.logger.Debug("new session", "total", t.rec.TotalSessions)
	}
	t.persistLocked()
}

// Record bumps the counter for kind, today's daily count, and the
// last-activity timestamp.
func (t *Tracker) Record(kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch kind {
	case KindAdd:
		t.rec.TransactionsAdded++
	case KindEdit:
		t.rec.TransactionsEdited++
	case KindDelete:
		t.rec.TransactionsDeleted++
	case KindExport:
		t.rec.ExportsPerformed++
	case KindImport:
		t.rec.ImportsPerformed++
	default:
		t.logger.Warn("unknown activity kind", "kind", string(kind))
		return
	}

	now := t.now()
	t.rec.DailyUsage[now.Format("2006-01-02")]++
	t.rec.LastActivity = now
	t.persistLocked()
}

// Snapshot returns a copy of the current record.
func (t *Tracker) Snapshot() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.rec
	rec.DailyUsage = make(map[string]int, len(t.rec.DailyUsage))
	for k, v := range t.rec.DailyUsage {
		rec.DailyUsage[k] = v
	}
	return rec
}

// Stats derives the aggregate view from the record.
func (t *Tracker) Stats() Stats {
	rec := t.Snapshot()

	s := Stats{
		TotalActivity: rec.TransactionsAdded + rec.TransactionsEdited +
			rec.TransactionsDeleted + rec.ExportsPerformed + rec.ImportsPerformed,
	}
	if len(rec.DailyUsage) == 0 {
		return s
	}

	dates := make([]string, 0, len(rec.DailyUsage))
	sum := 0
	for date, count := range rec.DailyUsage {
		dates = append(dates, date)
		sum += count
	}
	sort.Strings(dates)

	s.AverageDaily = float64(sum) / float64(len(dates))
	for _, date := range dates {
		if rec.DailyUsage[date] > s.MostActiveCount {
			s.MostActiveCount = rec.DailyUsage[date]
			s.MostActiveDay = date
		}
	}
	return s
}

func (t *Tracker) persistLocked() {
	data, err := json.MarshalIndent(&t.rec, "", "  ")
	if err != nil {
		t.logger.Warn("marshaling usage record failed", "error", err)
		return
	}
	if err := os.WriteFile(t.path, data, 0o600); err != nil {
		t.logger.Warn("writing usage record failed", "error", err)
	}
}
