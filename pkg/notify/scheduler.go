package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// reminderHour is the local hour of day reminders fire at.
const reminderHour = 9

type reminderKind string

const (
	reminderWeekly  reminderKind = "weekly"
	reminderMonthly reminderKind = "monthly"
)

type reminderEntry struct {
	at   time.Time
	kind reminderKind
}

// Scheduler owns the list of upcoming reminder firings. The list is
// re-derived wholesale from the settings on every change; there are no
// self-rescheduling callbacks, so a settings flip can never leave a
// duplicate timer behind.
type Scheduler struct {
	mu      sync.Mutex
	entries []reminderEntry

	log    *Log
	store  *SettingsStore
	logger *slog.Logger
	now    func() time.Time
	wake   chan struct{}
}

// NewScheduler builds a reminder scheduler over the log and settings
// store. It subscribes to the store so settings changes reschedule
// atomically.
func NewScheduler(log *Log, store *SettingsStore, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		log:    log,
		store:  store,
		logger: logger,
		now:    time.Now,
		wake:   make(chan struct{}, 1),
	}
	store.Subscribe(func(st Settings) { s.Reschedule(st) })
	return s
}

// Reschedule cancels every pending entry and derives a fresh list from
// the given settings.
func (s *Scheduler) Reschedule(st Settings) {
	now := s.now()
	var entries []reminderEntry
	if st.WeeklyReminders {
		entries = append(entries, reminderEntry{at: nextWeekly(now), kind: reminderWeekly})
	}
	if st.MonthlyReminders {
		entries = append(entries, reminderEntry{at: nextMonthly(now), kind: reminderMonthly})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.logger.Debug("reminders rescheduled", "pending", len(entries))
}

// Upcoming returns the pending firing times, earliest first.
func (s *Scheduler) Upcoming() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.at
	}
	return out
}

// Run fires reminders until ctx is canceled. It derives the initial
// schedule from the current settings.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Reschedule(s.store.Get())
	s.logger.Info("reminder scheduler started")

	for {
		s.mu.Lock()
		var next *reminderEntry
		if len(s.entries) > 0 {
			next = &s.entries[0]
		}
		s.mu.Unlock()

		var fire <-chan time.Time
		var timer *time.Timer
		if next != nil {
			timer = time.NewTimer(time.Until(next.at))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.logger.Info("reminder scheduler stopped")
			return ctx.Err()
		case <-s.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-fire:
			s.fireDue()
		}
	}
}

// fireDue appends a reminder notification for every entry whose time has
// passed and replaces it with its next occurrence.
func (s *Scheduler) fireDue() {
	now := s.now()

	s.mu.Lock()
	var due []reminderKind
	for i := range s.entries {
		if !s.entries[i].at.After(now) {
			due = append(due, s.entries[i].kind)
			switch s.entries[i].kind {
			case reminderWeekly:
				s.entries[i].at = nextWeekly(now)
			case reminderMonthly:
				s.entries[i].at = nextMonthly(now)
			}
		}
	}
	sort.Slice(s.entries, func(i, j int) bool { return s.entries[i].at.Before(s.entries[j].at) })
	s.mu.Unlock()

	for _, kind := range due {
		switch kind {
		case reminderWeekly:
			s.log.Append("Weekly check-in",
				"Take a minute to record this week's income and expenses.",
				TypeReminder)
		case reminderMonthly:
			s.log.Append("Monthly review",
				"Your monthly summary is ready. Review last month's spending.",
				TypeReminder)
		}
		s.logger.Info("reminder fired", "kind", string(kind))
	}
}

// nextWeekly returns the next Monday at reminderHour after now.
func nextWeekly(now time.Time) time.Time {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+days, reminderHour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// nextMonthly returns the 1st of the following month at reminderHour,
// or the 1st of this month when it is still ahead.
func nextMonthly(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), 1, reminderHour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate
}
