// Package notify keeps the capped, persisted log of user-facing messages
// and the settings that gate which events reach it.
package notify

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification entry.
type Type string

const (
	TypeSuccess  Type = "success"
	TypeInfo     Type = "info"
	TypeWarning  Type = "warning"
	TypeReminder Type = "reminder"
)

// MaxEntries caps the log at the most recent entries; older ones drop off.
const MaxEntries = 50

// Notification is one entry in the log, most-recent-first.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Sender mirrors a new entry to a system-level transient notification.
// Implementations are best effort; a failed send is only logged.
type Sender interface {
	Send(title, message string) error
}

// Log is the persisted, capped notification log.
type Log struct {
	mu      sync.Mutex
	path    string
	entries []Notification
	sender  Sender
	logger  *slog.Logger
	now     func() time.Time
}

// NewLog opens the log at path, starting empty when the file is absent or
// unreadable. sender may be nil.
func NewLog(path string, sender Sender, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Log{
		path:    path,
		entries: []Notification{},
		sender:  sender,
		logger:  logger,
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil && len(data) > 0:
		if uerr := json.Unmarshal(data, &l.entries); uerr != nil {
			logger.Warn("notification log unreadable, starting empty", "error", uerr)
			l.entries = []Notification{}
		} else if len(l.entries) > MaxEntries {
			// An oversized file (hand-edited or from another version) is
			// clamped so the cap holds from the first read.
			l.entries = l.entries[:MaxEntries]
		}
	case err != nil && !os.IsNotExist(err):
		logger.Warn("could not read notification log", "error", err)
	}
	return l
}

// Append prepends a new unread entry and truncates the log to MaxEntries.
// When a sender is configured the entry is mirrored best-effort.
func (l *Log) Append(title, message string, typ Type) Notification {
	l.mu.Lock()
	n := Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Timestamp: l.now(),
	}
	l.entries = append([]Notification{n}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	l.persistLocked()
	l.mu.Unlock()

	if l.sender != nil {
		if err := l.sender.Send(title, message); err != nil {
			l.logger.Debug("system notification failed", "error", err)
		}
	}
	return n
}

// MarkRead flips the matching entry to read. Unknown IDs are a no-op.
func (l *Log) MarkRead(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			if !l.entries[i].Read {
				l.entries[i].Read = true
				l.persistLocked()
			}
			return
		}
	}
}

// ClearAll empties the log.
func (l *Log) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = []Notification{}
	l.persistLocked()
}

// Entries returns a copy of the log, most-recent-first.
func (l *Log) Entries() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.entries))
	copy(out, l.entries)
	return out
}

// UnreadCount returns the number of unread entries.
func (l *Log) UnreadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, n := range l.entries {
		if !n.Read {
			count++
		}
	}
	return count
}

func (l *Log) persistLocked() {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		l.logger.Warn("marshaling notification log failed", "error", err)
		return
	}
	if err := os.WriteFile(l.path, data, 0o600); err != nil {
		l.logger.Warn("writing notification log failed", "error", err)
	}
}
