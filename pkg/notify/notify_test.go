package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notifications.json")
	return NewLog(path, nil, quietLogger()), path
}

func TestAppend_MostRecentFirst(t *testing.T) {
	log, _ := newTestLog(t)

	log.Append("first", "m", TypeInfo)
	log.Append("second", "m", TypeSuccess)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Title)
	assert.Equal(t, "first", entries[1].Title)
	assert.False(t, entries[0].Read)
	assert.NotEmpty(t, entries[0].ID)
}

func TestAppend_CapAtFifty(t *testing.T) {
	log, _ := newTestLog(t)

	for i := 0; i < 60; i++ {
		log.Append(fmt.Sprintf("n%d", i), "m", TypeInfo)
	}

	entries := log.Entries()
	require.Len(t, entries, MaxEntries)
	// Most recent kept, oldest ten dropped.
	assert.Equal(t, "n59", entries[0].Title)
	assert.Equal(t, "n10", entries[len(entries)-1].Title)
}

func TestMarkRead_Idempotent(t *testing.T) {
	log, _ := newTestLog(t)
	log.Append("a", "m", TypeInfo)
	n := log.Append("b", "m", TypeInfo)

	log.MarkRead(n.ID)
	entries := log.Entries()
	assert.True(t, entries[0].Read)
	assert.False(t, entries[1].Read, "only the matching entry flips")

	// Marking again changes nothing.
	log.MarkRead(n.ID)
	assert.Equal(t, entries, log.Entries())

	// Unknown IDs are a no-op.
	log.MarkRead("no-such-id")
	assert.Equal(t, 1, log.UnreadCount())
}

func TestClearAll(t *testing.T) {
	log, _ := newTestLog(t)
	log.Append("a", "m", TypeInfo)
	log.ClearAll()
	assert.Empty(t, log.Entries())
}

func TestLog_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	log := NewLog(path, nil, quietLogger())
	log.Append("kept", "m", TypeWarning)

	reopened := NewLog(path, nil, quietLogger())
	entries := reopened.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Title)
	assert.Equal(t, TypeWarning, entries[0].Type)
}

func TestNewLog_ClampsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")

	// Most-recent-first on disk, ten entries over the cap.
	entries := make([]Notification, 0, MaxEntries+10)
	for i := 0; i < MaxEntries+10; i++ {
		entries = append(entries, Notification{ID: fmt.Sprintf("id-%d", i), Title: fmt.Sprintf("n%d", i)})
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	log := NewLog(path, nil, quietLogger())
	got := log.Entries()
	require.Len(t, got, MaxEntries)
	assert.Equal(t, "n0", got[0].Title, "newest entries survive the clamp")
	assert.Equal(t, fmt.Sprintf("n%d", MaxEntries-1), got[len(got)-1].Title)
}

type recordingSender struct {
	titles []string
}

func (s *recordingSender) Send(title, _ string) error {
	s.titles = append(s.titles, title)
	return nil
}

func TestAppend_MirrorsToSender(t *testing.T) {
	sender := &recordingSender{}
	log := NewLog(filepath.Join(t.TempDir(), "n.json"), sender, quietLogger())

	log.Append("hello", "m", TypeInfo)
	assert.Equal(t, []string{"hello"}, sender.titles)
}

func TestSettingsStore_Defaults(t *testing.T) {
	st := NewSettingsStore(filepath.Join(t.TempDir(), "settings.json"), quietLogger())
	assert.Equal(t, DefaultSettings(), st.Get())
}

func TestSettingsStore_SetNotifiesSubscribers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	st := NewSettingsStore(path, quietLogger())

	var got []Settings
	st.Subscribe(func(s Settings) { got = append(got, s) })

	want := Settings{WeeklyReminders: false, MonthlyReminders: true, TransactionNotifications: false}
	st.Set(want)

	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
	assert.Equal(t, want, st.Get())

	// Persisted: a fresh store sees the change.
	assert.Equal(t, want, NewSettingsStore(path, quietLogger()).Get())
}
