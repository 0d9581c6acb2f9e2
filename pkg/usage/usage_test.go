package usage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.json")
	return NewTracker(path, quietLogger()), path
}

func TestInitSession_FirstStart(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.InitSession()

	rec := tr.Snapshot()
	assert.Equal(t, 1, rec.TotalSessions)
	assert.False(t, rec.SessionStart.IsZero())
}

func TestInitSession_GapBoundary(t *testing.T) {
	tr, _ := newTestTracker(t)

	base := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return base }
	tr.InitSession()
	tr.Record(KindAdd)

	// Restart within the gap continues the session.
	tr.now = func() time.Time { return base.Add(20 * time.Minute) }
	tr.InitSession()
	assert.Equal(t, 1, tr.Snapshot().TotalSessions)

	// Restart after the gap opens a new one.
	tr.now = func() time.Time { return base.Add(20*time.Minute + SessionGap + time.Second) }
	tr.InitSession()
	assert.Equal(t, 2, tr.Snapshot().TotalSessions)
}

func TestRecord_Counters(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.now = func() time.Time { return time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC) }

	tr.Record(KindAdd)
	tr.Record(KindAdd)
	tr.Record(KindEdit)
	tr.Record(KindDelete)
	tr.Record(KindExport)
	tr.Record(KindImport)

	rec := tr.Snapshot()
	assert.Equal(t, 2, rec.TransactionsAdded)
	assert.Equal(t, 1, rec.TransactionsEdited)
	assert.Equal(t, 1, rec.TransactionsDeleted)
	assert.Equal(t, 1, rec.ExportsPerformed)
	assert.Equal(t, 1, rec.ImportsPerformed)
	assert.Equal(t, 6, rec.DailyUsage["2024-03-13"])
	assert.Equal(t, tr.now(), rec.LastActivity)
}

func TestRecord_UnknownKindIgnored(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Record(Kind("bogus"))
	assert.Equal(t, 0, tr.Stats().TotalActivity)
}

func TestStats(t *testing.T) {
	tr, _ := newTestTracker(t)

	day1 := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	tr.now = func() time.Time { return day1 }
	tr.Record(KindAdd)
	tr.Record(KindAdd)
	tr.Record(KindAdd)

	tr.now = func() time.Time { return day2 }
	tr.Record(KindEdit)

	s := tr.Stats()
	assert.Equal(t, 4, s.TotalActivity)
	assert.Equal(t, 2.0, s.AverageDaily)
	assert.Equal(t, "2024-03-11", s.MostActiveDay)
	assert.Equal(t, 3, s.MostActiveCount)
}

func TestStats_TieBreaksToSmallestDate(t *testing.T) {
	tr, _ := newTestTracker(t)

	for _, day := range []time.Time{
		time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC),
	} {
		day := day
		tr.now = func() time.Time { return day }
		tr.Record(KindAdd)
	}

	assert.Equal(t, "2024-03-11", tr.Stats().MostActiveDay)
}

func TestStats_EmptyRecord(t *testing.T) {
	tr, _ := newTestTracker(t)
	s := tr.Stats()
	assert.Zero(t, s.TotalActivity)
	assert.Zero(t, s.AverageDaily)
	assert.Empty(t, s.MostActiveDay)
}

func TestTracker_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	tr := NewTracker(path, quietLogger())
	tr.InitSession()
	tr.Record(KindAdd)

	reopened := NewTracker(path, quietLogger())
	rec := reopened.Snapshot()
	assert.Equal(t, 1, rec.TotalSessions)
	assert.Equal(t, 1, rec.TransactionsAdded)
	require.NotNil(t, rec.DailyUsage)
}

func TestTracker_CorruptRecordStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	tr := NewTracker(path, quietLogger())
	assert.Equal(t, 0, tr.Snapshot().TotalSessions)
}
