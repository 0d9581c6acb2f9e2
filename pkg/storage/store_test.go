package storage_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahadsiddiqui/khata/pkg/ledger"
	"github.com/mahadsiddiqui/khata/pkg/storage"
	"github.com/mahadsiddiqui/khata/pkg/storage/mocks"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleLedger() *ledger.Ledger {
	l := ledger.New()
	l.Add(ledger.Transaction{
		ID:       "tx-1",
		Type:     ledger.Expense,
		Amount:   500,
		Currency: ledger.PKR,
		Category: "Rent",
		Date:     "2024-01-05",
	})
	return l
}

func TestLoad_AllLocationsEmpty(t *testing.T) {
	store := storage.New(t.TempDir(), quietLogger())

	l := store.Load()
	require.True(t, l.Valid())
	assert.Empty(t, l.Transactions)
	assert.Equal(t, ledger.DefaultCategories(), l.Categories)
}

func TestSaveThenLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(dir, quietLogger())

	saved := sampleLedger()
	require.NoError(t, store.Save(saved))

	// A fresh store simulates a restart: the session mirror is gone and
	// the primary file must carry everything.
	fresh := storage.New(dir, quietLogger())
	got := fresh.Load()
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, saved.Transactions[0], got.Transactions[0])
	assert.Equal(t, saved.Categories, got.Categories)
}

func TestLoad_CorruptPrimaryFallsBackToBackup(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(dir, quietLogger())
	require.NoError(t, store.Save(sampleLedger()))

	// Corrupt the primary; the backup copy must answer.
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.PrimaryFile), []byte("{not json"), 0o600))

	got := storage.New(dir, quietLogger()).Load()
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "tx-1", got.Transactions[0].ID)
}

func TestLoad_BackupWithoutCategoriesGetsDefaults(t *testing.T) {
	dir := t.TempDir()

	// A backup payload from before categories were annotated.
	payload := []byte(`{
  "transactions": [{"id": "tx-9", "type": "income", "amount": 100, "currency": "USD", "category": "Salary", "description": "", "date": "2024-02-01"}],
  "lastBackup": "2024-02-01T10:00:00Z",
  "version": "1.0"
}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.BackupFile), payload, 0o600))

	got := storage.New(dir, quietLogger()).Load()
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "tx-9", got.Transactions[0].ID)
	assert.Equal(t, ledger.DefaultCategories(), got.Categories)
}

func TestLoad_SessionMirrorIsLastResort(t *testing.T) {
	session := storage.NewMemoryBackend()
	require.NoError(t, session.Write(sampleLedger()))

	dir := t.TempDir()
	store := storage.NewWithBackends(
		storage.NewFileBackend("primary", filepath.Join(dir, storage.PrimaryFile)),
		storage.NewBackupBackend(filepath.Join(dir, storage.BackupFile)),
		session,
		nil,
		quietLogger(),
	)

	got := store.Load()
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "tx-1", got.Transactions[0].ID)
}

func TestSave_InvalidLedgerTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(dir, quietLogger())

	err := store.Save(&ledger.Ledger{Transactions: nil, Categories: []ledger.Category{}})
	require.ErrorIs(t, err, storage.ErrInvalidLedger)

	_, statErr := os.Stat(filepath.Join(dir, storage.PrimaryFile))
	assert.True(t, os.IsNotExist(statErr), "primary file must not be written")
}

func TestSave_PrimaryFailureKeepsSessionCopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	primary := mocks.NewMockBackend(ctrl)
	primary.EXPECT().Name().Return("primary").AnyTimes()
	primary.EXPECT().Write(gomock.Any()).Return(errors.New("quota exceeded"))

	// The backup must not be touched on a failed primary write.
	backup := mocks.NewMockBackend(ctrl)
	backup.EXPECT().Name().Return("backup").AnyTimes()

	session := storage.NewMemoryBackend()
	store := storage.NewWithBackends(primary, backup, session, nil, quietLogger())

	err := store.Save(sampleLedger())
	require.ErrorIs(t, err, storage.ErrDurabilityDegraded)

	got, readErr := session.Read()
	require.NoError(t, readErr)
	assert.Len(t, got.Transactions, 1)
}

func TestSave_BackupFailureDoesNotAbort(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	backup := mocks.NewMockBackend(ctrl)
	backup.EXPECT().Name().Return("backup").AnyTimes()
	backup.EXPECT().Write(gomock.Any()).Return(errors.New("disk full"))

	session := storage.NewMemoryBackend()
	store := storage.NewWithBackends(
		storage.NewFileBackend("primary", filepath.Join(dir, storage.PrimaryFile)),
		backup,
		session,
		storage.NewMetaWriter(filepath.Join(dir, storage.MetaFile)),
		quietLogger(),
	)

	require.NoError(t, store.Save(sampleLedger()))

	// Primary, session, and metadata all landed despite the backup failure.
	_, err := os.Stat(filepath.Join(dir, storage.PrimaryFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, storage.MetaFile))
	assert.NoError(t, err)
	_, err = session.Read()
	assert.NoError(t, err)
}

func TestMetaWriter_RecordsCountsAndChecksum(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(dir, quietLogger())
	require.NoError(t, store.Save(sampleLedger()))

	data, err := os.ReadFile(filepath.Join(dir, storage.MetaFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"transactionCount": 1`)
	assert.Contains(t, string(data), `"checksum"`)
}
