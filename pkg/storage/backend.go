// Package storage persists the ledger across an ordered chain of redundant
// backends and reconciles them on load.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mahadsiddiqui/khata/pkg/ledger"
)

// ErrNotFound is returned by a backend whose location holds no record.
var ErrNotFound = errors.New("no ledger record")

// Backend is one named storage location for the whole ledger.
type Backend interface {
	// Name identifies the location in logs.
	Name() string
	// Read returns the stored ledger, ErrNotFound when the location is
	// empty, or another error when the payload is unreadable.
	Read() (*ledger.Ledger, error)
	// Write replaces the stored ledger.
	Write(l *ledger.Ledger) error
}

// FileBackend stores the raw ledger as a JSON file. It serves as the
// primary location.
type FileBackend struct {
	path string
	name string
}

// NewFileBackend creates a file backend at path.
func NewFileBackend(name, path string) *FileBackend {
	return &FileBackend{path: path, name: name}
}

func (b *FileBackend) Name() string { return b.name }

func (b *FileBackend) Read() (*ledger.Ledger, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	var l ledger.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", b.path, err)
	}
	return &l, nil
}

func (b *FileBackend) Write(l *ledger.Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	return nil
}

// backupEnvelope annotates the ledger with a backup timestamp and a
// version marker.
type backupEnvelope struct {
	Transactions []ledger.Transaction `json:"transactions"`
	Categories   []ledger.Category    `json:"categories"`
	LastBackup   string               `json:"lastBackup"`
	Version      string               `json:"version"`
}

// backupVersion marks the backup payload layout.
const backupVersion = "1.0"

// BackupBackend stores an annotated copy of the ledger. On read the
// envelope is reshaped back into ledger form; absent categories are left
// nil for the store to default.
type BackupBackend struct {
	path string
}

// NewBackupBackend creates a backup backend at path.
func NewBackupBackend(path string) *BackupBackend {
	return &BackupBackend{path: path}
}

func (b *BackupBackend) Name() string { return "backup" }

func (b *BackupBackend) Read() (*ledger.Ledger, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	var env backupEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", b.path, err)
	}
	return &ledger.Ledger{
		Transactions: env.Transactions,
		Categories:   env.Categories,
	}, nil
}

func (b *BackupBackend) Write(l *ledger.Ledger) error {
	env := backupEnvelope{
		Transactions: l.Transactions,
		Categories:   l.Categories,
		LastBackup:   time.Now().Format(time.RFC3339),
		Version:      backupVersion,
	}
	data, err := json.MarshalIndent(&env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling backup: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	return nil
}

// MemoryBackend mirrors the ledger in process memory. It is the
// session-scoped location: non-durable, gone when the process exits.
type MemoryBackend struct {
	mu sync.Mutex
	l  *ledger.Ledger
}

// NewMemoryBackend creates an empty session mirror.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Name() string { return "session" }

func (b *MemoryBackend) Read() (*ledger.Ledger, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.l == nil {
		return nil, ErrNotFound
	}
	return b.l.Clone(), nil
}

func (b *MemoryBackend) Write(l *ledger.Ledger) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.l = l.Clone()
	return nil
}

// metaRecord is the small health record written alongside every save.
type metaRecord struct {
	TransactionCount int    `json:"transactionCount"`
	CategoryCount    int    `json:"categoryCount"`
	SavedAt          string `json:"savedAt"`
	// Checksum is the byte length of the serialized ledger; enough to
	// spot truncation, not tampering.
	Checksum int `json:"checksum"`
}

// MetaWriter records counts, a timestamp, and a length checksum of the
// serialized ledger. Write-only; never consulted on load.
type MetaWriter struct {
	path string
}

// NewMetaWriter creates a metadata writer at path.
func NewMetaWriter(path string) *MetaWriter {
	return &MetaWriter{path: path}
}

func (m *MetaWriter) Write(l *ledger.Ledger) error {
	serialized, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling ledger for checksum: %w", err)
	}
	rec := metaRecord{
		TransactionCount: len(l.Transactions),
		CategoryCount:    len(l.Categories),
		SavedAt:          time.Now().Format(time.RFC3339),
		Checksum:         len(serialized),
	}
	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", m.path, err)
	}
	return nil
}
