package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mahadsiddiqui/khata/pkg/ledger"
)

var (
	// ErrInvalidLedger is returned when Save is handed a ledger missing
	// one of its required sequences. Nothing is written.
	ErrInvalidLedger = errors.New("ledger must carry transactions and categories sequences")

	// ErrDurabilityDegraded is returned when the primary write failed and
	// only the session mirror holds the latest ledger.
	ErrDurabilityDegraded = errors.New("ledger saved to session storage only")
)

// Default file names under the data directory.
const (
	PrimaryFile = "ledger.json"
	BackupFile  = "ledger-backup.json"
	MetaFile    = "ledger-meta.json"
)

// Store reconciles the ledger across an ordered chain of backends:
// primary, backup, session mirror, plus a write-only metadata record.
type Store struct {
	primary Backend
	backup  Backend
	session Backend
	meta    *MetaWriter
	logger  *slog.Logger
}

// New builds a store over the standard file layout in dir.
func New(dir string, logger *slog.Logger) *Store {
	return NewWithBackends(
		NewFileBackend("primary", filepath.Join(dir, PrimaryFile)),
		NewBackupBackend(filepath.Join(dir, BackupFile)),
		NewMemoryBackend(),
		NewMetaWriter(filepath.Join(dir, MetaFile)),
		logger,
	)
}

// NewWithBackends builds a store over explicit backends.
func NewWithBackends(primary, backup, session Backend, meta *MetaWriter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		primary: primary,
		backup:  backup,
		session: session,
		meta:    meta,
		logger:  logger,
	}
}

// Load walks the fallback chain until a backend yields a usable ledger.
// Missing and unparseable records are treated alike: fall through to the
// next location. Load never fails; the terminal fallback is an empty
// ledger with the default categories.
func (s *Store) Load() *ledger.Ledger {
	for _, b := range []Backend{s.primary, s.backup, s.session} {
		l, err := b.Read()
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Debug("ledger location empty", "backend", b.Name())
			} else {
				s.logger.Warn("ledger location unreadable, trying next",
					"backend", b.Name(), "error", err)
			}
			continue
		}
		l.Normalize()
		s.logger.Info("ledger loaded",
			"backend", b.Name(),
			"transactions", len(l.Transactions),
			"categories", len(l.Categories),
		)
		return l
	}

	s.logger.Info("no usable ledger record, starting empty")
	return ledger.New()
}

// Save writes the whole ledger to every location. The four writes are
// independent: a failure in one is logged and the rest still run. Two
// conditions surface to the caller: an invalid input ledger (nothing is
// written) and a failed primary write (the ledger then lives only in the
// session mirror until the next successful save).
func (s *Store) Save(l *ledger.Ledger) error {
	if !l.Valid() {
		s.logger.Error("refusing to save ledger with missing sequences")
		return ErrInvalidLedger
	}

	if err := s.primary.Write(l); err != nil {
		s.logger.Error("primary write failed, keeping session copy only",
			"backend", s.primary.Name(), "error", err)
		if serr := s.session.Write(l); serr != nil {
			s.logger.Error("session write failed", "error", serr)
		}
		return fmt.Errorf("%w: %w", ErrDurabilityDegraded, err)
	}

	if err := s.backup.Write(l); err != nil {
		s.logger.Warn("backup write failed", "backend", s.backup.Name(), "error", err)
	}
	if err := s.session.Write(l); err != nil {
		s.logger.Warn("session write failed", "error", err)
	}
	if s.meta != nil {
		if err := s.meta.Write(l); err != nil {
			s.logger.Warn("metadata write failed", "error", err)
		}
	}

	s.logger.Debug("ledger saved",
		"transactions", len(l.Transactions),
		"categories", len(l.Categories),
	)
	return nil
}
