// Package history keeps a record of synchronization runs in a Badger store.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/syncer/pkg/syncer/controller"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// ErrNotFound is returned by Get when no entry has the given ID.
var ErrNotFound = errors.New("history entry not found")

// keyPrefix namespaces run entries. IDs start with a fixed-width timestamp,
// so key order is chronological.
const keyPrefix = "run/"

// Entry is one recorded run.
type Entry struct {
	ID         string        `json:"id" yaml:"id"`
	Timestamp  time.Time     `json:"timestamp" yaml:"timestamp"`
	Target     types.Target  `json:"target" yaml:"target"`
	Decision   string        `json:"decision" yaml:"decision"`
	Outcome    string        `json:"outcome" yaml:"outcome"`
	DryRun     bool          `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Message    string        `json:"message" yaml:"message"`
	ErrorKind  string        `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	BackupPath string        `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Failed reports whether the run ended with an error.
func (e *Entry) Failed() bool {
	return e.ErrorKind != ""
}

// FromReport converts a controller report into an entry with the report's
// run ID.
func FromReport(r *controller.Report) *Entry {
	e := &Entry{
		ID:         r.ID,
		Timestamp:  r.StartedAt.UTC(),
		Target:     r.Target,
		Decision:   r.Decision.String(),
		Outcome:    r.Outcome.String(),
		DryRun:     r.DryRun,
		Message:    r.Message,
		BackupPath: r.BackupPath,
		Duration:   r.Duration(),
	}
	if r.Err != nil {
		e.ErrorKind = r.Err.Kind.String()
	}
	return e
}

// Store is a Badger-backed run history.
type Store struct {
	db  *badger.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens or creates the history database in dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Log persists entry. A missing timestamp is set to now and a missing ID is
// generated; both are written back into entry.
func (s *Store) Log(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	if entry.ID == "" {
		entry.ID = controller.NewRunID(entry.Timestamp)
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(entry.ID), value)
	})
}

// List returns entries newest first. A limit of 0 or less returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	entries := []Entry{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// 0xFF sorts after every ID character, so this lands on the newest key
		for it.Seek([]byte(keyPrefix + "\xff")); it.Valid(); it.Next() {
			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				// skip entries that can't be decoded
				continue
			}
			entries = append(entries, entry)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Cleanup removes entries older than retentionDays and returns how many were
// removed. A retention of 0 or less keeps everything.
func (s *Store) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	removed := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			var entry Entry
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}
			if entry.Timestamp.Before(cutoff) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func entryKey(id string) []byte {
	return []byte(keyPrefix + id)
}

