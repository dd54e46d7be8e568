// Package commitlog persists the append-only log the result-commit sink uses
// to deduplicate deliveries. Batch identifiers must be strictly increasing;
// re-delivering an identifier at or below the latest committed one is an
// acknowledged no-op, so partial failures upstream never double-count output.
package commitlog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var (
	commitPrefix = []byte("commit/")
	latestKey    = []byte("meta/latest")
)

// Log is a Badger-backed commit log
type Log struct {
	db *badger.DB

	// Serializes the read-compare-append sequence in Commit
	mu sync.Mutex
}

// Open opens or creates a commit log at the given path
func Open(path string) (*Log, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable BadgerDB logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open commit log: %w", err)
	}
	return &Log{db: db}, nil
}

// OpenInMemory opens a non-persistent log, used by tests
func OpenInMemory() (*Log, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory commit log: %w", err)
	}
	return &Log{db: db}, nil
}

// Close releases the underlying store
func (l *Log) Close() error {
	return l.db.Close()
}

// Commit appends a batch identifier with its payload. It returns true when
// the batch was newly committed and false when the identifier is not strictly
// greater than the latest committed one - the stale re-delivery no-op.
func (l *Log) Commit(id uint64, payload []byte) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	latest, ok, err := l.latest()
	if err != nil {
		return false, err
	}
	if ok && id <= latest {
		return false, nil
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(commitKey(id), payload); err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], id)
		return txn.Set(latestKey, buf[:])
	})
	if err != nil {
		return false, fmt.Errorf("failed to commit batch %d: %w", id, err)
	}
	return true, nil
}

// Latest returns the highest committed identifier; ok is false when the log
// is empty.
func (l *Log) Latest() (uint64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest()
}

// Committed reports whether the identifier was ever accepted
func (l *Log) Committed(id uint64) (bool, error) {
	found := false
	err := l.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(commitKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to read commit %d: %w", id, err)
	}
	return found, nil
}

// Payload returns the payload stored for a committed identifier
func (l *Log) Payload(id uint64) ([]byte, error) {
	var payload []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(commitKey(id))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("commit %d: %w", id, badger.ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %d: %w", id, err)
	}
	return payload, nil
}

func (l *Log) latest() (uint64, bool, error) {
	var latest uint64
	found := false
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(latestKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt latest marker: %d bytes", len(val))
			}
			latest = binary.BigEndian.Uint64(val)
			found = true
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to read latest commit: %w", err)
	}
	return latest, found, nil
}

func commitKey(id uint64) []byte {
	key := make([]byte, len(commitPrefix)+8)
	copy(key, commitPrefix)
	binary.BigEndian.PutUint64(key[len(commitPrefix):], id)
	return key
}
