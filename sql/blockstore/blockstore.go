// Package blockstore implements the block data interface the execution layer
// uses to exchange intermediate results: put a block under an id at a chosen
// storage level, get it back by id with a definite error when absent.
package blockstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// ErrBlockNotFound is returned by Get when a block is absent at every level
var ErrBlockNotFound = errors.New("block not found")

// BlockID identifies a block
type BlockID string

// StorageLevel selects where a block is kept
type StorageLevel int

const (
	MemoryOnly StorageLevel = iota
	DiskOnly
	MemoryAndDisk
)

func (l StorageLevel) String() string {
	switch l {
	case MemoryOnly:
		return "memory"
	case DiskOnly:
		return "disk"
	case MemoryAndDisk:
		return "memory+disk"
	default:
		return "unknown"
	}
}

// Store keeps blocks in an in-memory map fronting a Badger database
type Store struct {
	db *badger.DB

	mu  sync.RWMutex
	mem map[BlockID][]byte
}

// Open opens or creates a block store at the given path
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable BadgerDB logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open block store: %w", err)
	}
	return &Store{db: db, mem: make(map[BlockID][]byte)}, nil
}

// OpenInMemory opens a store whose disk level is also non-persistent, used by
// tests
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory block store: %w", err)
	}
	return &Store{db: db, mem: make(map[BlockID][]byte)}, nil
}

// Close releases the underlying store
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a block at the given level, replacing an existing block with the
// same id
func (s *Store) Put(id BlockID, data []byte, level StorageLevel) error {
	if level == MemoryOnly || level == MemoryAndDisk {
		copied := append([]byte(nil), data...)
		s.mu.Lock()
		s.mem[id] = copied
		s.mu.Unlock()
	}
	if level == DiskOnly || level == MemoryAndDisk {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(id), data)
		})
		if err != nil {
			return fmt.Errorf("failed to write block %q: %w", id, err)
		}
	}
	switch level {
	case DiskOnly:
		// A prior memory-level put must not mask the disk copy's absence
		// semantics; drop it so the id has one authoritative home
		s.mu.Lock()
		delete(s.mem, id)
		s.mu.Unlock()
	case MemoryOnly:
		// Same the other way round: a superseded disk copy would resurface
		// after a restart once the memory map is gone
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(id))
		})
		if err != nil {
			return fmt.Errorf("failed to drop stale disk block %q: %w", id, err)
		}
	}
	return nil
}

// Get returns a block by id, memory level first, then disk
func (s *Store) Get(id BlockID) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.mem[id]
	s.mu.RUnlock()
	if ok {
		return append([]byte(nil), data...), nil
	}

	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("block %q: %w", id, ErrBlockNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read block %q: %w", id, err)
	}
	return out, nil
}

// Remove deletes a block from every level; removing an absent block reports
// ErrBlockNotFound
func (s *Store) Remove(id BlockID) error {
	s.mu.Lock()
	_, inMem := s.mem[id]
	delete(s.mem, id)
	s.mu.Unlock()

	onDisk := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		onDisk = true
		return txn.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to remove block %q: %w", id, err)
	}
	if !inMem && !onDisk {
		return fmt.Errorf("block %q: %w", id, ErrBlockNotFound)
	}
	return nil
}
