package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/walletcore-go/serde"
)

// Store persists wallet snapshots by key.
type Store interface {
	// Load returns the snapshot stored under key, or ErrSnapshotNotFound.
	Load(key string) (*Snapshot, error)
	Save(key string, s *Snapshot) error
	Close() error
}

// MemStore is an in-memory Store. Snapshots are kept encoded so that
// callers never share state with the store.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Load(key string) (*Snapshot, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
	}
	return decodeSnapshot(raw)
}

func (m *MemStore) Save(key string, s *Snapshot) error {
	raw, err := SnapshotSerde().Serialize(*s)
	if err != nil {
		return fmt.Errorf("wallet: encode snapshot: %w", err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemStore) Close() error { return nil }

func decodeSnapshot(raw []byte) (*Snapshot, error) {
	s, err := serde.Decode(SnapshotSerde(), raw)
	if err != nil {
		return nil, fmt.Errorf("wallet: decode snapshot: %w", err)
	}
	return &s, nil
}

var bucketSnapshots = []byte("snapshots")

// BoltStore persists snapshots in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("wallet: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("wallet: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("wallet: create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(key string) (*Snapshot, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshots).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
		}
		// data is only valid inside the transaction.
		raw = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

func (s *BoltStore) Save(key string, snap *Snapshot) error {
	raw, err := SnapshotSerde().Serialize(*snap)
	if err != nil {
		return fmt.Errorf("wallet: encode snapshot: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSnapshots).Put([]byte(key), raw); err != nil {
			return fmt.Errorf("wallet: put snapshot: %w", err)
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }
