package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/stonetable/stonetable-db/internal/stonetable"
	bolt "go.etcd.io/bbolt"
)

const (
	snapshotDirectory = "snapshot"
	snapshotFile      = "engine.db"
)

func (e *Engine) snapshotPath() string {
	return filepath.Join(e.path, snapshotDirectory, snapshotFile)
}

// persistSnapshot writes the full engine state into a bbolt file, one bucket
// per table, one key per row. The file is rebuilt from scratch and swapped
// into place so a crash mid-snapshot never corrupts the previous one.
func (e *Engine) persistSnapshot() error {
	path := e.snapshotPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	db, err := bolt.Open(tmp, 0640, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}

	e.rwMutex.RLock()
	err = db.Update(func(tx *bolt.Tx) error {
		for tableName, t := range e.tables {
			bucket, err := tx.CreateBucketIfNotExists([]byte(tableName))
			if err != nil {
				return err
			}
			for key, families := range t.rows {
				value, err := json.Marshal(families)
				if err != nil {
					return err
				}
				if err := bucket.Put([]byte(key), value); err != nil {
					return err
				}
			}
		}
		return nil
	})
	e.rwMutex.RUnlock()

	if closeErr := db.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to swap snapshot into place: %w", err)
	}
	return nil
}

// loadSnapshot restores engine state from the last persisted snapshot, if
// one exists.
func (e *Engine) loadSnapshot() error {
	path := e.snapshotPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := bolt.Open(path, 0640, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer db.Close()

	e.rwMutex.Lock()
	defer e.rwMutex.Unlock()

	err = db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, bucket *bolt.Bucket) error {
			t := e.getOrCreate(string(name))
			return bucket.ForEach(func(k, v []byte) error {
				var families map[string]stonetable.Qualifier
				if err := json.Unmarshal(v, &families); err != nil {
					return fmt.Errorf("corrupt snapshot row %q: %w", k, err)
				}
				key := string(k)
				if _, exists := t.rows[key]; !exists {
					t.keys = append(t.keys, key)
				}
				t.rows[key] = families
				return nil
			})
		})
	})
	if err != nil {
		return err
	}

	// bbolt iterates in key order, so this is usually a no-op; it keeps the
	// sorted-index invariant independent of iteration order.
	for _, t := range e.tables {
		sort.Strings(t.keys)
	}
	return nil
}
