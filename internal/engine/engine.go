package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/stonetable/stonetable-db/internal/stonetable"
	"github.com/stonetable/stonetable-db/internal/wal"
)

type walManager interface {
	Apply(e *wal.Entry) error
	Load(fn func(e *wal.Entry)) error
	Truncate() error
	Close() error
}

// table holds one table's rows on this node plus a sorted key index so range
// scans never re-sort the whole table.
type table struct {
	rows map[string]map[string]stonetable.Qualifier // rowKey -> family -> qualifier -> value
	keys []string                                   // ascending
}

// Engine is the storage engine of a single node. It holds whatever key
// ranges the coordinator routed to this node; partitioning is entirely the
// coordinator's concern.
type Engine struct {
	rwMutex sync.RWMutex
	tables  map[string]*table
	wal     walManager
	path    string
}

type Config struct {
	WAL *wal.Manager
	// Path is the node working directory; the snapshot file lives under it.
	Path string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.WAL == nil {
		errGrp = append(errGrp, fmt.Errorf("WAL is required"))
	}
	if c.Path == "" {
		errGrp = append(errGrp, fmt.Errorf("path is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		tables: make(map[string]*table),
		wal:    cfg.WAL,
		path:   cfg.Path,
	}, nil
}

// Start restores the last snapshot and replays the WAL tail on top of it.
func (e *Engine) Start() error {
	if err := e.loadSnapshot(); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := e.wal.Load(func(entry *wal.Entry) {
		if entry.Drop {
			e.drop(entry.Table)
			return
		}
		e.apply(entry.Table, entry.Rows, nil)
	}); err != nil {
		return fmt.Errorf("failed to replay WAL: %w", err)
	}
	return nil
}

// Stop snapshots the current state and truncates the WAL.
func (e *Engine) Stop() error {
	var errGrp []error
	if err := e.persistSnapshot(); err != nil {
		errGrp = append(errGrp, fmt.Errorf("failed to persist snapshot: %w", err))
	} else if err := e.wal.Truncate(); err != nil {
		errGrp = append(errGrp, fmt.Errorf("failed to truncate WAL: %w", err))
	}
	if err := e.wal.Close(); err != nil {
		errGrp = append(errGrp, fmt.Errorf("failed to close WAL: %w", err))
	}
	return errors.Join(errGrp...)
}

func (e *Engine) Name() string {
	return "Stonetable Engine"
}

// getOrCreate returns the named table, creating node-local state on first
// write. Callers must hold the write lock.
func (e *Engine) getOrCreate(name string) *table {
	t, ok := e.tables[name]
	if !ok {
		t = &table{rows: make(map[string]map[string]stonetable.Qualifier)}
		e.tables[name] = t
	}
	return t
}

// mergeKeys folds a sorted batch of new keys into the sorted index.
func (t *table) mergeKeys(added []string) {
	if len(added) == 0 {
		return
	}
	sort.Strings(added)
	merged := make([]string, 0, len(t.keys)+len(added))
	i, j := 0, 0
	for i < len(t.keys) && j < len(added) {
		switch {
		case t.keys[i] < added[j]:
			merged = append(merged, t.keys[i])
			i++
		case t.keys[i] > added[j]:
			merged = append(merged, added[j])
			j++
		default:
			merged = append(merged, t.keys[i])
			i++
			j++
		}
	}
	merged = append(merged, t.keys[i:]...)
	merged = append(merged, added[j:]...)
	t.keys = merged
}
