package engine

import (
	"fmt"
	"time"

	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
	"github.com/stonetable/stonetable-db/internal/wal"
)

// ApplyBatch writes a batched mutation to the WAL and applies it. The result
// slice has the same length and order as the input rows; individual row
// failures do not fail the batch.
func (e *Engine) ApplyBatch(tableName string, rows []stonetable.Row) ([]protocol.BatchResult, error) {
	if tableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	if err := e.wal.Apply(&wal.Entry{
		Table:     tableName,
		Rows:      rows,
		Timestamp: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to apply WAL entry: %w", err)
	}

	results := make([]protocol.BatchResult, len(rows))
	e.apply(tableName, rows, results)
	return results, nil
}

// apply merges rows into the table. When results is non-nil it records the
// per-item outcome; the WAL replay path passes nil.
func (e *Engine) apply(tableName string, rows []stonetable.Row, results []protocol.BatchResult) {
	e.rwMutex.Lock()
	defer e.rwMutex.Unlock()

	t := e.getOrCreate(tableName)

	var added []string
	for i, row := range rows {
		if results != nil {
			results[i] = protocol.BatchResult{Key: row.Key, OK: true}
		}
		if row.Key == "" {
			if results != nil {
				results[i] = protocol.BatchResult{OK: false, Error: "row key is required"}
			}
			continue
		}
		if len(row.Columns) == 0 {
			if results != nil {
				results[i] = protocol.BatchResult{Key: row.Key, OK: false, Error: "row has no columns"}
			}
			continue
		}

		existing, ok := t.rows[row.Key]
		if !ok {
			existing = make(map[string]stonetable.Qualifier)
			t.rows[row.Key] = existing
			added = append(added, row.Key)
		}
		for family, quals := range row.Columns {
			fam, ok := existing[family]
			if !ok {
				fam = make(stonetable.Qualifier)
				existing[family] = fam
			}
			for qualifier, value := range quals {
				fam[qualifier] = value
			}
		}
	}
	t.mergeKeys(added)
}

// Drop removes all node-local state for a table.
func (e *Engine) Drop(tableName string) error {
	if err := e.wal.Apply(&wal.Entry{
		Table:     tableName,
		Drop:      true,
		Timestamp: time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to apply WAL entry: %w", err)
	}
	e.drop(tableName)
	return nil
}

func (e *Engine) drop(tableName string) {
	e.rwMutex.Lock()
	defer e.rwMutex.Unlock()
	delete(e.tables, tableName)
}

// RowCount returns the number of rows held for a table on this node.
func (e *Engine) RowCount(tableName string) int {
	e.rwMutex.RLock()
	defer e.rwMutex.RUnlock()
	t, ok := e.tables[tableName]
	if !ok {
		return 0
	}
	return len(t.keys)
}
