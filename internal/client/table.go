package client

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

// ErrTableClosed is returned when a closed table handle is used.
var ErrTableClosed = errors.New("table handle is closed")

// Table is a handle for data operations against one table. It owns the
// cached partition map and must be closed when no longer needed.
type Table struct {
	name     string
	families []string
	ranges   []stonetable.KeyRange // ascending, contiguous
	call     caller
	closed   atomic.Bool
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Close releases the handle. Scanners opened from it stop iterating.
func (t *Table) Close() error {
	t.closed.Store(true)
	return nil
}

// rangeFor locates the key range owning a row key.
func (t *Table) rangeFor(key string) (*stonetable.KeyRange, error) {
	for i := range t.ranges {
		if t.ranges[i].Contains(key) {
			return &t.ranges[i], nil
		}
	}
	return nil, fmt.Errorf("no range owns key %q", key)
}

// Batch submits multiple row mutations as one logical call. Rows are grouped
// by owning node, one request per node, and the per-item outcome array is
// reassembled in input order. When a node call fails, its rows carry the
// failure in their result entries and the first error is returned alongside
// the (partial) results.
func (t *Table) Batch(rows []stonetable.Row) ([]protocol.BatchResult, error) {
	if t.closed.Load() {
		return nil, ErrTableClosed
	}
	if len(rows) == 0 {
		return nil, nil
	}

	results := make([]protocol.BatchResult, len(rows))

	type nodeBatch struct {
		rows    []stonetable.Row
		indices []int
	}
	// deterministic node order keeps failure reports stable
	batches := make(map[string]*nodeBatch)
	var nodeOrder []string

	for i, row := range rows {
		r, err := t.rangeFor(row.Key)
		if err != nil {
			results[i] = protocol.BatchResult{Key: row.Key, OK: false, Error: err.Error()}
			continue
		}
		b, ok := batches[r.Node]
		if !ok {
			b = &nodeBatch{}
			batches[r.Node] = b
			nodeOrder = append(nodeOrder, r.Node)
		}
		b.rows = append(b.rows, row)
		b.indices = append(b.indices, i)
	}

	var firstErr error
	for _, addr := range nodeOrder {
		b := batches[addr]
		var resp protocol.BatchResponse
		err := t.call(addr, protocol.Batch, protocol.BatchRequest{Table: t.name, Rows: b.rows}, &resp)
		if err != nil || len(resp.Results) != len(b.rows) {
			if err == nil {
				err = fmt.Errorf("node %s returned %d results for %d rows", addr, len(resp.Results), len(b.rows))
			}
			for _, idx := range b.indices {
				results[idx] = protocol.BatchResult{Key: rows[idx].Key, OK: false, Error: err.Error()}
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for j, idx := range b.indices {
			results[idx] = resp.Results[j]
		}
	}

	return results, firstErr
}
