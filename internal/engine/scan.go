package engine

import (
	"sort"

	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

// defaultScanChunk is the chunk size used when the client does not cap the
// per-call batch (limit <= 0).
const defaultScanChunk = 1000

// Scan returns one chunk of rows in ascending key order: from req.Start
// (inclusive) or strictly after req.StartAfter when that cursor is set, up
// to but excluding req.EndBefore. The returned flag signals that more rows
// remain past the chunk. The cursor is stateless: the caller resumes by
// passing the last key it saw.
func (e *Engine) Scan(req *protocol.ScanRequest) ([]stonetable.Row, bool) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultScanChunk
	}

	e.rwMutex.RLock()
	defer e.rwMutex.RUnlock()

	t, ok := e.tables[req.Table]
	if !ok {
		return nil, false
	}

	start := 0
	switch {
	case req.StartAfter != "":
		// first index strictly after the cursor
		start = sort.SearchStrings(t.keys, req.StartAfter)
		if start < len(t.keys) && t.keys[start] == req.StartAfter {
			start++
		}
	case req.Start != "":
		start = sort.SearchStrings(t.keys, req.Start)
	}

	rows := make([]stonetable.Row, 0, limit)
	for i := start; i < len(t.keys); i++ {
		key := t.keys[i]
		if req.EndBefore != "" && key >= req.EndBefore {
			return rows, false
		}
		if len(rows) == limit {
			return rows, true
		}

		families := t.rows[key]
		row := stonetable.Row{Key: key, Columns: make(map[string]stonetable.Qualifier)}
		if req.Family == "" {
			for fam, quals := range families {
				row.Columns[fam] = cloneQualifier(quals)
			}
		} else if quals, ok := families[req.Family]; ok {
			row.Columns[req.Family] = cloneQualifier(quals)
		}
		if len(row.Columns) == 0 {
			// row has nothing under the requested family
			continue
		}
		rows = append(rows, row)
	}
	return rows, false
}

// cloneQualifier copies qualifier values out from under the engine lock.
func cloneQualifier(q stonetable.Qualifier) stonetable.Qualifier {
	out := make(stonetable.Qualifier, len(q))
	for name, value := range q {
		out[name] = value
	}
	return out
}
