package client

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
	"github.com/stretchr/testify/require"
)

// fakeNodes backs a caller with in-memory per-node row sets so routing can
// be exercised without a live cluster.
type fakeNodes struct {
	rows      map[string]map[string]stonetable.Row // node addr -> key -> row
	batchErr  map[string]error                     // node addr -> injected failure
	calls     []string                             // node addrs in call order
	chunkSize int
}

func newFakeNodes(addrs ...string) *fakeNodes {
	f := &fakeNodes{
		rows:     make(map[string]map[string]stonetable.Row),
		batchErr: make(map[string]error),
	}
	for _, a := range addrs {
		f.rows[a] = make(map[string]stonetable.Row)
	}
	return f
}

func (f *fakeNodes) call(addr string, msgType int, request, reply any) error {
	f.calls = append(f.calls, addr)
	store, ok := f.rows[addr]
	if !ok {
		return fmt.Errorf("unknown node %s", addr)
	}

	switch msgType {
	case protocol.Batch:
		if err := f.batchErr[addr]; err != nil {
			return err
		}
		req := request.(protocol.BatchRequest)
		resp := reply.(*protocol.BatchResponse)
		for _, row := range req.Rows {
			store[row.Key] = row
			resp.Results = append(resp.Results, protocol.BatchResult{Key: row.Key, OK: true})
		}
		return nil

	case protocol.Scan:
		req := request.(protocol.ScanRequest)
		resp := reply.(*protocol.ScanResponse)
		keys := make([]string, 0, len(store))
		for k := range store {
			if req.StartAfter != "" && k <= req.StartAfter {
				continue
			}
			if req.StartAfter == "" && req.Start != "" && k < req.Start {
				continue
			}
			if req.EndBefore != "" && k >= req.EndBefore {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		limit := req.Limit
		if limit <= 0 {
			limit = f.chunkSize
		}
		if limit > 0 && len(keys) > limit {
			keys = keys[:limit]
			resp.More = true
		}
		for _, k := range keys {
			resp.Rows = append(resp.Rows, store[k])
		}
		return nil
	}
	return fmt.Errorf("unexpected message type %d", msgType)
}

func twoRangeTable(f *fakeNodes) *Table {
	return &Table{
		name:     "test",
		families: []string{"cf"},
		ranges: []stonetable.KeyRange{
			{Start: "", End: "m", Node: "node-a"},
			{Start: "m", End: "", Node: "node-b"},
		},
		call: f.call,
	}
}

func row(key string) stonetable.Row {
	return stonetable.Row{
		Key:     key,
		Columns: map[string]stonetable.Qualifier{"cf": {"0": []byte("v-" + key)}},
	}
}

func TestTable_Batch(t *testing.T) {
	t.Parallel()

	t.Run("routes rows to owning nodes and preserves order", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		table := twoRangeTable(f)

		results, err := table.Batch([]stonetable.Row{row("z"), row("a"), row("n"), row("b")})
		req.NoError(err)
		req.Len(results, 4)
		for i, key := range []string{"z", "a", "n", "b"} {
			req.True(results[i].OK)
			req.Equal(key, results[i].Key)
		}
		req.Contains(f.rows["node-a"], "a")
		req.Contains(f.rows["node-a"], "b")
		req.Contains(f.rows["node-b"], "z")
		req.Contains(f.rows["node-b"], "n")
	})

	t.Run("one request per node", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		table := twoRangeTable(f)

		_, err := table.Batch([]stonetable.Row{row("a"), row("b"), row("z")})
		req.NoError(err)
		req.Len(f.calls, 2)
	})

	t.Run("failed node marks only its rows", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		f.batchErr["node-b"] = errors.New("node down")
		table := twoRangeTable(f)

		results, err := table.Batch([]stonetable.Row{row("a"), row("z")})
		req.Error(err)
		req.Len(results, 2)
		req.True(results[0].OK)
		req.False(results[1].OK)
		req.Contains(results[1].Error, "node down")
	})

	t.Run("closed handle rejected", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		table := twoRangeTable(newFakeNodes("node-a", "node-b"))
		req.NoError(table.Close())

		_, err := table.Batch([]stonetable.Row{row("a")})
		req.ErrorIs(err, ErrTableClosed)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		table := twoRangeTable(f)

		results, err := table.Batch(nil)
		req.NoError(err)
		req.Nil(results)
		req.Empty(f.calls)
	})
}

func TestScanner(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, table *Table, keys ...string) {
		t.Helper()
		rows := make([]stonetable.Row, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, row(k))
		}
		_, err := table.Batch(rows)
		require.NoError(t, err)
	}

	t.Run("walks ranges in key order", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		table := twoRangeTable(f)
		seed(t, table, "z", "a", "n", "b")

		sc := table.Scanner("cf")
		defer sc.Close()

		var got []string
		for sc.Next() {
			got = append(got, sc.Row().Key)
		}
		req.NoError(sc.Err())
		req.Equal([]string{"a", "b", "n", "z"}, got)
	})

	t.Run("chunked fetch with continuation", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		f.chunkSize = 2
		table := twoRangeTable(f)
		seed(t, table, "a", "b", "c", "d", "e", "n", "o", "p")

		sc := table.Scanner("cf")
		defer sc.Close()

		count := 0
		for sc.Next() {
			count++
		}
		req.NoError(sc.Err())
		req.Equal(8, count)
	})

	t.Run("exhausted scanner stays exhausted", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		table := twoRangeTable(f)
		seed(t, table, "a")

		sc := table.Scanner("cf")
		for sc.Next() {
		}
		req.False(sc.Next())
		req.NoError(sc.Err())
	})

	t.Run("close mid-iteration stops the scan", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		f := newFakeNodes("node-a", "node-b")
		table := twoRangeTable(f)
		seed(t, table, "a", "b", "c")

		sc := table.Scanner("cf")
		req.True(sc.Next())
		req.NoError(sc.Close())
		req.False(sc.Next())
		req.NoError(sc.Close()) // idempotent
	})

	t.Run("empty table scans nothing", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		table := twoRangeTable(newFakeNodes("node-a", "node-b"))

		sc := table.Scanner("cf")
		defer sc.Close()
		req.False(sc.Next())
		req.NoError(sc.Err())
	})
}
