package harness

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testWriterConfig(table mutator, batchSize int) *WriterConfig {
	return &WriterConfig{
		Table:         table,
		ColumnFamily:  "cf",
		BatchSize:     batchSize,
		ValueSize:     50,
		ProgressEvery: 50_000,
		Seed:          1,
	}
}

func okResults(rows []stonetable.Row) []protocol.BatchResult {
	results := make([]protocol.BatchResult, len(rows))
	for i, r := range rows {
		results[i] = protocol.BatchResult{Key: r.Key, OK: true}
	}
	return results
}

// no t.Parallel: swaps the global logger to observe progress output
func TestBulkWriter_Progress(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	table := NewMockmutator(ctrl)
	table.EXPECT().Batch(gomock.Any()).DoAndReturn(func(rows []stonetable.Row) ([]protocol.BatchResult, error) {
		return okResults(rows), nil
	}).AnyTimes()

	// batch size 7 never lands exactly on the interval of 10; the crossing
	// at 14 entries must still be reported
	cfg := testWriterConfig(table, 7)
	cfg.ProgressEvery = 10
	w, err := NewBulkWriter(cfg)
	req.NoError(err)

	_, _, err = w.Write(20, 1)
	req.NoError(err)
	req.Contains(buf.String(), "Wrote 14 entries")
	req.Contains(buf.String(), "Wrote 20 entries")
}

func TestNewBulkWriter(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	got, err := NewBulkWriter(&WriterConfig{})
	req.Error(err)
	req.Nil(got)
}

func TestBulkWriter_Write(t *testing.T) {
	t.Parallel()

	t.Run("full batches trigger exactly one call each", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		table := NewMockmutator(ctrl)
		// 10 rows at batch size 5: exactly two calls, no trailing flush
		table.EXPECT().Batch(gomock.Len(5)).DoAndReturn(func(rows []stonetable.Row) ([]protocol.BatchResult, error) {
			return okResults(rows), nil
		}).Times(2)

		w, err := NewBulkWriter(testWriterConfig(table, 5))
		req.NoError(err)

		written, expected, err := w.Write(10, 2)
		req.NoError(err)
		req.Equal(int64(10), written)
		req.Equal(10, expected.Len())
	})

	t.Run("trailing partial batch triggers one more call", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		table := NewMockmutator(ctrl)
		gomock.InOrder(
			table.EXPECT().Batch(gomock.Len(5)).DoAndReturn(func(rows []stonetable.Row) ([]protocol.BatchResult, error) {
				return okResults(rows), nil
			}).Times(2),
			table.EXPECT().Batch(gomock.Len(2)).DoAndReturn(func(rows []stonetable.Row) ([]protocol.BatchResult, error) {
				return okResults(rows), nil
			}),
		)

		w, err := NewBulkWriter(testWriterConfig(table, 5))
		req.NoError(err)

		written, _, err := w.Write(12, 2)
		req.NoError(err)
		req.Equal(int64(12), written)
	})

	t.Run("rows carry decimal keys and fixed-size values", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var captured []stonetable.Row
		table := NewMockmutator(ctrl)
		table.EXPECT().Batch(gomock.Any()).DoAndReturn(func(rows []stonetable.Row) ([]protocol.BatchResult, error) {
			captured = append(captured, rows...)
			return okResults(rows), nil
		}).AnyTimes()

		w, err := NewBulkWriter(testWriterConfig(table, 4))
		req.NoError(err)

		_, _, err = w.Write(7, 3)
		req.NoError(err)
		req.Len(captured, 7)

		req.Equal("0", captured[0].Key)
		req.Equal("6", captured[6].Key)
		quals := captured[0].Columns["cf"]
		req.Len(quals, 3)
		for _, name := range []string{"0", "1", "2"} {
			req.Len(quals[name], 50)
		}
	})

	t.Run("batch failure is non-fatal and non-retried", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		calls := 0
		table := NewMockmutator(ctrl)
		table.EXPECT().Batch(gomock.Any()).DoAndReturn(func(rows []stonetable.Row) ([]protocol.BatchResult, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("node down")
			}
			return okResults(rows), nil
		}).Times(4)

		w, err := NewBulkWriter(testWriterConfig(table, 5))
		req.NoError(err)

		written, expected, err := w.Write(20, 2)
		req.NoError(err, "batch failures must not abort the run")
		req.Equal(int64(20), written, "failed entries still count as submitted")
		req.Equal(20, expected.Len(), "expected set tracks intent, not outcome")
		req.Equal(4, calls, "failed batch is not retried")
	})

	t.Run("non-positive counts rejected", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		w, err := NewBulkWriter(testWriterConfig(NewMockmutator(ctrl), 5))
		req.NoError(err)

		_, _, err = w.Write(0, 2)
		req.Error(err)
		_, _, err = w.Write(2, 0)
		req.Error(err)
	})
}
