package harness

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

//go:generate mockgen -destination=writer_mock.go -package=harness -source=writer.go

// mutator is the batched-mutation surface the writer drives. The client's
// Table satisfies it.
type mutator interface {
	Batch(rows []stonetable.Row) ([]protocol.BatchResult, error)
}

// BulkWriter loads synthetic rows into a table: decimal-string keys derived
// from the row index, a fixed number of qualifiers per row, fixed-length
// pseudo-random values. Rows are buffered and submitted as batched
// mutations; a failed batch is logged and skipped, never retried. The
// verifier is what detects the loss.
type BulkWriter struct {
	table         mutator
	family        string
	batchSize     int
	valueSize     int
	progressEvery int
	rng           *rand.Rand
}

type WriterConfig struct {
	Table        mutator
	ColumnFamily string
	BatchSize    int
	ValueSize    int
	// ProgressEvery is how often cumulative progress is logged, in entries.
	ProgressEvery int
	// Seed feeds the value generator; runs are reproducible for a given seed.
	Seed int64
}

func (c *WriterConfig) validate() error {
	var errGrp []error
	if c.Table == nil {
		errGrp = append(errGrp, errors.New("table is required"))
	}
	if c.ColumnFamily == "" {
		errGrp = append(errGrp, errors.New("column family is required"))
	}
	if c.BatchSize <= 0 {
		errGrp = append(errGrp, errors.New("batch size must be positive"))
	}
	if c.ValueSize <= 0 {
		errGrp = append(errGrp, errors.New("value size must be positive"))
	}
	if c.ProgressEvery <= 0 {
		errGrp = append(errGrp, errors.New("progress interval must be positive"))
	}
	return errors.Join(errGrp...)
}

func NewBulkWriter(cfg *WriterConfig) (*BulkWriter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &BulkWriter{
		table:         cfg.Table,
		family:        cfg.ColumnFamily,
		batchSize:     cfg.BatchSize,
		valueSize:     cfg.ValueSize,
		progressEvery: cfg.ProgressEvery,
		rng:           rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Write loads rowCount rows of colsPerRow cells each and returns the number
// of entries submitted plus the expected key set for verification. Batch
// failures are not errors; only invalid row or column counts are.
func (w *BulkWriter) Write(rowCount, colsPerRow int) (int64, *KeySet, error) {
	if rowCount <= 0 || colsPerRow <= 0 {
		return 0, nil, fmt.Errorf("row and column counts must be positive")
	}

	expected := NewKeySet()
	var entriesWritten int64
	var lastReported int64
	batch := make([]stonetable.Row, 0, w.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		results, err := w.table.Batch(batch)
		if err != nil {
			// a stress load tolerates partial loss; the verifier reports it
			log.Error().Err(err).Msg("Failed to write batch")
			log.Info().Msgf("Batch results: %s", formatResults(results))
		}
		entriesWritten += int64(len(batch))
		batch = batch[:0]

		// report whenever a progress threshold was crossed, whether or not
		// the batch size divides the interval
		if milestone := entriesWritten / int64(w.progressEvery); milestone > lastReported {
			lastReported = milestone
			log.Info().Msgf("Wrote %d entries", entriesWritten)
		}
	}

	for i := 0; i < rowCount; i++ {
		expected.Add(i)
		row := stonetable.Row{
			Key:     strconv.Itoa(i),
			Columns: map[string]stonetable.Qualifier{w.family: w.buildQualifiers(colsPerRow)},
		}
		batch = append(batch, row)
		if len(batch) == w.batchSize {
			flush()
		}
	}
	// trailing partial batch
	flush()

	log.Info().Msgf("Wrote %d entries in total", entriesWritten)
	return entriesWritten, expected, nil
}

func (w *BulkWriter) buildQualifiers(cols int) stonetable.Qualifier {
	quals := make(stonetable.Qualifier, cols)
	for j := 0; j < cols; j++ {
		value := make([]byte, w.valueSize)
		w.rng.Read(value)
		quals[strconv.Itoa(j)] = value
	}
	return quals
}

func formatResults(results []protocol.BatchResult) string {
	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	return fmt.Sprintf("%d items, %d failed", len(results), failed)
}
