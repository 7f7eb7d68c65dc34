package harness

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

// previewLimit bounds how many missing keys a report renders.
const previewLimit = 50

// rowScanner is the lazy, forward-only row sequence the verifier consumes.
// The client's Scanner satisfies it.
type rowScanner interface {
	Next() bool
	Row() *stonetable.Row
	Err() error
	Close() error
}

// Report is the outcome of a verification pass. The run passes iff Missing
// is empty.
type Report struct {
	RowsObserved  int64
	CellsObserved int64
	Missing       []int
}

// Passed reports whether every expected row was observed.
func (r *Report) Passed() bool {
	return len(r.Missing) == 0
}

func (r *Report) String() string {
	return fmt.Sprintf("rows=%d cells=%d missing=%d", r.RowsObserved, r.CellsObserved, len(r.Missing))
}

// BulkVerifier scans a table back and diffs what it sees against the
// expected key set.
type BulkVerifier struct {
	progressEvery int
}

func NewBulkVerifier(progressEvery int) *BulkVerifier {
	if progressEvery <= 0 {
		progressEvery = 10_000
	}
	return &BulkVerifier{progressEvery: progressEvery}
}

// Verify exhausts the scanner, counting rows and cells and recording each
// row's originating index, then reports expected − observed. The scanner is
// closed on every exit path.
func (v *BulkVerifier) Verify(scanner rowScanner, expected *KeySet) (*Report, error) {
	defer func() {
		if err := scanner.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close scanner")
		}
	}()

	observed := NewKeySet()
	report := &Report{}
	var lastKey string

	for scanner.Next() {
		row := scanner.Row()
		report.RowsObserved++
		lastKey = row.Key

		index, err := strconv.Atoi(row.Key)
		if err != nil {
			return nil, fmt.Errorf("row key %q is not a row index: %w", row.Key, err)
		}
		observed.Add(index)

		report.CellsObserved += int64(row.CellCount())

		if report.RowsObserved%int64(v.progressEvery) == 0 {
			log.Info().Msgf("Saw row %s", row.Key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	log.Info().Msgf("Last row seen: %s", lastKey)

	report.Missing = expected.Diff(observed)

	log.Info().Msgf("Saw %d rows", report.RowsObserved)
	log.Info().Msgf("Saw %d cells", report.CellsObserved)
	if len(report.Missing) > 0 {
		log.Error().Msgf("Missing %d rows: %s", len(report.Missing), previewKeys(report.Missing, previewLimit))
	}
	return report, nil
}
