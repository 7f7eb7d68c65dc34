package client

import (
	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

// Scanner iterates a full table in ascending key order as a lazy,
// forward-only sequence: ranges are walked in key order and each range is
// fetched in chunks through the stateless continuation cursor. A Scanner
// cannot be restarted; open a fresh one to scan again.
type Scanner struct {
	table  *Table
	family string
	// limit caps the per-call chunk; <= 0 leaves it to the server (no
	// client-side cap).
	limit int

	rangeIdx     int
	cursor       string // last key seen in the current range, "" at range start
	rangeDrained bool   // current range has no rows past the buffer
	buffer       []stonetable.Row
	bufIdx       int
	current      *stonetable.Row
	err          error
	done         bool
}

// Scanner opens a full-table scan over one column family. An empty family
// scans all families. The per-call fetch size is left to the server.
func (t *Table) Scanner(family string) *Scanner {
	return &Scanner{
		table:  t,
		family: family,
	}
}

// Next advances to the next row. It returns false when the scan is exhausted,
// failed, or was closed; Err distinguishes failure from completion.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if s.table.closed.Load() {
		s.err = ErrTableClosed
		return false
	}

	for {
		if s.bufIdx < len(s.buffer) {
			s.current = &s.buffer[s.bufIdx]
			s.bufIdx++
			s.cursor = s.current.Key
			return true
		}

		if s.rangeDrained {
			s.rangeIdx++
			s.cursor = ""
			s.rangeDrained = false
		}
		if s.rangeIdx >= len(s.table.ranges) {
			s.done = true
			return false
		}

		r := s.table.ranges[s.rangeIdx]
		req := protocol.ScanRequest{
			Table:     s.table.name,
			Family:    s.family,
			EndBefore: r.End,
			Limit:     s.limit,
		}
		if s.cursor != "" {
			req.StartAfter = s.cursor
		} else {
			req.Start = r.Start
		}

		var resp protocol.ScanResponse
		if err := s.table.call(r.Node, protocol.Scan, req, &resp); err != nil {
			s.err = err
			return false
		}

		s.buffer = resp.Rows
		s.bufIdx = 0
		s.rangeDrained = !resp.More
	}
}

// Row returns the row Next advanced to.
func (s *Scanner) Row() *stonetable.Row {
	return s.current
}

// Err reports the first error encountered while scanning.
func (s *Scanner) Err() error {
	return s.err
}

// Close terminates the iteration. The scan cursor is stateless, so there is
// no server-side state to release; closing only prevents further fetches.
// Close is idempotent.
func (s *Scanner) Close() error {
	s.done = true
	s.buffer = nil
	return nil
}
