package protocol

import (
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

// RegisterRequest is sent by a storage node to the coordinator when it comes
// online.
type RegisterRequest struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// TablesResponse lists the table names known to the coordinator.
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// CreateRequest creates a table with its column families and optional
// pre-split boundaries.
type CreateRequest struct {
	Table    string   `json:"table"`
	Families []string `json:"families"`
	Splits   []string `json:"splits,omitempty"`
}

// TableRequest names a table for DISABLE, DROP and ROUTES operations.
type TableRequest struct {
	Table string `json:"table"`
}

// RoutesResponse carries the partition map of an enabled table: contiguous
// key ranges in ascending order, each with its serving node address.
type RoutesResponse struct {
	Table    string                `json:"table"`
	Families []string              `json:"families"`
	Ranges   []stonetable.KeyRange `json:"ranges"`
}

// BatchRequest submits multiple row mutations in one call.
type BatchRequest struct {
	Table string           `json:"table"`
	Rows  []stonetable.Row `json:"rows"`
}

// BatchResult is the per-item outcome of a batched mutation. The response
// array has the same length and order as the request rows.
type BatchResult struct {
	Key   string `json:"key"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchResponse carries the per-item outcome array for a BatchRequest.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}

// ScanRequest fetches one chunk of a range scan. Start is the inclusive
// lower bound of the scanned range; StartAfter is the stateless continuation
// cursor and takes precedence when set; rows strictly greater than it are
// returned, in ascending key order. A Limit <= 0 leaves the chunk size to
// the server.
type ScanRequest struct {
	Table      string `json:"table"`
	Family     string `json:"family,omitempty"`
	Start      string `json:"start,omitempty"`
	StartAfter string `json:"startAfter,omitempty"`
	EndBefore  string `json:"endBefore,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// ScanResponse is one chunk of scan results. More signals that the range has
// rows beyond the last one returned.
type ScanResponse struct {
	Rows []stonetable.Row `json:"rows"`
	More bool             `json:"more"`
}
