package harness

import (
	"sort"
	"strconv"
	"strings"
)

// KeySet tracks the row indices a phase has seen. The writer builds the
// expected set; the verifier builds the observed set; their difference is
// the failure report.
type KeySet struct {
	indices map[int]struct{}
}

func NewKeySet() *KeySet {
	return &KeySet{indices: make(map[int]struct{})}
}

func (s *KeySet) Add(index int) {
	s.indices[index] = struct{}{}
}

func (s *KeySet) Contains(index int) bool {
	_, ok := s.indices[index]
	return ok
}

func (s *KeySet) Len() int {
	return len(s.indices)
}

// Diff returns the indices present here but absent from other, ascending.
func (s *KeySet) Diff(other *KeySet) []int {
	var missing []int
	for idx := range s.indices {
		if !other.Contains(idx) {
			missing = append(missing, idx)
		}
	}
	sort.Ints(missing)
	return missing
}

// previewKeys renders at most max indices for a report, marking truncation.
func previewKeys(indices []int, max int) string {
	if len(indices) == 0 {
		return ""
	}
	shown := indices
	truncated := false
	if len(shown) > max {
		shown = shown[:max]
		truncated = true
	}
	parts := make([]string, len(shown))
	for i, idx := range shown {
		parts[i] = strconv.Itoa(idx)
	}
	out := strings.Join(parts, ", ")
	if truncated {
		out += "..."
	}
	return out
}
