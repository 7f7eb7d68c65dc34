package harness

// SplitBoundaries returns the pre-split key boundaries for a decimal-keyed
// table: one two-byte big-endian boundary per leading digit '1' through '9',
// producing ten initial partitions for parallel ingestion.
func SplitBoundaries() []string {
	splits := make([]string, 0, 9)
	for i := 1; i < 10; i++ {
		split := '0' + i
		splits = append(splits, string([]byte{byte(split >> 8), byte(split)}))
	}
	return splits
}
