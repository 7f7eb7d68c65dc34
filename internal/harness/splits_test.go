package harness

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitBoundaries(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	splits := SplitBoundaries()
	req.Len(splits, 9)
	req.True(sort.StringsAreSorted(splits))

	for i, s := range splits {
		req.Len(s, 2, "boundary %d must be two bytes", i)
		// big-endian encoding of '1'..'9': high byte first
		req.Equal(byte(0), s[0])
		req.Equal(byte('1'+i), s[1])
	}
}
