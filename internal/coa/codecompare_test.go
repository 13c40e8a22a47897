package coa

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareCodesNumericSegments(t *testing.T) {
	codes := []string{"1.10", "1.2", "1", "2.1", "1.2.3", "10"}
	sort.Slice(codes, func(i, j int) bool { return CompareCodes(codes[i], codes[j]) < 0 })
	require.Equal(t, []string{"1", "1.2", "1.2.3", "1.10", "2.1", "10"}, codes)
}

func TestCompareCodesMixedSegments(t *testing.T) {
	require.Negative(t, CompareCodes("1.a", "1.b"))
	require.Negative(t, CompareCodes("1.2", "1.2.1"))
	require.Zero(t, CompareCodes("1.2", "1.2"))
	require.Positive(t, CompareCodes("1.10", "1.9"))
}
