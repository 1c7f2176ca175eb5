package analysis

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"gold-cycles/src/helpers"
)

// -----------------------------------------------------------------------------
// Sequential pattern mining
// -----------------------------------------------------------------------------

// PatternCount is one fixed-length contiguous subsequence and how often it
// occurred in a series.
type PatternCount[T comparable] struct {
	Values []T `json:"values"`
	Count  int `json:"count"`
}

// -----------------------------------------------------------------------------

// MinePatterns slides a window of width k across the series with stride 1 and
// counts identical windows by exact value equality. The result is ranked by
// count descending; equal counts keep first-occurrence order. A series shorter
// than k yields an empty list, while k < 2 is a configuration error.
func MinePatterns[T comparable](series []T, k int) ([]PatternCount[T], error) {
	if k < 2 {
		return nil, helpers.NewConfigurationError("pattern length must be at least 2, got %d", k)
	}
	if len(series) < k {
		return []PatternCount[T]{}, nil
	}

	// The formatted key narrows candidates; equality of the stored values
	// decides. Distinct tuples may format identically (string elements can
	// contain the separator), so a key alone must never merge windows.
	index := make(map[string][]int)
	patterns := make([]PatternCount[T], 0)

	for i := 0; i+k <= len(series); i++ {
		window := series[i : i+k]
		key := patternKey(window)

		matched := false
		for _, at := range index[key] {
			if slices.Equal(patterns[at].Values, window) {
				patterns[at].Count++
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		index[key] = append(index[key], len(patterns))
		patterns = append(patterns, PatternCount[T]{
			Values: append([]T(nil), window...),
			Count:  1,
		})
	}

	// Stable: ties keep the first-seen order established above.
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})

	return patterns, nil
}

// -----------------------------------------------------------------------------

// TopPatterns returns the n highest-ranked patterns.
func TopPatterns[T comparable](patterns []PatternCount[T], n int) []PatternCount[T] {
	if n < 0 || n > len(patterns) {
		n = len(patterns)
	}
	return patterns[:n]
}

// -----------------------------------------------------------------------------

// patternKey formats a window into a lookup key. Formatting is not injective
// over arbitrary element types; MinePatterns compares the actual values before
// merging two windows that share a key.
func patternKey[T comparable](window []T) string {
	var b strings.Builder
	for i, v := range window {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		fmt.Fprintf(&b, "%v", v)
	}
	return b.String()
}
