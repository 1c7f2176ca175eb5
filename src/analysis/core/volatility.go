package core

import (
	"math"
	"sort"

	"gold-cycles/src/models"
)

// -----------------------------------------------------------------------------

// TrueRanges computes the true range per bar: the widest of high-low,
// high-previous close and low-previous close. The first bar has no previous
// close and stays NaN.
func TrueRanges(bars []models.MPriceBar) []float64 {
	tr := make([]float64, len(bars))

	for i, b := range bars {
		if i == 0 {
			tr[i] = math.NaN()
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(math.Abs(b.High-b.Low),
			math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}

	return tr
}

// -----------------------------------------------------------------------------

// RollingMean computes the trailing simple moving average over the given
// window. A result is defined only when the full window is present and free of
// NaN values, matching a rolling mean without minimum-periods relaxation: the
// first window-1 entries are always NaN, and any NaN inside the window
// propagates.
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))

	for i := range values {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		valid := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}
		if !valid {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}

	return out
}

// -----------------------------------------------------------------------------

// Percentile returns the p-th percentile (p as a fraction in [0,1]) of the
// values using linear interpolation between closest ranks. NaN entries are
// ignored; an input with no usable values yields NaN.
func Percentile(values []float64, p float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}

	sort.Float64s(clean)

	rank := p * float64(len(clean)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return clean[lower]
	}
	frac := rank - float64(lower)
	return clean[lower] + (clean[upper]-clean[lower])*frac
}

// -----------------------------------------------------------------------------

// CategorizeVolatility buckets each volatility value into ordinal categories
// by dataset-relative percentile thresholds: 1 when at or below the low
// threshold, 3 when at or above the high threshold, 2 otherwise. The low test
// runs first, so when every value is identical both thresholds coincide and
// everything lands in category 1. NaN inputs stay uncategorized (0), and a
// series with no usable values yields all zeros.
func CategorizeVolatility(values []float64, lowPct, highPct float64) []int {
	categories := make([]int, len(values))

	lowThreshold := Percentile(values, lowPct)
	highThreshold := Percentile(values, highPct)
	if math.IsNaN(lowThreshold) {
		return categories
	}

	for i, v := range values {
		switch {
		case math.IsNaN(v):
			categories[i] = 0
		case v <= lowThreshold:
			categories[i] = 1
		case v >= highThreshold:
			categories[i] = 3
		default:
			categories[i] = 2
		}
	}

	return categories
}
