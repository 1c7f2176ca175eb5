package core

import "math"

// -----------------------------------------------------------------------------

// Mean computes the arithmetic mean, 0 for an empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// -----------------------------------------------------------------------------

// MeanStd computes mean and sample standard deviation (n-1 denominator).
// A single value has a standard deviation of 0 rather than NaN so group
// statistics stay total for one-row groups.
func MeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	mean := Mean(data)
	if len(data) == 1 {
		return mean, 0
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)-1))
	return mean, std
}

// -----------------------------------------------------------------------------

// ModalCategory returns the most frequent positive category; ties resolve to
// the lowest category value. Uncategorized entries (0) are ignored, and an
// input without any categorized entry yields 0.
func ModalCategory(categories []int) int {
	counts := make(map[int]int)
	maxCount := 0
	for _, c := range categories {
		if c <= 0 {
			continue
		}
		counts[c]++
		if counts[c] > maxCount {
			maxCount = counts[c]
		}
	}
	if maxCount == 0 {
		return 0
	}

	mode := 0
	for c, n := range counts {
		if n == maxCount && (mode == 0 || c < mode) {
			mode = c
		}
	}
	return mode
}
