package core

import (
	"math"
	"testing"

	"gold-cycles/src/models"
)

func TestTrueRanges(t *testing.T) {
	bars := []models.MPriceBar{
		bar(1, 100, 105, 99, 104),
		bar(2, 104, 106, 103, 103), // h-l=3, |h-pc|=2, |l-pc|=1 -> 3
		bar(3, 103, 110, 102, 109), // h-l=8, |h-pc|=7, |l-pc|=1 -> 8
	}

	tr := TrueRanges(bars)
	if !math.IsNaN(tr[0]) {
		t.Errorf("first true range should be missing, got %f", tr[0])
	}
	if tr[1] != 3 {
		t.Errorf("tr[1]: want 3, got %f", tr[1])
	}
	if tr[2] != 8 {
		t.Errorf("tr[2]: want 8, got %f", tr[2])
	}
}

func TestTrueRanges_GapDominates(t *testing.T) {
	// Gap down: previous close far above today's range.
	bars := []models.MPriceBar{
		bar(1, 100, 101, 99, 100),
		bar(2, 90, 91, 89, 90),
	}
	tr := TrueRanges(bars)
	if tr[1] != 11 { // |high-prevClose| = |91-100|
		t.Errorf("gap true range: want 11, got %f", tr[1])
	}
}

func TestRollingMean_WindowSemantics(t *testing.T) {
	nan := math.NaN()
	values := []float64{nan, 1, 2, 3, 4}

	out := RollingMean(values, 2)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Error("entries before the window fills (or touching NaN) must be missing")
	}
	for i, want := range map[int]float64{2: 1.5, 3: 2.5, 4: 3.5} {
		if math.Abs(out[i]-want) > 1e-12 {
			t.Errorf("out[%d]: want %f, got %f", i, want, out[i])
		}
	}
}

func TestRollingMean_NoPartialWindows(t *testing.T) {
	values := []float64{1, 2, 3}
	out := RollingMean(values, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Error("first window-1 results must be missing, not partial averages")
	}
	if out[2] != 2 {
		t.Errorf("out[2]: want 2, got %f", out[2])
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	tests := []struct {
		values []float64
		p      float64
		want   float64
	}{
		{[]float64{0, 10}, 0.5, 5},
		{[]float64{1, 2, 3, 4}, 0, 1},
		{[]float64{1, 2, 3, 4}, 1, 4},
		{[]float64{1, 2, 3}, 0.5, 2},
		{[]float64{1, 2}, 0.25, 1.25},
	}
	for _, tt := range tests {
		got := Percentile(tt.values, tt.p)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Percentile(%v, %.2f): want %f, got %f", tt.values, tt.p, got, tt.want)
		}
	}
}

func TestPercentile_IgnoresNaN(t *testing.T) {
	got := Percentile([]float64{math.NaN(), 0, 10, math.NaN()}, 0.5)
	if got != 5 {
		t.Errorf("want 5, got %f", got)
	}
	if !math.IsNaN(Percentile([]float64{math.NaN()}, 0.5)) {
		t.Error("all-NaN input must yield NaN")
	}
}

func TestCategorizeVolatility(t *testing.T) {
	cats := CategorizeVolatility([]float64{1, 2, 3}, 0.33, 0.67)
	want := []int{1, 2, 3}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("cats[%d]: want %d, got %d", i, want[i], cats[i])
		}
	}
}

func TestCategorizeVolatility_AllEqualCollapsesToLow(t *testing.T) {
	// Coinciding thresholds: the <= low test runs first, so everything is 1.
	cats := CategorizeVolatility([]float64{5, 5, 5}, 0.33, 0.67)
	for i, c := range cats {
		if c != 1 {
			t.Errorf("cats[%d]: want 1, got %d", i, c)
		}
	}
}

func TestCategorizeVolatility_MissingStaysMissing(t *testing.T) {
	cats := CategorizeVolatility([]float64{math.NaN(), 1, 2, 3}, 0.33, 0.67)
	if cats[0] != 0 {
		t.Errorf("NaN volatility must stay uncategorized, got %d", cats[0])
	}

	empty := CategorizeVolatility([]float64{math.NaN(), math.NaN()}, 0.33, 0.67)
	for i, c := range empty {
		if c != 0 {
			t.Errorf("all-missing series: cats[%d] want 0, got %d", i, c)
		}
	}
}
