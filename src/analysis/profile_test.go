package analysis

import (
	"math"
	"reflect"
	"testing"
	"time"

	"gold-cycles/src/logger"
	"gold-cycles/src/models"
)

func newTestFacade() *ProfileFacade {
	cfg := &models.MConfig{
		Analysis: models.MAnalysisConfig{
			VolatilityWindow: 14,
			LowPercentile:    0.33,
			HighPercentile:   0.67,
			PatternLength:    3,
			PatternTopN:      5,
		},
	}
	return NewProfileFacade(cfg, logger.NewLogger("ERROR", "test"))
}

func dayBar(year int, month time.Month, day int, open, high, low, close float64) models.MPriceBar {
	return models.MPriceBar{
		Timestamp: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Open:      open, High: high, Low: low, Close: close,
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_MonthScenario(t *testing.T) {
	f := newTestFacade()
	bars := []models.MPriceBar{
		dayBar(2020, time.January, 1, 100, 105, 99, 104),
		dayBar(2020, time.January, 2, 104, 106, 103, 103),
		dayBar(2020, time.February, 1, 103, 110, 102, 109),
	}

	summaries := f.Aggregate(f.Enrich(bars), ProfileMonth, nil)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(summaries))
	}

	jan := summaries[0]
	if jan.Key != 1 || jan.Rows != 2 {
		t.Fatalf("group 1: want key=1 rows=2, got key=%d rows=%d", jan.Key, jan.Rows)
	}
	if jan.GreenProbability != 0.5 || jan.RedProbability != 0.5 {
		t.Errorf("group 1 probabilities: want 0.5/0.5, got %f/%f", jan.GreenProbability, jan.RedProbability)
	}

	feb := summaries[1]
	if feb.Key != 2 || feb.Rows != 1 {
		t.Fatalf("group 2: want key=2 rows=1, got key=%d rows=%d", feb.Key, feb.Rows)
	}
	if feb.GreenProbability != 1.0 {
		t.Errorf("group 2 green probability: want 1.0, got %f", feb.GreenProbability)
	}
	if feb.ReturnStdDev != 0 {
		t.Errorf("single-row group stddev must be 0, got %f", feb.ReturnStdDev)
	}
	wantFebReturn := (109.0/103.0 - 1) * 100
	if math.Abs(feb.AvgReturn-wantFebReturn) > 1e-9 {
		t.Errorf("group 2 avg return: want %f, got %f", wantFebReturn, feb.AvgReturn)
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_ProbabilitiesSumToOne(t *testing.T) {
	f := newTestFacade()
	bars := make([]models.MPriceBar, 0, 40)
	for i := 0; i < 40; i++ {
		open := 100.0 + float64(i%7)
		close := 100.0 + float64((i*3)%11)
		bars = append(bars, shiftDays(dayBar(2021, time.January, 1, open, close+2, open-2, close), i))
	}

	for _, kind := range AllProfileKinds() {
		for _, s := range f.Aggregate(f.Enrich(bars), kind, nil) {
			if math.Abs(s.GreenProbability+s.RedProbability-1.0) > 1e-12 {
				t.Errorf("%s key %d: green %f + red %f != 1", kind, s.Key, s.GreenProbability, s.RedProbability)
			}
		}
	}
}

// shiftDays moves a bar forward by n days.
func shiftDays(b models.MPriceBar, n int) models.MPriceBar {
	b.Timestamp = b.Timestamp.AddDate(0, 0, n)
	return b
}

// -----------------------------------------------------------------------------

func TestAggregate_SortedByKeyAscending(t *testing.T) {
	f := newTestFacade()
	// Months out of order in the calendar sense (Dec, Mar, Jul of one year).
	bars := []models.MPriceBar{
		dayBar(2019, time.December, 2, 100, 102, 99, 101),
		dayBar(2019, time.March, 4, 101, 103, 100, 102),
		dayBar(2019, time.July, 1, 102, 104, 101, 103),
	}

	summaries := f.Aggregate(f.Enrich(bars), ProfileMonth, nil)
	keys := make([]int, len(summaries))
	for i, s := range summaries {
		keys[i] = s.Key
	}
	if !reflect.DeepEqual(keys, []int{3, 7, 12}) {
		t.Errorf("keys must be the sorted distinct months present, got %v", keys)
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_DayKindExcludesWeekends(t *testing.T) {
	f := newTestFacade()
	// 2024-03-15 Fri, 16 Sat, 17 Sun, 18 Mon.
	bars := []models.MPriceBar{
		dayBar(2024, time.March, 15, 100, 102, 99, 101),
		dayBar(2024, time.March, 16, 101, 103, 100, 102),
		dayBar(2024, time.March, 17, 102, 104, 101, 103),
		dayBar(2024, time.March, 18, 103, 105, 102, 104),
	}

	summaries := f.Aggregate(f.Enrich(bars), ProfileDay, nil)
	for _, s := range summaries {
		if s.Key > 5 {
			t.Errorf("weekend key %d leaked into the day profile", s.Key)
		}
	}
	if len(summaries) != 2 { // Friday and Monday
		t.Errorf("expected 2 groups (Mon, Fri), got %d", len(summaries))
	}

	// The same bars keep their weekend groups under every other kind.
	monthSummaries := f.Aggregate(f.Enrich(bars), ProfileMonth, nil)
	if len(monthSummaries) != 1 || monthSummaries[0].Rows != 4 {
		t.Error("weekend exclusion must apply to the day grouping only")
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_DateRangeInclusive(t *testing.T) {
	f := newTestFacade()
	bars := []models.MPriceBar{
		dayBar(2020, time.January, 1, 100, 102, 99, 101),
		dayBar(2020, time.January, 2, 101, 103, 100, 102),
		dayBar(2020, time.January, 3, 102, 104, 101, 103),
	}

	dr := &models.MDateRange{
		Start: time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, time.January, 3, 0, 0, 0, 0, time.UTC),
	}
	summaries := f.Aggregate(f.Enrich(bars), ProfileMonth, dr)
	if len(summaries) != 1 || summaries[0].Rows != 2 {
		t.Fatalf("inclusive range should keep both boundary bars, got %+v", summaries)
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_EmptyInputsYieldEmptySummaries(t *testing.T) {
	f := newTestFacade()

	if got := f.Aggregate(nil, ProfileMonth, nil); len(got) != 0 {
		t.Errorf("nil rows: want empty, got %d", len(got))
	}

	bars := []models.MPriceBar{dayBar(2020, time.January, 1, 100, 102, 99, 101)}
	dr := &models.MDateRange{
		Start: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(1990, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	if got := f.Aggregate(f.Enrich(bars), ProfileMonth, dr); len(got) != 0 {
		t.Errorf("out-of-range filter: want empty, got %d", len(got))
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_Idempotent(t *testing.T) {
	f := newTestFacade()
	bars := make([]models.MPriceBar, 0, 30)
	for i := 0; i < 30; i++ {
		open := 100.0 + float64(i%5)
		close := 100.0 + float64((i*7)%9)
		bars = append(bars, shiftDays(dayBar(2022, time.June, 1, open, close+1, open-1, close), i))
	}

	rows := f.Enrich(bars)
	first := f.Aggregate(rows, ProfileWeek, nil)
	second := f.Aggregate(rows, ProfileWeek, nil)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical summaries")
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_SessionDefaultsWithoutTimes(t *testing.T) {
	f := newTestFacade()
	bars := []models.MPriceBar{
		dayBar(2020, time.January, 1, 100, 102, 99, 101),
		dayBar(2020, time.January, 2, 101, 103, 100, 102),
	}

	summaries := f.Aggregate(f.Enrich(bars), ProfileSession, nil)
	if len(summaries) != 1 || summaries[0].Key != SessionRegular {
		t.Fatalf("date-only series must collapse to the regular session, got %+v", summaries)
	}
}

func TestAggregate_SessionWithIntradayTimes(t *testing.T) {
	f := newTestFacade()
	at := func(hour, min int) models.MPriceBar {
		return models.MPriceBar{
			Timestamp: time.Date(2020, time.January, 2, hour, min, 0, 0, time.UTC),
			Open:      100, High: 101, Low: 99, Close: 100.5,
		}
	}
	bars := []models.MPriceBar{at(8, 0), at(9, 30), at(15, 59), at(16, 0)}

	summaries := f.Aggregate(f.Enrich(bars), ProfileSession, nil)
	if len(summaries) != 3 {
		t.Fatalf("expected all three sessions, got %d", len(summaries))
	}
	wantRows := map[int]int{SessionPreMarket: 1, SessionRegular: 2, SessionPostMarket: 1}
	for _, s := range summaries {
		if s.Rows != wantRows[s.Key] {
			t.Errorf("session %d: want %d rows, got %d", s.Key, wantRows[s.Key], s.Rows)
		}
	}
}

// -----------------------------------------------------------------------------

func TestAggregate_GreenReturnAverages(t *testing.T) {
	f := newTestFacade()
	bars := []models.MPriceBar{
		dayBar(2020, time.January, 1, 100, 102, 99, 101),  // green, no return
		dayBar(2020, time.January, 2, 100, 103, 99, 102),  // green, +0.990...
		dayBar(2020, time.January, 3, 103, 104, 100, 101), // red, -0.980...
	}

	s := f.Aggregate(f.Enrich(bars), ProfileMonth, nil)[0]

	wantGreen := (102.0/101.0 - 1) * 100
	if math.Abs(s.AvgGreenReturn-wantGreen) > 1e-9 {
		t.Errorf("avg green return: want %f, got %f", wantGreen, s.AvgGreenReturn)
	}
	wantRed := (101.0/102.0 - 1) * 100
	if math.Abs(s.AvgRedReturn-wantRed) > 1e-9 {
		t.Errorf("avg red return: want %f, got %f", wantRed, s.AvgRedReturn)
	}

	// All-green group: the red side averages to 0.
	greenOnly := f.Aggregate(f.Enrich(bars[:2]), ProfileMonth, nil)[0]
	if greenOnly.AvgRedReturn != 0 {
		t.Errorf("group without red rows must report 0, got %f", greenOnly.AvgRedReturn)
	}
}
