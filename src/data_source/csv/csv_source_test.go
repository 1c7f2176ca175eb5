package csv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gold-cycles/src/helpers"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"
)

func newTestSource(t *testing.T, timeframe, content string) *CSVBarSource {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, timeframe+".csv"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write CSV fixture: %v", err)
	}

	cfg := &models.MConfig{}
	cfg.Storage.DataDir = dir
	cfg.Data.SymbolPrefix = "GC"
	return NewCSVBarSource(cfg, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestFetchBars_ParsesAndNormalizes(t *testing.T) {
	src := newTestSource(t, "D", `Date,Symbol,Open,High,Low,Close
2024-01-02,GC=F,"2,063.40","2,075.00","2,057.10","2,073.40"
2024-01-03,GC=F,2073.40,2079.90,2064.50,2071.80
`)

	bars, err := src.FetchBars("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}

	first := bars[0]
	if first.Open != 2063.40 || first.Close != 2073.40 {
		t.Errorf("thousands separators must be stripped, got open=%f close=%f", first.Open, first.Close)
	}
	want := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("timestamp: want %v, got %v", want, first.Timestamp)
	}
}

// -----------------------------------------------------------------------------

func TestFetchBars_CaseInsensitiveHeader(t *testing.T) {
	src := newTestSource(t, "D", `DATE,open,HIGH,Low,close
2024-01-02,100,105,99,104
`)
	bars, err := src.FetchBars("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 || bars[0].High != 105 {
		t.Errorf("header matching must ignore case, got %+v", bars)
	}
}

// -----------------------------------------------------------------------------

func TestFetchBars_SymbolPrefixFilter(t *testing.T) {
	src := newTestSource(t, "D", `Date,Symbol,Open,High,Low,Close
2024-01-02,GC=F,100,105,99,104
2024-01-02,SI=F,24,25,23,24.5
2024-01-03,GCM24,104,106,103,103
`)

	bars, err := src.FetchBars("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("non-matching symbols must be skipped, got %d bars", len(bars))
	}
	for _, b := range bars {
		if b.Symbol[:2] != "GC" {
			t.Errorf("unexpected symbol %q survived the filter", b.Symbol)
		}
	}
}

// -----------------------------------------------------------------------------

func TestFetchBars_SortsAndDeduplicates(t *testing.T) {
	src := newTestSource(t, "D", `Date,Open,High,Low,Close
2024-01-03,104,106,103,103
2024-01-02,100,105,99,104
2024-01-02,999,999,999,999
`)

	bars, err := src.FetchBars("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("duplicate timestamp must be dropped, got %d bars", len(bars))
	}
	if !bars[0].Timestamp.Before(bars[1].Timestamp) {
		t.Error("bars must come back in ascending timestamp order")
	}
	if bars[0].Open != 100 {
		t.Errorf("first occurrence wins on duplicates, got open=%f", bars[0].Open)
	}
}

// -----------------------------------------------------------------------------

func TestFetchBars_MissingColumnFailsFast(t *testing.T) {
	src := newTestSource(t, "D", `Date,Open,High,Low
2024-01-02,100,105,99
`)
	_, err := src.FetchBars("D")
	if !helpers.IsMalformedInputError(err) {
		t.Errorf("missing close column: want malformed input error, got %v", err)
	}
}

func TestFetchBars_BadNumericFailsFast(t *testing.T) {
	src := newTestSource(t, "D", `Date,Open,High,Low,Close
2024-01-02,100,105,99,104
2024-01-03,abc,106,103,103
`)
	_, err := src.FetchBars("D")
	if !helpers.IsMalformedInputError(err) {
		t.Errorf("non-numeric open: want malformed input error, got %v", err)
	}
}

func TestFetchBars_BadTimestampFailsFast(t *testing.T) {
	src := newTestSource(t, "D", `Date,Open,High,Low,Close
not-a-date,100,105,99,104
`)
	_, err := src.FetchBars("D")
	if !helpers.IsMalformedInputError(err) {
		t.Errorf("bad timestamp: want malformed input error, got %v", err)
	}
}

// -----------------------------------------------------------------------------

func TestFetchBars_MissingFile(t *testing.T) {
	src := newTestSource(t, "D", "Date,Open,High,Low,Close\n")
	_, err := src.FetchBars("W")
	if err == nil {
		t.Fatal("absent timeframe file must be a data source error")
	}
}

func TestFetchBars_IntradayTimestamps(t *testing.T) {
	src := newTestSource(t, "1h", `Date,Open,High,Low,Close
2024-01-02 09:30:00,100,101,99,100.5
2024-01-02 10:30:00,100.5,102,100,101
`)
	bars, err := src.FetchBars("1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bars[0].Timestamp.Hour() != 9 || bars[0].Timestamp.Minute() != 30 {
		t.Errorf("clock component lost: got %v", bars[0].Timestamp)
	}
}
