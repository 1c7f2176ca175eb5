package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gold-cycles/src/helpers"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"
	"gold-cycles/src/utils"
)

// -----------------------------------------------------------------------------
// CSVBarSource
// -----------------------------------------------------------------------------

// CSVBarSource loads bars from one CSV file per timeframe (<data_dir>/<tf>.csv).
// It owns the normalization the analysis layer must never do itself: header
// mapping, thousands-separator stripping, symbol filtering, sorting and
// timestamp deduplication. Any row that cannot be parsed fails the whole load
// fast instead of propagating NaN statistics.
type CSVBarSource struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCSVBarSource(cfg *models.MConfig, log *logger.Logger) *CSVBarSource {
	return &CSVBarSource{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (s *CSVBarSource) Name() string {
	return "csv"
}

// -----------------------------------------------------------------------------

func (s *CSVBarSource) FetchBars(timeframe string) ([]models.MPriceBar, error) {
	path := filepath.Join(s.Config.Storage.DataDir, timeframe+".csv")

	f, err := os.Open(path)
	if err != nil {
		return nil, helpers.NewDataSourceError(err, "failed to open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, helpers.NewDataSourceError(err, "failed to read %s", path)
	}
	if len(records) == 0 {
		return []models.MPriceBar{}, nil
	}

	columns, err := mapColumns(records[0], path)
	if err != nil {
		return nil, err
	}

	bars := make([]models.MPriceBar, 0, len(records)-1)
	for line, record := range records[1:] {
		bar, keep, err := s.parseRow(record, columns, path, line+2)
		if err != nil {
			return nil, err
		}
		if keep {
			bars = append(bars, bar)
		}
	}

	return sortAndDedup(bars, s.Logger, timeframe), nil
}

// -----------------------------------------------------------------------------

func (s *CSVBarSource) Close() error {
	return nil
}

// -----------------------------------------------------------------------------

// columnIndex maps the standardized field names onto header positions.
type columnIndex struct {
	date, symbol, open, high, low, close int
}

// mapColumns resolves the header case-insensitively. Date and all four price
// columns are mandatory; symbol is optional.
func mapColumns(header []string, path string) (columnIndex, error) {
	idx := columnIndex{date: -1, symbol: -1, open: -1, high: -1, low: -1, close: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "timestamp":
			idx.date = i
		case "symbol":
			idx.symbol = i
		case "open":
			idx.open = i
		case "high":
			idx.high = i
		case "low":
			idx.low = i
		case "close":
			idx.close = i
		}
	}

	for name, at := range map[string]int{
		"date": idx.date, "open": idx.open, "high": idx.high, "low": idx.low, "close": idx.close,
	} {
		if at < 0 {
			return idx, helpers.NewMalformedInputError("%s: required column '%s' missing", path, name)
		}
	}

	return idx, nil
}

// -----------------------------------------------------------------------------

func (s *CSVBarSource) parseRow(record []string, columns columnIndex, path string, line int) (models.MPriceBar, bool, error) {
	var bar models.MPriceBar

	if columns.symbol >= 0 {
		bar.Symbol = strings.TrimSpace(record[columns.symbol])
		if prefix := s.Config.Data.SymbolPrefix; prefix != "" && !strings.HasPrefix(bar.Symbol, prefix) {
			return bar, false, nil
		}
	}

	ts, err := parseTimestamp(record[columns.date])
	if err != nil {
		return bar, false, helpers.NewMalformedInputError("%s line %d: %v", path, line, err)
	}
	bar.Timestamp = ts

	for _, field := range []struct {
		name string
		at   int
		dst  *float64
	}{
		{"open", columns.open, &bar.Open},
		{"high", columns.high, &bar.High},
		{"low", columns.low, &bar.Low},
		{"close", columns.close, &bar.Close},
	} {
		v, err := parsePrice(record[field.at])
		if err != nil {
			return bar, false, helpers.NewMalformedInputError("%s line %d: column '%s': %v", path, line, field.name, err)
		}
		*field.dst = v
	}

	return bar, true, nil
}

// -----------------------------------------------------------------------------

// parsePrice converts a numeric cell, tolerating thousands separators
// ("2,063.40" style exports).
func parsePrice(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", raw)
	}
	return v, nil
}

// -----------------------------------------------------------------------------

var timestampLayouts = []string{
	utils.DateTimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	utils.DateLayout,
	"01/02/2006",
}

func parseTimestamp(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// -----------------------------------------------------------------------------

// sortAndDedup orders bars ascending and keeps the first bar per timestamp,
// establishing the series invariant the analysis layer relies on.
func sortAndDedup(bars []models.MPriceBar, log *logger.Logger, timeframe string) []models.MPriceBar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	deduped := make([]models.MPriceBar, 0, len(bars))
	dropped := 0
	for i, b := range bars {
		if i > 0 && b.Timestamp.Equal(deduped[len(deduped)-1].Timestamp) {
			dropped++
			continue
		}
		deduped = append(deduped, b)
	}
	if dropped > 0 {
		log.Warning("Dropped %d duplicate timestamps in timeframe %s", dropped, timeframe)
	}

	return deduped
}
