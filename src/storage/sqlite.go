package storage

import (
	"database/sql"
	"time"

	"gold-cycles/src/helpers"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteBarSource reads OHLC bars from a local sqlite file. Expected schema:
//
//	CREATE TABLE bars (
//		timeframe TEXT,
//		timestamp INTEGER,  -- unix seconds, UTC
//		symbol    TEXT,
//		open REAL, high REAL, low REAL, close REAL,
//		PRIMARY KEY (timeframe, timestamp)
//	);
type SQLiteBarSource struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteBarSource(cfg *models.MConfig, log *logger.Logger) (*SQLiteBarSource, error) {
	db, err := sql.Open("sqlite", cfg.Storage.DBPath)
	if err != nil {
		return nil, helpers.NewDatabaseError(err, "failed to open sqlite db %s", cfg.Storage.DBPath)
	}

	if err := db.Ping(); err != nil {
		return nil, helpers.NewDatabaseError(err, "failed to reach sqlite db %s", cfg.Storage.DBPath)
	}

	s := &SQLiteBarSource{Config: cfg, DB: db, Logger: log}

	// Read-only workload; WAL keeps concurrent readers cheap.
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		s.Logger.Warning("Failed to set WAL mode: %v", err)
	}

	return s, nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteBarSource) Name() string {
	return "sqlite"
}

// -----------------------------------------------------------------------------

func (s *SQLiteBarSource) FetchBars(timeframe string) ([]models.MPriceBar, error) {
	query := `
		SELECT timestamp, COALESCE(symbol, ''), open, high, low, close
		FROM bars
		WHERE timeframe = ?
		ORDER BY timestamp ASC;
	`
	rows, err := s.DB.Query(query, timeframe)
	if err != nil {
		return nil, helpers.NewDatabaseError(err, "failed to query bars for timeframe %s", timeframe)
	}
	defer rows.Close()

	bars, err := scanBars(rows, s.Config.Data.SymbolPrefix)
	if err != nil {
		return nil, helpers.NewDatabaseError(err, "failed to scan bars for timeframe %s", timeframe)
	}
	return bars, nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteBarSource) Close() error {
	return s.DB.Close()
}

// -----------------------------------------------------------------------------

// scanBars materializes a sorted result set, applying the optional symbol
// prefix filter and collapsing duplicate timestamps to the first row.
func scanBars(rows *sql.Rows, symbolPrefix string) ([]models.MPriceBar, error) {
	var bars []models.MPriceBar

	for rows.Next() {
		var (
			ts  int64
			bar models.MPriceBar
		)
		if err := rows.Scan(&ts, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close); err != nil {
			return nil, err
		}
		if symbolPrefix != "" && !hasPrefix(bar.Symbol, symbolPrefix) {
			continue
		}
		bar.Timestamp = time.Unix(ts, 0).UTC()

		if n := len(bars); n > 0 && bar.Timestamp.Equal(bars[n-1].Timestamp) {
			continue
		}
		bars = append(bars, bar)
	}

	return bars, rows.Err()
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
