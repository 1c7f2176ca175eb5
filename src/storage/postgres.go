package storage

import (
	"database/sql"
	"time"

	"gold-cycles/src/helpers"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresBarSource reads OHLC bars from a postgres table with the same shape
// as the sqlite source (timeframe, unix-seconds timestamp, symbol, OHLC).
type PostgresBarSource struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresBarSource(cfg *models.MConfig, log *logger.Logger) (*PostgresBarSource, error) {
	db, err := sql.Open("postgres", cfg.Storage.DBConnectionString)
	if err != nil {
		return nil, helpers.NewDatabaseError(err, "failed to open postgres connection")
	}

	// The server may still be starting; ping with backoff before giving up.
	if err := helpers.RetryWithBackoff(log, "postgres ping", 3, time.Second, db.Ping); err != nil {
		db.Close()
		return nil, helpers.NewDatabaseError(err, "failed to reach postgres")
	}

	return &PostgresBarSource{Config: cfg, DB: db, Logger: log}, nil
}

// -----------------------------------------------------------------------------

func (s *PostgresBarSource) Name() string {
	return "postgres"
}

// -----------------------------------------------------------------------------

func (s *PostgresBarSource) FetchBars(timeframe string) ([]models.MPriceBar, error) {
	query := `
		SELECT timestamp, COALESCE(symbol, ''), open, high, low, close
		FROM bars
		WHERE timeframe = $1
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

func (s *PostgresBarSource) Close() error {
	return s.DB.Close()
}
