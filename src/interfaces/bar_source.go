package interfaces

import "gold-cycles/src/models"

// -----------------------------------------------------------------------------
// IBarSource defines the contract for loading OHLC bars for one timeframe.
// -----------------------------------------------------------------------------

type IBarSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchBars retrieves every bar of the given timeframe, sorted ascending
	// by timestamp with duplicates removed. Sources own parsing, numeric
	// normalization and ordering; the analysis layer assumes both invariants.
	FetchBars(timeframe string) ([]models.MPriceBar, error)

	// -----------------------------------------------------------------------------

	// Close releases any underlying handles (files, connections).
	Close() error
}
