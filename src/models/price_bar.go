package models

import (
	"math"
	"time"
)

// MPriceBar represents one sampled OHLC interval for an instrument.
// Bars within a series must be sorted ascending by Timestamp with no
// duplicates; the loader enforces this before the analysis layer sees them.
type MPriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Symbol    string    `json:"symbol,omitempty"`
}

// -----------------------------------------------------------------------------

// MDerivedRow is a price bar augmented with per-row derived fields.
// Missing numeric values (first bar, unfilled rolling window) are NaN,
// and VolatilityCategory 0 means "not categorized".
type MDerivedRow struct {
	MPriceBar

	ReturnPct          float64 // percent change of close vs prior close
	IsUp               bool    // close > open
	TrueRange          float64
	Volatility         float64 // rolling mean of true range
	VolatilityCategory int     // 1 low, 2 average, 3 high, 0 missing
}

// -----------------------------------------------------------------------------

// HasReturn reports whether the row carries a defined return value.
func (r *MDerivedRow) HasReturn() bool {
	return !math.IsNaN(r.ReturnPct)
}

// HasVolatility reports whether the rolling volatility is defined for the row.
func (r *MDerivedRow) HasVolatility() bool {
	return !math.IsNaN(r.Volatility)
}

// -----------------------------------------------------------------------------

// MDateRange is an inclusive timestamp filter.
type MDateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the inclusive range.
func (dr *MDateRange) Contains(t time.Time) bool {
	return !t.Before(dr.Start) && !t.After(dr.End)
}
