package core

import (
	"math"

	"gold-cycles/src/models"
)

// -----------------------------------------------------------------------------

// AnnotateReturns derives the percentage return and the up/down flag for each
// bar. The first bar has no prior close, so its return is NaN. The direction
// flag compares close against the bar's own open, not the prior close.
// The input is never mutated; an empty series yields an empty result.
func AnnotateReturns(bars []models.MPriceBar) []models.MDerivedRow {
	rows := make([]models.MDerivedRow, len(bars))

	for i, b := range bars {
		rows[i] = models.MDerivedRow{
			MPriceBar:  b,
			ReturnPct:  math.NaN(),
			IsUp:       b.Close > b.Open,
			TrueRange:  math.NaN(),
			Volatility: math.NaN(),
		}
		if i > 0 && bars[i-1].Close != 0 {
			rows[i].ReturnPct = (b.Close/bars[i-1].Close - 1) * 100
		}
	}

	return rows
}
