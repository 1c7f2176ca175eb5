package analysis

import (
	"time"

	"gold-cycles/src/models"
)

// -----------------------------------------------------------------------------

// BarcodePositions evaluates, for a single reference date, its position on
// each of the cyclical scales: (current position, total positions) per kind.
// The key formulas are shared with the aggregator; two adjustments apply to a
// single date that never apply to a series: a weekend date clamps the day
// scale to Friday, and a date without a clock component sits in the regular
// session.
func BarcodePositions(date time.Time) []models.MBarcodeEntry {
	hasTime := hasTimeOfDay(date)

	entries := make([]models.MBarcodeEntry, 0, len(AllProfileKinds()))
	for _, kind := range AllProfileKinds() {
		current := kind.KeyFor(date, hasTime)
		if kind == ProfileDay && current > 5 {
			current = 5
		}

		entries = append(entries, models.MBarcodeEntry{
			Kind:    kind.String(),
			Current: current,
			Total:   kind.BarCount(),
		})
	}

	return entries
}
