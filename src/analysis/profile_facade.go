package analysis

import (
	"sort"

	"gold-cycles/src/analysis/core"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"
)

// -----------------------------------------------------------------------------
// ProfileFacade
// -----------------------------------------------------------------------------

// ProfileFacade computes cyclical profile statistics over enriched series.
// All methods are pure over their inputs; the facade holds only configuration
// and a logger, so one instance can serve concurrent callers.
type ProfileFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewProfileFacade(cfg *models.MConfig, log *logger.Logger) *ProfileFacade {
	return &ProfileFacade{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Enrich derives the full per-row annotation in two passes: returns and true
// range first, then the rolling volatility and its dataset-relative category.
// Categorization needs the thresholds of the whole series, so a streaming
// single-pass version would change the semantics.
func (f *ProfileFacade) Enrich(bars []models.MPriceBar) []models.MDerivedRow {
	rows := core.AnnotateReturns(bars)
	if len(rows) == 0 {
		return rows
	}

	trueRanges := core.TrueRanges(bars)
	volatility := core.RollingMean(trueRanges, f.Config.Analysis.VolatilityWindow)
	categories := core.CategorizeVolatility(volatility,
		f.Config.Analysis.LowPercentile, f.Config.Analysis.HighPercentile)

	for i := range rows {
		rows[i].TrueRange = trueRanges[i]
		rows[i].Volatility = volatility[i]
		rows[i].VolatilityCategory = categories[i]
	}

	return rows
}

// -----------------------------------------------------------------------------

// Aggregate groups enriched rows by the cycle key of the given kind and
// computes the per-group summary statistics. Steps, in order:
//  1. restrict rows to the inclusive date range, when one is given
//  2. key each row; the day kind drops weekend rows before grouping
//  3. compute group statistics
//  4. emit summaries sorted by key ascending
//
// An empty filtered input returns an empty slice: insufficient data is the
// caller's message to render, not an error.
func (f *ProfileFacade) Aggregate(rows []models.MDerivedRow, kind ProfileKind, dateRange *models.MDateRange) []models.MProfileSummary {
	// 1. Date filter
	filtered := rows
	if dateRange != nil {
		filtered = make([]models.MDerivedRow, 0, len(rows))
		for _, r := range rows {
			if dateRange.Contains(r.Timestamp) {
				filtered = append(filtered, r)
			}
		}
	}
	if len(filtered) == 0 {
		return []models.MProfileSummary{}
	}

	// The legacy session fallback maps date-only series entirely onto the
	// regular session, which skews all three buckets toward one. Preserved
	// for compatibility, but surfaced.
	hasTime := hasTimeOfDay(filtered[0].Timestamp)
	if kind == ProfileSession && !hasTime {
		f.Logger.Warning("series carries no time-of-day data; session profile defaults every bar to the regular session")
	}

	// 2. Key rows and group
	groups := make(map[int][]models.MDerivedRow)
	for _, r := range filtered {
		key := kind.KeyFor(r.Timestamp, hasTime)
		if kind == ProfileDay && key > 5 {
			continue // weekend bars are excluded from the day grouping only
		}
		groups[key] = append(groups[key], r)
	}

	// 3. Per-group statistics, 4. sorted by key ascending
	keys := make([]int, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	summaries := make([]models.MProfileSummary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, summarizeGroup(key, groups[key]))
	}

	return summaries
}

// -----------------------------------------------------------------------------

// summarizeGroup computes the statistics of one cycle group. Missing values
// (first-bar return, unfilled volatility window) are skipped; a side with no
// usable values averages to 0.
func summarizeGroup(key int, rows []models.MDerivedRow) models.MProfileSummary {
	var (
		returns      []float64
		greenReturns []float64
		redReturns   []float64
		volatilities []float64
		categories   []int
		greenCount   int
	)

	for _, r := range rows {
		if r.IsUp {
			greenCount++
		}
		if r.HasReturn() {
			returns = append(returns, r.ReturnPct)
			if r.IsUp {
				greenReturns = append(greenReturns, r.ReturnPct)
			} else {
				redReturns = append(redReturns, r.ReturnPct)
			}
		}
		if r.HasVolatility() {
			volatilities = append(volatilities, r.Volatility)
		}
		if r.VolatilityCategory > 0 {
			categories = append(categories, r.VolatilityCategory)
		}
	}

	avgReturn, stdReturn := core.MeanStd(returns)
	greenProbability := float64(greenCount) / float64(len(rows))

	return models.MProfileSummary{
		Key:                     key,
		Rows:                    len(rows),
		GreenProbability:        greenProbability,
		RedProbability:          1 - greenProbability,
		AvgReturn:               avgReturn,
		ReturnStdDev:            stdReturn,
		AvgVolatility:           core.Mean(volatilities),
		ModalVolatilityCategory: core.ModalCategory(categories),
		AvgGreenReturn:          core.Mean(greenReturns),
		AvgRedReturn:            core.Mean(redReturns),
	}
}
