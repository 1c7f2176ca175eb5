package datasource

import (
	"context"
	"math"
	"sync"
	"time"

	"gold-cycles/src/helpers"
	"gold-cycles/src/interfaces"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"
	"gold-cycles/src/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------
// DatasetManager
// -----------------------------------------------------------------------------

// DatasetManager loads every configured timeframe from one bar source,
// validates the series invariants and caches the result for the analysis
// callers. Each successful load carries a fresh dataset ID so clients can
// tell reloads apart.
type DatasetManager struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Source   interfaces.IBarSource
	Calendar *utils.TradingCalendar

	mu       sync.RWMutex
	datasets map[string][]models.MPriceBar
	loadID   string
	loadedAt time.Time
}

// -----------------------------------------------------------------------------

func NewDatasetManager(cfg *models.MConfig, log *logger.Logger, source interfaces.IBarSource) *DatasetManager {
	return &DatasetManager{
		Config:   cfg,
		Logger:   log,
		Source:   source,
		Calendar: utils.GetCalendar(cfg.Data.CalendarMIC),
		datasets: make(map[string][]models.MPriceBar),
	}
}

// -----------------------------------------------------------------------------

// LoadAll fetches all configured timeframes concurrently. A validation
// failure in any timeframe fails the whole load: serving statistics from a
// partially malformed dataset is worse than serving none.
func (m *DatasetManager) LoadAll(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	loaded := make(map[string][]models.MPriceBar, len(m.Config.Data.Timeframes))
	var loadedMu sync.Mutex

	for _, timeframe := range m.Config.Data.Timeframes {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bars, err := m.Source.FetchBars(timeframe)
			if err != nil {
				return err
			}
			if err := ValidateBars(timeframe, bars); err != nil {
				return err
			}

			m.reportDataQuality(timeframe, bars)

			loadedMu.Lock()
			loaded[timeframe] = bars
			loadedMu.Unlock()

			m.Logger.Info("Loaded timeframe %s: %d bars", timeframe, len(bars))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	m.mu.Lock()
	m.datasets = loaded
	m.loadID = uuid.NewString()
	m.loadedAt = time.Now()
	m.mu.Unlock()

	m.Logger.Info("Dataset load %s complete: %d timeframes", m.LoadID(), len(loaded))
	return nil
}

// -----------------------------------------------------------------------------

// ValidateBars enforces the series invariants: positive finite prices and
// strictly ascending, duplicate-free timestamps. Violations are malformed
// input, surfaced instead of coerced.
func ValidateBars(timeframe string, bars []models.MPriceBar) error {
	for i, b := range bars {
		for _, field := range []struct {
			name  string
			value float64
		}{
			{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close},
		} {
			if math.IsNaN(field.value) || math.IsInf(field.value, 0) || field.value <= 0 {
				return helpers.NewMalformedInputError(
					"timeframe %s bar %d (%s): %s is %v, expected positive finite",
					timeframe, i, b.Timestamp.Format(utils.DateTimeLayout), field.name, field.value)
			}
		}
		if i > 0 && !bars[i-1].Timestamp.Before(b.Timestamp) {
			return helpers.NewMalformedInputError(
				"timeframe %s bar %d: timestamps not strictly ascending (%s then %s)",
				timeframe, i,
				bars[i-1].Timestamp.Format(utils.DateTimeLayout),
				b.Timestamp.Format(utils.DateTimeLayout))
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// reportDataQuality logs bars falling on non-trading days. They are kept (the
// source of truth is the data, not the calendar) but worth surfacing: weekend
// prints usually indicate a timezone problem upstream.
func (m *DatasetManager) reportDataQuality(timeframe string, bars []models.MPriceBar) {
	offDays := 0
	for _, b := range bars {
		if !m.Calendar.IsTradingDay(b.Timestamp) {
			offDays++
		}
	}
	if offDays > 0 {
		m.Logger.Warning("Timeframe %s: %d of %d bars fall on non-trading days", timeframe, offDays, len(bars))
	}
}

// -----------------------------------------------------------------------------

// Bars returns the cached series for a timeframe. Callers must treat the
// slice as read-only; the analysis layer never mutates it.
func (m *DatasetManager) Bars(timeframe string) ([]models.MPriceBar, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bars, ok := m.datasets[timeframe]
	return bars, ok
}

// -----------------------------------------------------------------------------

// Timeframes returns the loaded timeframes in configuration order.
func (m *DatasetManager) Timeframes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.datasets))
	for _, tf := range m.Config.Data.Timeframes {
		if _, ok := m.datasets[tf]; ok {
			out = append(out, tf)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// LoadID identifies the currently cached dataset load ("" before any load).
func (m *DatasetManager) LoadID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadID
}

// LoadedAt reports when the current dataset finished loading.
func (m *DatasetManager) LoadedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadedAt
}
