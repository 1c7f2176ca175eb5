package utils

// Timeframe codes in loading order, monthly history first (it is the longest)
// down to 1-minute detail.
var DefaultTimeframes = []string{"M", "W", "D", "4h", "1h", "30min", "15min", "10min", "5min", "1min"}

// Date layouts accepted at the API and loader boundaries.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Analysis defaults applied when the config omits them.
const (
	DefaultVolatilityWindow = 14
	DefaultLowPercentile    = 0.33
	DefaultHighPercentile   = 0.67
	DefaultPatternLength    = 3
	DefaultPatternTopN      = 5
	DefaultCalendarMIC      = "xnys"
)
