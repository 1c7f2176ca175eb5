package analysis

import (
	"time"

	"gold-cycles/src/helpers"
)

// -----------------------------------------------------------------------------
// ProfileKind: the closed set of cyclical groupings
// -----------------------------------------------------------------------------

// ProfileKind selects the cyclical grouping applied to a series. Key formulas
// and per-kind bar counts live here and nowhere else; the aggregator and the
// barcode mapper both dispatch on this type.
type ProfileKind int

const (
	ProfileDecennial ProfileKind = iota
	ProfilePresidential
	ProfileQuarter
	ProfileMonth
	ProfileWeek
	ProfileWeekOfMonth
	ProfileDay
	ProfileSession
)

// Session buckets produced by the session grouping.
const (
	SessionPreMarket  = 0
	SessionRegular    = 1
	SessionPostMarket = 2
)

// Regular session bounds in minutes of day (09:30 and 16:00).
const (
	regularSessionOpen  = 9*60 + 30
	regularSessionClose = 16 * 60
)

// -----------------------------------------------------------------------------

// AllProfileKinds returns every grouping in barcode display order.
func AllProfileKinds() []ProfileKind {
	return []ProfileKind{
		ProfileDecennial, ProfilePresidential, ProfileQuarter, ProfileMonth,
		ProfileWeekOfMonth, ProfileWeek, ProfileDay, ProfileSession,
	}
}

// -----------------------------------------------------------------------------

func (k ProfileKind) String() string {
	switch k {
	case ProfileDecennial:
		return "decennial"
	case ProfilePresidential:
		return "presidential"
	case ProfileQuarter:
		return "quarter"
	case ProfileMonth:
		return "month"
	case ProfileWeek:
		return "week"
	case ProfileWeekOfMonth:
		return "week_of_month"
	case ProfileDay:
		return "day"
	case ProfileSession:
		return "session"
	}
	return "unknown"
}

// -----------------------------------------------------------------------------

// ParseProfileKind converts the wire/config name of a grouping to its kind.
func ParseProfileKind(name string) (ProfileKind, error) {
	for _, k := range AllProfileKinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, helpers.NewConfigurationError("unknown profile kind '%s'", name)
}

// -----------------------------------------------------------------------------

// BarCount returns the fixed number of positions on the kind's cyclical scale.
func (k ProfileKind) BarCount() int {
	switch k {
	case ProfileDecennial:
		return 10
	case ProfilePresidential:
		return 4
	case ProfileQuarter:
		return 4
	case ProfileMonth:
		return 12
	case ProfileWeek:
		return 52
	case ProfileWeekOfMonth:
		return 5
	case ProfileDay:
		return 5
	case ProfileSession:
		return 3
	}
	return 0
}

// -----------------------------------------------------------------------------

// KeyFor computes the raw cycle group key for a timestamp. hasTime tells the
// session grouping whether the series carries a time-of-day component; without
// one every bar maps to the regular session (legacy-compatible, see Aggregate
// for the data-quality warning). For the day kind the raw ISO weekday (1-7) is
// returned; callers decide whether weekend keys are dropped or clamped.
func (k ProfileKind) KeyFor(t time.Time, hasTime bool) int {
	switch k {
	case ProfileDecennial:
		return t.Year() % 10
	case ProfilePresidential:
		return ((t.Year() - 1) % 4) + 1
	case ProfileQuarter:
		return (int(t.Month())-1)/3 + 1
	case ProfileMonth:
		return int(t.Month())
	case ProfileWeek:
		_, week := t.ISOWeek()
		return week
	case ProfileWeekOfMonth:
		return (t.Day() + 6) / 7
	case ProfileDay:
		return isoWeekday(t)
	case ProfileSession:
		if !hasTime {
			return SessionRegular
		}
		minuteOfDay := t.Hour()*60 + t.Minute()
		switch {
		case minuteOfDay < regularSessionOpen:
			return SessionPreMarket
		case minuteOfDay < regularSessionClose:
			return SessionRegular
		default:
			return SessionPostMarket
		}
	}
	return 0
}

// -----------------------------------------------------------------------------

// isoWeekday maps time.Weekday (Sunday=0) to ISO numbering (Monday=1..Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// -----------------------------------------------------------------------------

// hasTimeOfDay reports whether a timestamp carries a clock component. A bare
// date parses to midnight, which is what the loader produces for daily and
// slower timeframes.
func hasTimeOfDay(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0
}
