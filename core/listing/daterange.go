package listing

import "time"

// Date range keys understood by ResolveRange.
const (
	RangeAll         = "all"
	RangeLast7Days   = "last7Days"
	RangeLast30Days  = "last30Days"
	RangeLast365Days = "last365Days"
	RangeLastMonth   = "lastMonth"
	RangeThisMonth   = "thisMonth"
	RangeThisYear    = "thisYear"
	RangeLastYear    = "lastYear"
)

var rangeKeys = []string{
	RangeAll,
	RangeLast7Days,
	RangeLast30Days,
	RangeLast365Days,
	RangeThisMonth,
	RangeLastMonth,
	RangeThisYear,
	RangeLastYear,
}

// DateRange is an inclusive interval of calendar days.
// Start and End are both midnight in the location of the "now" they were resolved from.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar day of t (in the range's location) lies within the range.
func (dr DateRange) Contains(t time.Time) bool {
	day := truncateDay(t.In(dr.Start.Location()))
	return !day.Before(dr.Start) && !day.After(dr.End)
}

// RangeKeys returns the supported date range keys in display order.
func RangeKeys() []string {
	keys := make([]string, len(rangeKeys))
	copy(keys, rangeKeys)
	return keys
}

// IsRangeKey reports whether key is one of RangeKeys.
// The empty string is accepted too, it means "no date filter".
func IsRangeKey(key string) bool {
	if key == "" {
		return true
	}
	for _, k := range rangeKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ResolveRange maps a symbolic range key to a concrete DateRange anchored on now.
// "all", empty and unknown keys yield ok == false: no date filtering applies.
func ResolveRange(key string, now time.Time) (dr DateRange, ok bool) {
	today := truncateDay(now)
	y, m, _ := today.Date()
	loc := today.Location()

	switch key {
	case RangeLast7Days:
		return DateRange{Start: today.AddDate(0, 0, -7), End: today}, true
	case RangeLast30Days:
		return DateRange{Start: today.AddDate(0, 0, -30), End: today}, true
	case RangeLast365Days:
		return DateRange{Start: today.AddDate(0, 0, -365), End: today}, true
	case RangeThisMonth:
		return DateRange{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: today}, true
	case RangeLastMonth:
		// time.Date normalises month 0 to December of the previous year
		start := time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		// day 0 of the following month is the last day of start's month
		end := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, loc)
		return DateRange{Start: start, End: end}, true
	case RangeThisYear:
		return DateRange{Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc), End: today}, true
	case RangeLastYear:
		return DateRange{
			Start: time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc),
		}, true
	default:
		return DateRange{}, false
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// timestamp layouts accepted for record date fields
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp as sent by the upstream API.
// Timestamps without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
