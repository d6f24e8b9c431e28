package excite

import (
	"strings"
)

// Off-season boundaries as month-day strings, inclusive on both ends. The
// period wraps the year boundary: Nov 6 through Mar 17.
const (
	offSeasonStart = "11-06"
	offSeasonEnd   = "03-17"
)

// IsOffSeason classifies a ledger range string ("YYYY-MM-DD to YYYY-MM-DD")
// by its start date's month-day only. The actual year never matters.
func IsOffSeason(dateRange string) bool {
	start, _, found := strings.Cut(dateRange, " to ")
	if !found || len(start) < 10 {
		return false
	}
	monthDay := start[5:10]

	// Nov 6 onward, or anything up to Mar 17.
	return monthDay >= offSeasonStart || monthDay <= offSeasonEnd
}

// FilterOffSeason drops ledger ranges whose window starts in the off-season,
// preserving the original order. In-season missed windows are real data gaps
// worth re-fetching; off-season gaps just mean no games were played.
func FilterOffSeason(missed []string) []string {
	filtered := make([]string, 0, len(missed))
	for _, dateRange := range missed {
		if !IsOffSeason(dateRange) {
			filtered = append(filtered, dateRange)
		}
	}
	return filtered
}
