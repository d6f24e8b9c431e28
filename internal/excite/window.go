package excite

import (
	"fmt"
	"time"
)

// Window is one 7-day slice of the overall ingestion range. Both bounds are
// inclusive calendar dates. Windows are ephemeral: generated by the driver,
// never persisted.
type Window struct {
	Start time.Time
	End   time.Time
}

// String formats the window as "<start> to <end>", the shape recorded in the
// missed-window ledger.
func (w Window) String() string {
	return fmt.Sprintf("%s to %s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// PartitionWindows splits [start, end] into consecutive 7-day windows. The
// last window is truncated to end so the windows exactly cover the range with
// no gaps or overlaps. An inverted range is a configuration error: the run
// must not start.
func PartitionWindows(start, end time.Time) ([]Window, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)

	if start.After(end) {
		return nil, fmt.Errorf("invalid date range: start %s is after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var windows []Window
	for current := start; !current.After(end); current = current.AddDate(0, 0, 7) {
		weekEnd := current.AddDate(0, 0, 6)
		if weekEnd.After(end) {
			weekEnd = end
		}
		windows = append(windows, Window{Start: current, End: weekEnd})
	}

	return windows, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
