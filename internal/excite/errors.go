package excite

import (
	"errors"
)

// Window failure taxonomy. Every per-window failure is absorbed at the
// window boundary: the window is recorded as missed and the run continues.
var (
	// ErrSourceTimeout means the pitch feed did not answer within the
	// per-window timeout budget.
	ErrSourceTimeout = errors.New("pitch source timed out")

	// ErrSourceMalformed means the feed answered but the data is unusable:
	// empty, or missing required fields.
	ErrSourceMalformed = errors.New("pitch source returned malformed or empty data")
)

// FailureReason labels a window failure for logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrSourceTimeout):
		return "timeout"
	case errors.Is(err, ErrSourceMalformed):
		return "malformed"
	default:
		return "transport"
	}
}
