package models

import (
	"time"
)

// PitchRecord is a single pitch-level row from the win-probability feed.
// Rows are ephemeral: they exist only long enough to be aggregated into
// per-game excitement scores and are never persisted.
type PitchRecord struct {
	GameID      int
	GameDate    time.Time
	HomeTeam    string
	AwayTeam    string
	WinExpDelta float64
}

// Valid reports whether every required field is present. The delta itself
// may legitimately be zero, so it is not checked.
func (p *PitchRecord) Valid() bool {
	return p.GameID != 0 &&
		!p.GameDate.IsZero() &&
		p.HomeTeam != "" &&
		p.AwayTeam != ""
}
