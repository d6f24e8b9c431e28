package models

import (
	"time"
)

// GameExcitement is one game's aggregated excitement: the sum of absolute
// win-probability swings across every pitch of the game. Created by the
// window aggregator and immutable afterward. ExcitementScore is always >= 0.
type GameExcitement struct {
	GameID          int
	GameDate        time.Time
	HomeTeam        string
	AwayTeam        string
	ExcitementScore float64
}

// Season is the calendar year the game was played in. The serving layer
// derives season this way when it is not stored separately.
func (g *GameExcitement) Season() int {
	return g.GameDate.Year()
}
