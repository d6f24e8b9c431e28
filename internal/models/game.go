package models

import (
	"database/sql"
	"time"
)

// GameRow is the durable games-table row consumed by the serving layer.
// ID is assigned once at write time, never derived from row position.
type GameRow struct {
	ID           string         `db:"id"`
	Sport        string         `db:"sport"`
	Season       int            `db:"season"`
	GameID       int            `db:"game_id"`
	GameDate     time.Time      `db:"date"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	HomeScore    sql.NullInt32  `db:"home_score"`
	AwayScore    sql.NullInt32  `db:"away_score"`
	Excitement   float64        `db:"excitement"`
	HighlightURL sql.NullString `db:"highlight_url"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// ScheduleGame is one game from the schedule endpoint, used to enrich
// aggregated rows with final scores.
type ScheduleGame struct {
	GamePk    int
	HomeName  string
	AwayName  string
	HomeScore *int
	AwayScore *int
	Status    string
}

// IsFinal returns true if the game is completed.
func (sg *ScheduleGame) IsFinal() bool {
	return sg.Status == "Final"
}

// NewGameRow builds a games-table row from an aggregated game, an assigned
// durable identifier, and optional enrichment data.
func NewGameRow(id string, ge GameExcitement, homeScore, awayScore *int, highlightURL string) *GameRow {
	row := &GameRow{
		ID:         id,
		Sport:      "MLB",
		Season:     ge.Season(),
		GameID:     ge.GameID,
		GameDate:   ge.GameDate,
		HomeTeam:   ge.HomeTeam,
		AwayTeam:   ge.AwayTeam,
		Excitement: ge.ExcitementScore,
	}

	if homeScore != nil {
		row.HomeScore = sql.NullInt32{Int32: int32(*homeScore), Valid: true}
	}
	if awayScore != nil {
		row.AwayScore = sql.NullInt32{Int32: int32(*awayScore), Valid: true}
	}
	if highlightURL != "" {
		row.HighlightURL = sql.NullString{String: highlightURL, Valid: true}
	}

	return row
}
