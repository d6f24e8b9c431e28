package models

import (
	"time"
)

// Team represents an MLB club
type Team struct {
	ID           int       `db:"id"`
	TeamID       int       `db:"team_id"`
	Name         string    `db:"name"`
	Abbreviation string    `db:"abbreviation"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// TeamInput is used for creating/updating teams from the stats API
type TeamInput struct {
	TeamID       int    `json:"id"`
	TeamName     string `json:"teamName"`
	Abbreviation string `json:"abbreviation"`
}

// ToTeam converts TeamInput (from API) to Team model
func (ti *TeamInput) ToTeam() *Team {
	return &Team{
		TeamID:       ti.TeamID,
		Name:         ti.TeamName,
		Abbreviation: ti.Abbreviation,
	}
}
