// Package loader enriches aggregated games with final scores and highlight
// links, then persists them to Postgres.
package loader

import (
	"context"
	"time"

	"mlb_excitement/ingestion/internal/client"
	"mlb_excitement/ingestion/internal/metrics"
	"mlb_excitement/ingestion/internal/models"
	"mlb_excitement/ingestion/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Loader writes enriched game rows into the database.
type Loader struct {
	client *client.Client
	db     *repository.Database
}

// New creates a loader.
func New(apiClient *client.Client, db *repository.Database) *Loader {
	return &Loader{
		client: apiClient,
		db:     db,
	}
}

// LoadGames enriches and upserts the given games. Per-game failures are
// logged and skipped; the load keeps going. Returns how many rows were
// written.
func (l *Loader) LoadGames(ctx context.Context, games []models.GameExcitement) int {
	start := time.Now()
	saved := 0

	for _, game := range games {
		var homeScore, awayScore *int

		sched, err := l.client.FetchScheduleByGameID(ctx, game.GameID)
		if err != nil {
			log.Warn().Err(err).Int("game_id", game.GameID).Msg("Failed to fetch final scores, saving without them")
		} else {
			homeScore = sched.HomeScore
			awayScore = sched.AwayScore
		}

		highlightURL, err := l.client.FetchCondensedGame(ctx, game.GameID)
		if err != nil {
			log.Debug().Err(err).Int("game_id", game.GameID).Msg("No condensed game highlight")
			highlightURL = ""
		}

		row := models.NewGameRow(uuid.New().String(), game, homeScore, awayScore, highlightURL)
		if err := l.db.Games.Upsert(ctx, row); err != nil {
			log.Error().Err(err).Int("game_id", game.GameID).Msg("Failed to save game")
			continue
		}

		saved++
		if saved%100 == 0 {
			log.Info().Int("saved", saved).Int("total", len(games)).Msg("Load progress")
		}
	}

	if total, err := l.db.Games.Count(ctx); err == nil {
		metrics.GamesStored.Set(float64(total))
	}

	log.Info().
		Int("saved", saved).
		Int("total", len(games)).
		Dur("duration", time.Since(start)).
		Msg("Game load complete")

	return saved
}

// RefreshTeams fetches the club list and upserts it into the teams table.
func (l *Loader) RefreshTeams(ctx context.Context) (int, error) {
	clubs, err := l.client.FetchTeams(ctx)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, clubInput := range clubs {
		team := clubInput.ToTeam()
		if err := l.db.Teams.Upsert(ctx, team); err != nil {
			log.Error().Err(err).Int("team_id", team.TeamID).Msg("Failed to save team")
			continue
		}
		saved++
	}

	log.Info().Int("count", saved).Msg("Teams saved to database")
	return saved, nil
}
