package repository

import (
	"context"
	"fmt"

	"mlb_excitement/ingestion/internal/metrics"
	"mlb_excitement/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a game row, keyed by the external game_id so
// re-running an ingest over the same range stays idempotent. The durable
// id assigned on first insert is preserved across updates.
func (r *GameRepository) Upsert(ctx context.Context, game *models.GameRow) error {
	query := `
		INSERT INTO games (
			id, sport, season, game_id, date, home_team, away_team,
			home_score, away_score, excitement, highlight_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id) DO UPDATE SET
			sport = EXCLUDED.sport,
			season = EXCLUDED.season,
			date = EXCLUDED.date,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			excitement = EXCLUDED.excitement,
			highlight_url = EXCLUDED.highlight_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		game.ID, game.Sport, game.Season, game.GameID, game.GameDate,
		game.HomeTeam, game.AwayTeam, game.HomeScore, game.AwayScore,
		game.Excitement, game.HighlightURL,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		metrics.RecordDBQuery("upsert", "games", "error")
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	metrics.RecordDBQuery("upsert", "games", "ok")
	log.Debug().
		Str("id", game.ID).
		Int("game_id", game.GameID).
		Str("home", game.HomeTeam).
		Str("away", game.AwayTeam).
		Float64("excitement", game.Excitement).
		Msg("Game upserted")

	return nil
}

// GetByGameID retrieves a game by its external game ID
func (r *GameRepository) GetByGameID(ctx context.Context, gameID int) (*models.GameRow, error) {
	query := `
		SELECT id, sport, season, game_id, date, home_team, away_team,
		       home_score, away_score, excitement, highlight_url,
		       created_at, updated_at
		FROM games
		WHERE game_id = $1
	`

	var game models.GameRow
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&game.ID, &game.Sport, &game.Season, &game.GameID, &game.GameDate,
		&game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
		&game.Excitement, &game.HighlightURL,
		&game.CreatedAt, &game.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: game_id=%d", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// ListBySeason retrieves a season's games ordered by descending excitement
func (r *GameRepository) ListBySeason(ctx context.Context, season int) ([]*models.GameRow, error) {
	query := `
		SELECT id, sport, season, game_id, date, home_team, away_team,
		       home_score, away_score, excitement, highlight_url,
		       created_at, updated_at
		FROM games
		WHERE season = $1
		ORDER BY excitement DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season: %w", err)
	}
	defer rows.Close()

	var games []*models.GameRow
	for rows.Next() {
		var game models.GameRow
		err := rows.Scan(
			&game.ID, &game.Sport, &game.Season, &game.GameID, &game.GameDate,
			&game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
			&game.Excitement, &game.HighlightURL,
			&game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}
