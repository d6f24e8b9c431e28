// Command backfill runs the windowed ingestion pipeline over the configured
// date range and writes the dataset artifacts: the CSV table, the binary
// snapshot, and the missed-window ledger (plus a season-only copy of the
// ledger for re-ingestion planning). With LOAD_DATABASE=true it also loads
// enriched rows into Postgres.
package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"mlb_excitement/ingestion/internal/cache"
	"mlb_excitement/ingestion/internal/client"
	"mlb_excitement/ingestion/internal/config"
	"mlb_excitement/ingestion/internal/dataset"
	"mlb_excitement/ingestion/internal/excite"
	"mlb_excitement/ingestion/internal/loader"
	"mlb_excitement/ingestion/internal/models"
	"mlb_excitement/ingestion/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	cfg := config.MustLoad()
	ctx := context.Background()

	start, end, err := cfg.BackfillRange()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid backfill range")
	}

	// Cache is optional for a one-shot run; the client works without it.
	var responseCache cache.Cache
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		responseCache = redisCache
	}

	apiClient := client.NewClient(
		cfg.StatsAPIBaseURL,
		cfg.SavantBaseURL,
		cfg.StatsAPITimeout,
		&client.Options{
			Cache:            responseCache,
			CacheTTLTeams:    time.Duration(cfg.CacheTTLTeams) * time.Second,
			CacheTTLSchedule: time.Duration(cfg.CacheTTLSchedule) * time.Second,
		},
	)

	aggregator := excite.NewAggregator(
		excite.PitchSourceFunc(apiClient.FetchPitchMetrics),
		cfg.WindowTimeout,
	)
	driver := excite.NewDriver(aggregator)

	result, err := driver.Run(ctx, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("Backfill run failed to start")
	}

	// Duplicate game IDs across windows are not expected but not enforced
	// upstream; dedupe once here, at the sink-write stage.
	games := dataset.Dedupe(result.Games)

	if err := dataset.WriteCSV(cfg.DatasetCSVPath, games); err != nil {
		log.Fatal().Err(err).Msg("Failed to write dataset CSV")
	}
	if err := dataset.WriteSnapshot(cfg.DatasetSnapshotPath, games); err != nil {
		log.Fatal().Err(err).Msg("Failed to write dataset snapshot")
	}
	if err := dataset.WriteMissedLedger(cfg.MissedLedgerPath, result.MissedWindows); err != nil {
		log.Fatal().Err(err).Msg("Failed to write missed-window ledger")
	}

	// Off-season gaps are expected; the season-only ledger is the actionable
	// re-ingestion list.
	seasonOnly := excite.FilterOffSeason(result.MissedWindows)
	seasonOnlyPath := seasonOnlyLedgerPath(cfg.MissedLedgerPath)
	if err := dataset.WriteMissedLedger(seasonOnlyPath, seasonOnly); err != nil {
		log.Fatal().Err(err).Msg("Failed to write season-only ledger")
	}

	log.Info().
		Int("windows", result.WindowsTotal).
		Int("missed", len(result.MissedWindows)).
		Int("missed_in_season", len(seasonOnly)).
		Int("games", len(games)).
		Msg("Backfill artifacts written")

	if cfg.LoadDatabase {
		loadDatabase(ctx, cfg, apiClient, games)
	}
}

// loadDatabase enriches the accumulated games with scores and highlight
// links and upserts them into Postgres.
func loadDatabase(ctx context.Context, cfg *config.Config, apiClient *client.Client, games []models.GameExcitement) {
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	ldr := loader.New(apiClient, db)
	if _, err := ldr.RefreshTeams(ctx); err != nil {
		log.Error().Err(err).Msg("Team refresh failed, continuing")
	}

	saved := ldr.LoadGames(ctx, games)
	log.Info().Int("saved", saved).Msg("Database load complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}

// seasonOnlyLedgerPath derives the season-only ledger path from the main
// ledger path: missed_dates.json -> missed_dates_season_only.json.
func seasonOnlyLedgerPath(path string) string {
	if strings.HasSuffix(path, ".json") {
		return strings.TrimSuffix(path, ".json") + "_season_only.json"
	}
	return path + ".season_only"
}
