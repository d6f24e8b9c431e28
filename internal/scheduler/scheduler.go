package scheduler

import (
	"context"
	"fmt"
	"time"

	"mlb_excitement/ingestion/internal/config"
	"mlb_excitement/ingestion/internal/excite"
	"mlb_excitement/ingestion/internal/loader"
	"mlb_excitement/ingestion/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the daily incremental ingest: every morning it aggregates
// yesterday's games as a single 1-day window and loads the enriched rows
// into the database. A failed day is logged and retried the next morning by
// virtue of being upsert-idempotent; it never takes the worker down.
type Scheduler struct {
	cfg        *config.Config
	aggregator *excite.Aggregator
	loader     *loader.Loader
	cron       *cron.Cron
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, aggregator *excite.Aggregator, ldr *loader.Loader) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		aggregator: aggregator,
		loader:     ldr,
		cron:       cron.New(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.DailyIngestCron, func() {
		if err := s.IngestYesterday(ctx); err != nil {
			log.Error().Err(err).Msg("Daily ingest failed")
			metrics.RecordDailyIngest("error")
			return
		}
		metrics.RecordDailyIngest("success")
	}); err != nil {
		return fmt.Errorf("failed to schedule daily ingest: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.DailyIngestCron).
		Msg("Daily ingest scheduled")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	log.Info().Msg("Scheduler stopped")
}

// IngestYesterday aggregates and loads yesterday's games.
func (s *Scheduler) IngestYesterday(ctx context.Context) error {
	yesterday := time.Now().AddDate(0, 0, -1)
	window := excite.Window{Start: yesterday, End: yesterday}

	log.Info().Str("window", window.String()).Msg("Running daily ingest")

	games, err := s.aggregator.Aggregate(ctx, window)
	if err != nil {
		// An empty day is normal in the off-season; anything else is a
		// real failure worth surfacing.
		if excite.FailureReason(err) == "malformed" {
			log.Info().Str("window", window.String()).Msg("No games yesterday, nothing to ingest")
			return nil
		}
		return fmt.Errorf("failed to aggregate yesterday's games: %w", err)
	}

	saved := s.loader.LoadGames(ctx, games)
	log.Info().
		Str("window", window.String()).
		Int("games", len(games)).
		Int("saved", saved).
		Msg("Daily ingest complete")

	return nil
}
