package excite

import (
	"context"
	"time"

	"mlb_excitement/ingestion/internal/metrics"
	"mlb_excitement/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Result is the outcome of a full windowed ingestion run. Every window in the
// range landed in exactly one bucket: it contributed rows to Games, or its
// range string is in MissedWindows.
type Result struct {
	Games         []models.GameExcitement
	MissedWindows []string
	WindowsTotal  int
}

// Driver walks a multi-decade date range in weekly windows, aggregating each
// one and absorbing per-window failures. Windows run strictly sequentially;
// the only concurrency is the timeout bound inside the aggregator. The
// accumulated dataset and ledger are owned by the driver and mutated only at
// window boundaries.
type Driver struct {
	aggregator *Aggregator
}

// NewDriver creates a windowed ingestion driver.
func NewDriver(aggregator *Aggregator) *Driver {
	return &Driver{aggregator: aggregator}
}

// Run processes [start, end] inclusive. Only an invalid range fails the run;
// every window-level failure is recorded as missed and the loop continues.
// Nothing is persisted here: the caller writes the returned result out once
// the full range completes.
func (d *Driver) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	windows, err := PartitionWindows(start, end)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("windows", len(windows)).
		Msg("Starting windowed ingestion run")

	result := &Result{WindowsTotal: len(windows)}
	runStart := time.Now()

	for _, w := range windows {
		windowStart := time.Now()
		games, err := d.aggregator.Aggregate(ctx, w)
		if err != nil {
			reason := FailureReason(err)
			log.Warn().
				Err(err).
				Str("window", w.String()).
				Str("reason", reason).
				Msg("Window missed")
			result.MissedWindows = append(result.MissedWindows, w.String())
			metrics.RecordWindow("missed", time.Since(windowStart).Seconds())
			metrics.RecordWindowFailure(reason)
			continue
		}

		result.Games = append(result.Games, games...)
		metrics.RecordWindow("ok", time.Since(windowStart).Seconds())
		metrics.GamesCollected.Set(float64(len(result.Games)))

		log.Info().
			Str("window", w.String()).
			Int("games", len(games)).
			Int("total_games", len(result.Games)).
			Int("total_missed", len(result.MissedWindows)).
			Msg("Window processed")
	}

	log.Info().
		Int("windows", result.WindowsTotal).
		Int("missed", len(result.MissedWindows)).
		Int("games", len(result.Games)).
		Dur("duration", time.Since(runStart)).
		Msg("Windowed ingestion run complete")

	return result, nil
}
