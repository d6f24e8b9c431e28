package excite

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"mlb_excitement/ingestion/internal/models"
)

// PitchSource is the external per-pitch win-probability feed. Implementations
// must honor ctx cancellation on the transport level but are otherwise free
// to block; the aggregator bounds every call with its own timeout.
type PitchSource interface {
	FetchPitchMetrics(ctx context.Context, start, end time.Time) ([]models.PitchRecord, error)
}

// PitchSourceFunc adapts a function to the PitchSource interface.
type PitchSourceFunc func(ctx context.Context, start, end time.Time) ([]models.PitchRecord, error)

// FetchPitchMetrics calls f.
func (f PitchSourceFunc) FetchPitchMetrics(ctx context.Context, start, end time.Time) ([]models.PitchRecord, error) {
	return f(ctx, start, end)
}

// Aggregator reduces one window's pitch records into per-game excitement
// scores. It never panics and never lets a source failure escape as anything
// other than a classified error, so the window loop always progresses.
type Aggregator struct {
	source  PitchSource
	timeout time.Duration
}

// NewAggregator creates an aggregator with a per-window timeout budget.
func NewAggregator(source PitchSource, timeout time.Duration) *Aggregator {
	return &Aggregator{
		source:  source,
		timeout: timeout,
	}
}

type fetchResult struct {
	pitches []models.PitchRecord
	err     error
}

// Aggregate fetches the window's pitch records and reduces them to one
// GameExcitement row per game, sorted by descending excitement score.
//
// Failures are classified: ErrSourceTimeout when the fetch exceeds the
// budget, ErrSourceMalformed when the result is empty or missing required
// fields, and the raw transport error otherwise. The caller treats all three
// the same way: record the window as missed and move on.
func (a *Aggregator) Aggregate(ctx context.Context, w Window) ([]models.GameExcitement, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// The fetch runs on its own goroutine with an exclusively owned buffer.
	// On timeout we abandon it; the buffered channel lets the worker finish
	// and exit without touching anything the caller still holds.
	resultCh := make(chan fetchResult, 1)
	go func() {
		pitches, err := a.source.FetchPitchMetrics(fetchCtx, w.Start, w.End)
		resultCh <- fetchResult{pitches: pitches, err: err}
	}()

	var pitches []models.PitchRecord
	select {
	case <-fetchCtx.Done():
		return nil, fmt.Errorf("window %s: %w", w, ErrSourceTimeout)
	case res := <-resultCh:
		if res.err != nil {
			if fetchCtx.Err() != nil {
				return nil, fmt.Errorf("window %s: %w", w, ErrSourceTimeout)
			}
			return nil, fmt.Errorf("window %s: fetch failed: %w", w, res.err)
		}
		pitches = res.pitches
	}

	if len(pitches) == 0 {
		return nil, fmt.Errorf("window %s: no pitch data: %w", w, ErrSourceMalformed)
	}

	for i := range pitches {
		if !pitches[i].Valid() {
			return nil, fmt.Errorf("window %s: pitch record missing required fields: %w", w, ErrSourceMalformed)
		}
	}

	return reduce(pitches), nil
}

// reduce groups pitches by game and sums absolute win-probability deltas.
// Date and teams come from the first record encountered for each game; group
// order is whatever the source returned, so ties beyond "first encountered"
// carry no guarantee.
func reduce(pitches []models.PitchRecord) []models.GameExcitement {
	byGame := make(map[int]*models.GameExcitement)
	order := make([]int, 0)

	for _, p := range pitches {
		game, ok := byGame[p.GameID]
		if !ok {
			game = &models.GameExcitement{
				GameID:   p.GameID,
				GameDate: p.GameDate,
				HomeTeam: p.HomeTeam,
				AwayTeam: p.AwayTeam,
			}
			byGame[p.GameID] = game
			order = append(order, p.GameID)
		}
		game.ExcitementScore += math.Abs(p.WinExpDelta)
	}

	games := make([]models.GameExcitement, 0, len(order))
	for _, id := range order {
		games = append(games, *byGame[id])
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].ExcitementScore > games[j].ExcitementScore
	})

	return games
}
