package excite

import (
	"context"
	"errors"
	"testing"
	"time"

	"mlb_excitement/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_PartialFailureRun(t *testing.T) {
	// Window 1 succeeds with 3 games; window 2 hangs past the timeout.
	source := PitchSourceFunc(func(ctx context.Context, start, end time.Time) ([]models.PitchRecord, error) {
		if start.Equal(day("2024-01-01")) {
			return []models.PitchRecord{
				pitch(1, "2024-01-02", "Yankees", "Red Sox", 0.4),
				pitch(2, "2024-01-03", "Dodgers", "Giants", 0.2),
				pitch(3, "2024-01-05", "Cubs", "Cardinals", 0.7),
			}, nil
		}
		time.Sleep(200 * time.Millisecond)
		return nil, nil
	})

	driver := NewDriver(NewAggregator(source, 50*time.Millisecond))
	result, err := driver.Run(context.Background(), day("2024-01-01"), day("2024-01-14"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.WindowsTotal)
	assert.Len(t, result.Games, 3, "window 1's games survive window 2's failure")
	require.Len(t, result.MissedWindows, 1)
	assert.Equal(t, "2024-01-08 to 2024-01-14", result.MissedWindows[0])
}

func TestDriver_EveryWindowInExactlyOneOutcome(t *testing.T) {
	// Alternate success and failure across a 6-window range.
	calls := 0
	source := PitchSourceFunc(func(ctx context.Context, start, end time.Time) ([]models.PitchRecord, error) {
		calls++
		if calls%2 == 0 {
			return nil, errors.New("feed unavailable")
		}
		return []models.PitchRecord{
			pitch(calls, start.Format("2006-01-02"), "Home", "Away", 0.1),
		}, nil
	})

	driver := NewDriver(NewAggregator(source, time.Second))
	result, err := driver.Run(context.Background(), day("2024-04-01"), day("2024-05-12"))
	require.NoError(t, err)

	assert.Equal(t, 6, result.WindowsTotal)
	assert.Equal(t, result.WindowsTotal, len(result.Games)+len(result.MissedWindows),
		"every window contributed rows or was ledgered, never both, never neither")
}

func TestDriver_AllWindowsFail(t *testing.T) {
	source := staticSource(nil, errors.New("feed down"))

	driver := NewDriver(NewAggregator(source, time.Second))
	result, err := driver.Run(context.Background(), day("2024-01-01"), day("2024-01-21"))
	require.NoError(t, err, "window failures must never abort the run")

	assert.Empty(t, result.Games)
	assert.Len(t, result.MissedWindows, 3)
}

func TestDriver_ChronologicalLedgerOrder(t *testing.T) {
	source := staticSource(nil, nil) // every window empty -> missed

	driver := NewDriver(NewAggregator(source, time.Second))
	result, err := driver.Run(context.Background(), day("2024-01-01"), day("2024-01-28"))
	require.NoError(t, err)

	expected := []string{
		"2024-01-01 to 2024-01-07",
		"2024-01-08 to 2024-01-14",
		"2024-01-15 to 2024-01-21",
		"2024-01-22 to 2024-01-28",
	}
	assert.Equal(t, expected, result.MissedWindows)
}

func TestDriver_InvalidRangeIsFatal(t *testing.T) {
	driver := NewDriver(NewAggregator(staticSource(nil, nil), time.Second))
	_, err := driver.Run(context.Background(), day("2024-02-01"), day("2024-01-01"))
	assert.Error(t, err, "inverted range must fail before any window runs")
}
