// Package dataset persists the accumulated per-game rows and the
// missed-window ledger as flat file artifacts: a row-oriented CSV for the
// serving layer's schema contract, a gob snapshot for fast reloads, and a
// JSON array for the ledger. All writes are whole-file with overwrite
// semantics, performed once after the full run completes.
package dataset

import (
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"mlb_excitement/ingestion/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// csvHeader is the stable column contract consumed by the serving layer.
var csvHeader = []string{"game_id", "game_date", "home_team", "away_team", "excitement_score"}

// Dedupe drops repeated game IDs, keeping the first occurrence. Weekly
// windows should never produce duplicates given non-overlapping date
// partitioning, so every duplicate is logged for investigation rather than
// silently summed or overwritten.
func Dedupe(games []models.GameExcitement) []models.GameExcitement {
	seen := make(map[int]struct{}, len(games))
	out := make([]models.GameExcitement, 0, len(games))

	for _, g := range games {
		if _, dup := seen[g.GameID]; dup {
			log.Warn().
				Int("game_id", g.GameID).
				Str("date", g.GameDate.Format("2006-01-02")).
				Msg("Duplicate game ID across windows, keeping first occurrence")
			continue
		}
		seen[g.GameID] = struct{}{}
		out = append(out, g)
	}

	if dropped := len(games) - len(out); dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped duplicate games at sink-write stage")
	}

	return out
}

// WriteCSV writes the dataset as a flat table, overwriting any previous run.
func WriteCSV(path string, games []models.GameExcitement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write dataset header: %w", err)
	}

	for _, g := range games {
		record := []string{
			strconv.Itoa(g.GameID),
			g.GameDate.Format("2006-01-02"),
			g.HomeTeam,
			g.AwayTeam,
			strconv.FormatFloat(g.ExcitementScore, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset: %w", err)
	}

	log.Info().Str("path", path).Int("rows", len(games)).Msg("Dataset CSV written")
	return nil
}

// snapshotRow is the gob wire shape of one dataset row. RowID is generated
// once here, at write time; it is the durable identifier downstream loads
// carry forward.
type snapshotRow struct {
	RowID           string
	GameID          int
	GameDate        time.Time
	HomeTeam        string
	AwayTeam        string
	ExcitementScore float64
}

// Snapshot is the binary artifact the serving layer loads instead of
// re-parsing the CSV.
type Snapshot struct {
	WrittenAt time.Time
	Rows      []snapshotRow
}

// WriteSnapshot writes the gob snapshot, assigning each row a fresh UUID.
func WriteSnapshot(path string, games []models.GameExcitement) error {
	snap := Snapshot{
		WrittenAt: time.Now().UTC(),
		Rows:      make([]snapshotRow, 0, len(games)),
	}
	for _, g := range games {
		snap.Rows = append(snap.Rows, snapshotRow{
			RowID:           uuid.New().String(),
			GameID:          g.GameID,
			GameDate:        g.GameDate,
			HomeTeam:        g.HomeTeam,
			AwayTeam:        g.AwayTeam,
			ExcitementScore: g.ExcitementScore,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(&snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	log.Info().Str("path", path).Int("rows", len(snap.Rows)).Msg("Dataset snapshot written")
	return nil
}

// ReadSnapshot loads a previously written snapshot.
func ReadSnapshot(path string) ([]models.GameExcitement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	games := make([]models.GameExcitement, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		games = append(games, models.GameExcitement{
			GameID:          r.GameID,
			GameDate:        r.GameDate,
			HomeTeam:        r.HomeTeam,
			AwayTeam:        r.AwayTeam,
			ExcitementScore: r.ExcitementScore,
		})
	}

	return games, nil
}

// WriteMissedLedger writes the missed-window ledger as a JSON array of
// "<start> to <end>" strings.
func WriteMissedLedger(path string, missed []string) error {
	if missed == nil {
		missed = []string{}
	}

	data, err := json.MarshalIndent(missed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal missed-window ledger: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write missed-window ledger: %w", err)
	}

	log.Info().Str("path", path).Int("entries", len(missed)).Msg("Missed-window ledger written")
	return nil
}

// ReadMissedLedger loads a ledger file written by WriteMissedLedger.
func ReadMissedLedger(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read missed-window ledger: %w", err)
	}

	var missed []string
	if err := json.Unmarshal(data, &missed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal missed-window ledger: %w", err)
	}

	return missed, nil
}
