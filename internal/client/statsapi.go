package client

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mlb_excitement/ingestion/internal/cache"
	"mlb_excitement/ingestion/internal/excite"
	"mlb_excitement/ingestion/internal/metrics"
	"mlb_excitement/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Client talks to the MLB Stats API and the Baseball Savant pitch feed.
// Responses for slow-moving data (teams, finished schedules) go through an
// explicit cache so tests can substitute a fake and no hidden process-wide
// state survives between runs.
type Client struct {
	statsBaseURL  string
	savantBaseURL string
	httpClient    *http.Client
	rateLimiter   chan struct{} // Rate limiting semaphore
	maxRetries    int
	retryDelay    time.Duration

	cache            cache.Cache // may be nil
	cacheTTLTeams    time.Duration
	cacheTTLSchedule time.Duration
}

// Options configures optional client behavior.
type Options struct {
	Cache            cache.Cache
	CacheTTLTeams    time.Duration
	CacheTTLSchedule time.Duration
}

// NewClient creates a new MLB Stats API client
func NewClient(statsBaseURL, savantBaseURL string, timeout time.Duration, opts *Options) *Client {
	// Create rate limiter (max 10 concurrent requests)
	rateLimiter := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		rateLimiter <- struct{}{}
	}

	c := &Client{
		statsBaseURL:  statsBaseURL,
		savantBaseURL: savantBaseURL,
		rateLimiter:   rateLimiter,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	if opts != nil {
		c.cache = opts.Cache
		c.cacheTTLTeams = opts.CacheTTLTeams
		c.cacheTTLSchedule = opts.CacheTTLSchedule
	}

	return c
}

// get performs a GET request with retry logic and rate limiting
func (c *Client) get(ctx context.Context, fullURL string, params map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", fullURL).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Rate limiting: acquire semaphore
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.rateLimiter:
		}

		body, retryable, err := c.doRequest(ctx, fullURL, params)
		c.rateLimiter <- struct{}{}

		if err == nil {
			return body, nil
		}

		lastErr = err
		if !retryable || attempt == c.maxRetries {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// doRequest performs a single attempt. The second return value reports
// whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, fullURL string, params map[string]string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mlb-excitement-ingestion/1.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(req.URL.Path, "error", time.Since(start).Seconds())
		return nil, true, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(req.URL.Path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("url", fullURL).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Warn().
			Str("url", fullURL).
			Int("status", resp.StatusCode).
			Msg("Received retryable error")
		return nil, true, fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))

	default:
		return nil, false, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// cachedGet serves the URL from cache when possible, falling through to the
// network and populating the cache on success. ttl <= 0 disables caching.
func (c *Client) cachedGet(ctx context.Context, fullURL string, params map[string]string, key string, ttl time.Duration) ([]byte, error) {
	if c.cache != nil && ttl > 0 {
		if body, err := c.cache.Get(ctx, key); err == nil {
			metrics.RecordCacheHit()
			return body, nil
		}
		metrics.RecordCacheMiss()
	}

	body, err := c.get(ctx, fullURL, params)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && ttl > 0 {
		if err := c.cache.Set(ctx, key, body, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to cache API response")
		}
	}

	return body, nil
}

// Required columns in the Savant pitch feed CSV.
var pitchColumns = []string{"game_pk", "game_date", "home_team", "away_team", "delta_home_win_exp"}

// FetchPitchMetrics fetches per-pitch win-probability deltas for an inclusive
// date range. A response missing any required column is reported as malformed
// so the window loop can record the window as missed and continue.
func (c *Client) FetchPitchMetrics(ctx context.Context, start, end time.Time) ([]models.PitchRecord, error) {
	fullURL := fmt.Sprintf("%s/statcast_search/csv", c.savantBaseURL)
	params := map[string]string{
		"all":          "true",
		"type":         "details",
		"game_date_gt": start.Format("2006-01-02"),
		"game_date_lt": end.Format("2006-01-02"),
	}

	body, err := c.get(ctx, fullURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pitch metrics: %w", err)
	}

	pitches, err := parsePitchCSV(body)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("start", params["game_date_gt"]).
		Str("end", params["game_date_lt"]).
		Int("pitches", len(pitches)).
		Msg("Pitch metrics fetched")

	return pitches, nil
}

// parsePitchCSV decodes the Savant CSV body into pitch records.
func parsePitchCSV(body []byte) ([]models.PitchRecord, error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty pitch feed response: %w", excite.ErrSourceMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("unreadable pitch feed response: %w", excite.ErrSourceMalformed)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range pitchColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("pitch feed missing column %q: %w", col, excite.ErrSourceMalformed)
		}
	}

	var pitches []models.PitchRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unreadable pitch feed row: %w", excite.ErrSourceMalformed)
		}

		record, ok := parsePitchRow(row, index)
		if !ok {
			// Null fields happen in old seasons; the aggregator decides
			// whether the window as a whole is usable.
			pitches = append(pitches, models.PitchRecord{})
			continue
		}
		pitches = append(pitches, record)
	}

	return pitches, nil
}

func parsePitchRow(row []string, index map[string]int) (models.PitchRecord, bool) {
	field := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	gamePk, err := strconv.Atoi(field("game_pk"))
	if err != nil {
		return models.PitchRecord{}, false
	}
	gameDate, err := time.Parse("2006-01-02", field("game_date"))
	if err != nil {
		return models.PitchRecord{}, false
	}
	delta, err := strconv.ParseFloat(field("delta_home_win_exp"), 64)
	if err != nil {
		return models.PitchRecord{}, false
	}

	home := field("home_team")
	away := field("away_team")
	if home == "" || away == "" {
		return models.PitchRecord{}, false
	}

	return models.PitchRecord{
		GameID:      gamePk,
		GameDate:    gameDate,
		HomeTeam:    home,
		AwayTeam:    away,
		WinExpDelta: delta,
	}, true
}

// teamsResponse mirrors the Stats API teams payload.
type teamsResponse struct {
	Teams []models.TeamInput `json:"teams"`
}

// FetchTeams fetches all MLB clubs (sportId=1).
func (c *Client) FetchTeams(ctx context.Context) ([]models.TeamInput, error) {
	fullURL := fmt.Sprintf("%s/teams", c.statsBaseURL)
	body, err := c.cachedGet(ctx, fullURL, map[string]string{"sportId": "1"}, "statsapi:teams", c.cacheTTLTeams)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var resp teamsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal teams: %w", err)
	}

	return resp.Teams, nil
}

// scheduleResponse mirrors the Stats API schedule payload, pared down to the
// fields the pipeline needs.
type scheduleResponse struct {
	Dates []struct {
		Games []struct {
			GamePk int `json:"gamePk"`
			Status struct {
				DetailedState string `json:"detailedState"`
			} `json:"status"`
			Teams struct {
				Home scheduleSide `json:"home"`
				Away scheduleSide `json:"away"`
			} `json:"teams"`
		} `json:"games"`
	} `json:"dates"`
}

type scheduleSide struct {
	Score *int `json:"score,omitempty"`
	Team  struct {
		Name string `json:"name"`
	} `json:"team"`
}

// FetchScheduleByGameID fetches schedule data (including final scores) for a
// single game.
func (c *Client) FetchScheduleByGameID(ctx context.Context, gameID int) (*models.ScheduleGame, error) {
	games, err := c.fetchSchedule(ctx, map[string]string{
		"sportId": "1",
		"gamePk":  strconv.Itoa(gameID),
	}, fmt.Sprintf("statsapi:schedule:game:%d", gameID))
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("no schedule entry for game %d", gameID)
	}
	return &games[0], nil
}

// FetchScheduleByDate fetches all games scheduled on a single date.
func (c *Client) FetchScheduleByDate(ctx context.Context, date time.Time) ([]models.ScheduleGame, error) {
	day := date.Format("2006-01-02")
	return c.fetchSchedule(ctx, map[string]string{
		"sportId": "1",
		"date":    day,
	}, "statsapi:schedule:date:"+day)
}

func (c *Client) fetchSchedule(ctx context.Context, params map[string]string, cacheKey string) ([]models.ScheduleGame, error) {
	fullURL := fmt.Sprintf("%s/schedule", c.statsBaseURL)
	body, err := c.cachedGet(ctx, fullURL, params, cacheKey, c.cacheTTLSchedule)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}

	var games []models.ScheduleGame
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			games = append(games, models.ScheduleGame{
				GamePk:    g.GamePk,
				HomeName:  g.Teams.Home.Team.Name,
				AwayName:  g.Teams.Away.Team.Name,
				HomeScore: g.Teams.Home.Score,
				AwayScore: g.Teams.Away.Score,
				Status:    g.Status.DetailedState,
			})
		}
	}

	return games, nil
}

// contentResponse mirrors the game content payload, pared down to highlight
// playbacks.
type contentResponse struct {
	Highlights struct {
		Highlights struct {
			Items []struct {
				Slug      string `json:"slug"`
				Playbacks []struct {
					URL string `json:"url"`
				} `json:"playbacks"`
			} `json:"items"`
		} `json:"highlights"`
	} `json:"highlights"`
}

// FetchCondensedGame fetches the condensed-game highlight URL for a game.
// Returns an empty string when the game has no condensed highlight; many
// historical games do not.
func (c *Client) FetchCondensedGame(ctx context.Context, gameID int) (string, error) {
	fullURL := fmt.Sprintf("%s/game/%d/content", c.statsBaseURL, gameID)
	body, err := c.get(ctx, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch game content: %w", err)
	}

	var resp contentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal game content: %w", err)
	}

	for _, item := range resp.Highlights.Highlights.Items {
		if !strings.Contains(item.Slug, "condensed-game") {
			continue
		}
		if len(item.Playbacks) > 0 {
			return item.Playbacks[0].URL, nil
		}
	}

	return "", nil
}

// BaseURLs reports the configured endpoints, useful in startup logs.
func (c *Client) BaseURLs() (stats, savant string) {
	if u, err := url.Parse(c.statsBaseURL); err == nil {
		stats = u.Host
	}
	if u, err := url.Parse(c.savantBaseURL); err == nil {
		savant = u.Host
	}
	return stats, savant
}
