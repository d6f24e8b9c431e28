package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mlb_excitement/ingestion/internal/cache"
	"mlb_excitement/ingestion/internal/excite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pitchCSV = `pitch_type,game_pk,game_date,home_team,away_team,delta_home_win_exp
FF,745804,2024-07-01,NYY,BOS,-0.032
SL,745804,2024-07-01,NYY,BOS,0.015
CH,745810,2024-07-02,LAD,SF,0.004
`

func newTestClient(handler http.Handler, opts *Options) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(srv.URL, srv.URL, 5*time.Second, opts)
	c.retryDelay = time.Millisecond
	return c, srv
}

func TestFetchPitchMetrics_ParsesCSV(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statcast_search/csv", r.URL.Path)
		assert.Equal(t, "2024-07-01", r.URL.Query().Get("game_date_gt"))
		assert.Equal(t, "2024-07-07", r.URL.Query().Get("game_date_lt"))
		w.Write([]byte(pitchCSV))
	}), nil)
	defer srv.Close()

	start, _ := time.Parse("2006-01-02", "2024-07-01")
	end, _ := time.Parse("2006-01-02", "2024-07-07")

	pitches, err := c.FetchPitchMetrics(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, pitches, 3)

	assert.Equal(t, 745804, pitches[0].GameID)
	assert.Equal(t, "NYY", pitches[0].HomeTeam)
	assert.Equal(t, "BOS", pitches[0].AwayTeam)
	assert.InDelta(t, -0.032, pitches[0].WinExpDelta, 1e-9)
	assert.True(t, pitches[0].Valid())
}

func TestFetchPitchMetrics_MissingColumnIsMalformed(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pitch_type,game_pk,game_date\nFF,745804,2024-07-01\n"))
	}), nil)
	defer srv.Close()

	_, err := c.FetchPitchMetrics(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, excite.ErrSourceMalformed))
}

func TestFetchPitchMetrics_EmptyBodyIsMalformed(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(""))
	}), nil)
	defer srv.Close()

	_, err := c.FetchPitchMetrics(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, excite.ErrSourceMalformed))
}

func TestFetchPitchMetrics_UnparseableRowYieldsInvalidRecord(t *testing.T) {
	// Old seasons have null deltas; the row comes back invalid so the
	// aggregator can fail the window, not the transport.
	body := "game_pk,game_date,home_team,away_team,delta_home_win_exp\n745804,2024-07-01,NYY,BOS,null\n"
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}), nil)
	defer srv.Close()

	pitches, err := c.FetchPitchMetrics(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, pitches, 1)
	assert.False(t, pitches[0].Valid())
}

func TestGet_RetriesOnServiceUnavailable(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()

		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(pitchCSV))
	}), nil)
	defer srv.Close()

	pitches, err := c.FetchPitchMetrics(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.Len(t, pitches, 3)

	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestGet_NoRetryOnClientError(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	}), nil)
	defer srv.Close()

	_, err := c.FetchPitchMetrics(context.Background(), time.Now(), time.Now())
	require.Error(t, err)

	mu.Lock()
	assert.Equal(t, 1, attempts, "4xx responses are not retryable")
	mu.Unlock()
}

func TestFetchTeams(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("sportId"))
		w.Write([]byte(`{"teams":[{"id":147,"teamName":"Yankees","abbreviation":"NYY"}]}`))
	}), nil)
	defer srv.Close()

	teams, err := c.FetchTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, 147, teams[0].TeamID)
	assert.Equal(t, "Yankees", teams[0].TeamName)
}

// fakeCache is an in-memory Cache for exercising the cachedGet path without
// a Redis server.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.store[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store == nil {
		f.store = make(map[string][]byte)
	}
	f.store[key] = value
	f.sets++
	return nil
}

func (f *fakeCache) Close() error { return nil }

func TestFetchTeams_SecondCallServedFromCache(t *testing.T) {
	var mu sync.Mutex
	hits := 0

	fc := &fakeCache{}
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Write([]byte(`{"teams":[{"id":147,"teamName":"Yankees","abbreviation":"NYY"}]}`))
	}), &Options{Cache: fc, CacheTTLTeams: time.Minute})
	defer srv.Close()

	_, err := c.FetchTeams(context.Background())
	require.NoError(t, err)
	_, err = c.FetchTeams(context.Background())
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, 1, hits, "second fetch must not reach the network")
	mu.Unlock()
	assert.Equal(t, 1, fc.sets)
}

func TestFetchScheduleByGameID(t *testing.T) {
	body := `{"dates":[{"games":[{"gamePk":745804,"status":{"detailedState":"Final"},
		"teams":{"home":{"score":5,"team":{"name":"Yankees"}},"away":{"score":3,"team":{"name":"Red Sox"}}}}]}]}`

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule", r.URL.Path)
		assert.Equal(t, "745804", r.URL.Query().Get("gamePk"))
		w.Write([]byte(body))
	}), nil)
	defer srv.Close()

	sched, err := c.FetchScheduleByGameID(context.Background(), 745804)
	require.NoError(t, err)

	assert.Equal(t, 745804, sched.GamePk)
	assert.Equal(t, "Yankees", sched.HomeName)
	assert.True(t, sched.IsFinal())
	require.NotNil(t, sched.HomeScore)
	assert.Equal(t, 5, *sched.HomeScore)
	require.NotNil(t, sched.AwayScore)
	assert.Equal(t, 3, *sched.AwayScore)
}

func TestFetchCondensedGame(t *testing.T) {
	body := `{"highlights":{"highlights":{"items":[
		{"slug":"recap-745804","playbacks":[{"url":"https://example.com/recap.mp4"}]},
		{"slug":"condensed-game-745804","playbacks":[{"url":"https://example.com/condensed.mp4"}]}
	]}}}`

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/game/745804/content", r.URL.Path)
		w.Write([]byte(body))
	}), nil)
	defer srv.Close()

	url, err := c.FetchCondensedGame(context.Background(), 745804)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/condensed.mp4", url)
}

func TestFetchCondensedGame_NoHighlight(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"highlights":{"highlights":{"items":[]}}}`))
	}), nil)
	defer srv.Close()

	url, err := c.FetchCondensedGame(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, url, "historical games often have no condensed highlight")
}
