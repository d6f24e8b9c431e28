package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mlb_excitement/ingestion/internal/cache"
	"mlb_excitement/ingestion/internal/client"
	"mlb_excitement/ingestion/internal/config"
	"mlb_excitement/ingestion/internal/excite"
	"mlb_excitement/ingestion/internal/loader"
	"mlb_excitement/ingestion/internal/metrics"
	"mlb_excitement/ingestion/internal/repository"
	"mlb_excitement/ingestion/internal/scheduler"
	"mlb_excitement/ingestion/internal/teams"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting MLB Excitement Ingestion Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize Redis response cache
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

	// Initialize stats API client
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
	statsHost, savantHost := apiClient.BaseURLs()
	log.Info().
		Str("stats_api", statsHost).
		Str("pitch_feed", savantHost).
		Msg("Stats API client initialized")

	// Initialize database connection
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

	// Refresh clubs and validate the alias table up front so unmapped team
	// names fail loudly at startup rather than mid-ingest.
	ldr := loader.New(apiClient, db)
	if _, err := ldr.RefreshTeams(ctx); err != nil {
		log.Error().Err(err).Msg("Team refresh failed, continuing with existing teams")
	}
	if clubs, err := apiClient.FetchTeams(ctx); err == nil {
		if _, err := teams.NewAliasTable(clubs); err != nil {
			log.Fatal().Err(err).Msg("Team alias table failed validation")
		}
		log.Info().Int("clubs", len(clubs)).Msg("Team alias table validated")
	}

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort))
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start the daily ingest scheduler
	aggregator := excite.NewAggregator(
		excite.PitchSourceFunc(apiClient.FetchPitchMetrics),
		cfg.WindowTimeout,
	)
	sched := scheduler.NewScheduler(cfg, aggregator, ldr)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
