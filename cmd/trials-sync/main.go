package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yeahokpal/tuesday-trials-grid/pkg/config"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/ingest"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/logging"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/pagination"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/startgg"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	if err := cfg.RequireToken(); err != nil {
		log.Fatal().Err(err).Msg("Missing credentials")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("redis", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		log.Info().Str("redis", cfg.RedisURL).Msg("Response cache enabled")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	clientCfg := startgg.DefaultConfig(cfg.StartggToken)
	clientCfg.TournamentSearch = cfg.NameFilter
	clientCfg.Redis = redisClient
	client, err := startgg.New(clientCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create start.gg client")
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open snapshot database")
	}
	defer store.Close()

	pipelineCfg := ingest.Config{
		NameFilter:       cfg.NameFilter,
		PageSize:         cfg.PageSize,
		EventBatchSize:   cfg.EventBatchSize,
		ParticipantPause: cfg.ParticipantPause(),
		SetsPause:        cfg.SetsPause(),
		Pagination: pagination.Config{
			MaxConcurrency: cfg.MaxConcurrency,
		},
	}

	if err := ingest.New(client, store, pipelineCfg).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Ingestion run failed")
	}

	players, err := store.CountPlayers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count players")
	} else {
		log.Info().Int("players", players).Str("path", cfg.DBPath).Msg("Snapshot ready")
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("Metrics listener started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Metrics listener failed")
	}
}
