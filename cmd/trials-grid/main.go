package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/yeahokpal/tuesday-trials-grid/pkg/config"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/grid"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/logging"
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

	queries, err := grid.LoadQueryFile(cfg.GridQueries)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.GridQueries).Msg("Failed to load grid queries")
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open snapshot database")
	}
	defer store.Close()

	g, err := grid.NewBuilder(queries, store).Build(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build grid")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(g); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode grid")
	}
}
