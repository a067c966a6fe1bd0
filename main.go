package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cronoindovina/go-server/internal/config"
	"github.com/cronoindovina/go-server/internal/controller"
	"github.com/cronoindovina/go-server/internal/events"
	"github.com/cronoindovina/go-server/internal/httpserver"
	"github.com/cronoindovina/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := events.Init(cfg.EventsFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load event catalog")
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	resolver := events.NewDBResolver(db, cfg.DailySalt, events.Catalog())
	gw := store.NewSQLite(db)
	ctrl := controller.New(resolver, gw)

	srv := httpserver.New(cfg, db, ctrl, gw)
	log.Info().Str("addr", cfg.HTTPAddr).Msg("starting cronoindovina server")
	if err := srv.Start(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
