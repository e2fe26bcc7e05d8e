package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ivugurura/music-vault/config"
	"github.com/ivugurura/music-vault/internal/analytics"
	"github.com/ivugurura/music-vault/internal/catalog"
	"github.com/ivugurura/music-vault/internal/geo"
	"github.com/ivugurura/music-vault/internal/httpapi"
	"github.com/ivugurura/music-vault/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	counters, err := store.NewRedisCounters(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up counter store")
	}
	defer counters.Close()

	geoResolver := geo.NewResolver(cfg.GeoIPDBPath, cfg.EnableGeoIP)
	defer geoResolver.Close()

	cat, err := catalog.Load(cfg.PlaylistFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.PlaylistFile).Msg("failed to load playlist")
	}
	if cfg.PlaylistFile != "" {
		log.Info().Stringer("catalog", cat.Stats()).Msg("catalog loaded")
	}

	ingestor := analytics.NewIngestor(counters, log.Logger)
	assembler := analytics.NewAssembler(counters, log.Logger)
	handlers := httpapi.NewHandlers(ingestor, assembler, counters, geoResolver, log.Logger, cfg.MaxBodyBytes)

	router := httpapi.NewRouter(handlers, cat, httpapi.RouterConfig{
		AnalyticsToken:   cfg.AnalyticsToken,
		IngestRatePerMin: cfg.IngestRatePerMin,
		MusicDir:         cfg.MusicDir,
	}, log.Logger)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
