package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/localspot/backend/internal/config"
	"github.com/localspot/backend/internal/db"
	"github.com/localspot/backend/internal/directory"
	"github.com/localspot/backend/internal/geocode"
	httpapi "github.com/localspot/backend/internal/http"
	"github.com/localspot/backend/internal/models"
	"github.com/localspot/backend/internal/observability"
	"github.com/localspot/backend/internal/osm"
	"github.com/localspot/backend/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "localspot-backend").Logger()

	ctx := context.Background()

	var store *db.Store
	if cfg.DatabaseURL != "" {
		store, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
	}

	dir := directory.New(loadBusinesses(ctx, cfg, store, logger))

	nominatim := &geocode.Client{
		BaseURL:     cfg.NominatimURL,
		UserAgent:   cfg.GeocodeUserAgent,
		MinInterval: cfg.GeocodeMinInterval,
	}
	overpass := &osm.Client{
		BaseURL:   cfg.OverpassURL,
		UserAgent: cfg.GeocodeUserAgent,
		RadiusM:   cfg.POIRadiusM,
	}

	engine := search.New(dir.Match, overpass.FetchPOIs, nominatim.Search, search.Options{
		MaxResults:     cfg.SearchMaxResults,
		AdapterTimeout: cfg.AdapterTimeout,
		Logger:         logger,
		Metrics:        observability.NewMetrics(),
	})

	router := httpapi.Router(cfg, store, dir, engine, nominatim, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Int("businesses", dir.Len()).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

// loadBusinesses seeds the directory from Postgres when configured, else
// from the CSV seed file, else starts empty (the import endpoint can
// populate it later).
func loadBusinesses(ctx context.Context, cfg config.Config, store *db.Store, logger zerolog.Logger) []models.Business {
	if store != nil {
		businesses, err := store.ListBusinesses(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load businesses from db")
		}
		logger.Info().Int("count", len(businesses)).Msg("business directory loaded from db")
		return businesses
	}
	if cfg.BusinessCSVPath != "" {
		businesses, errs, err := directory.LoadCSVFile(cfg.BusinessCSVPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.BusinessCSVPath).Msg("failed to read business seed")
		}
		for _, e := range errs {
			logger.Warn().Str("row_error", e).Msg("business seed row skipped")
		}
		logger.Info().Int("count", len(businesses)).Msg("business directory loaded from csv")
		return businesses
	}
	logger.Warn().Msg("starting with empty business directory")
	return nil
}
