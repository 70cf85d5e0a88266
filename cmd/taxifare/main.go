package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"taxifare.predict.org/internal/app"
	"taxifare.predict.org/internal/config"
	"taxifare.predict.org/internal/geocode"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/quote"
	"taxifare.predict.org/internal/report"
)

const version = "1.0.0"

// memoryCacheEntries bounds the per-process geocode cache used without Redis.
const memoryCacheEntries = 10000

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var (
		port       = flag.Int("port", 4000, "API server port")
		env        = flag.String("env", "development", "Environment (development|staging|production)")
		configFile = flag.String("config-file", "", "Path to a local JSON settings file")
		configURL  = flag.String("config-url", "", "URL to a remote JSON settings file")
	)
	flag.Parse()

	configAuthUser := os.Getenv("CONFIG_AUTH_USER")
	configAuthPass := os.Getenv("CONFIG_AUTH_PASS")

	if err := config.ValidateConfigFlags(configFile, configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	report.SetupSentry(*env, version)
	defer report.FlushSentry()
	report.ConfigureScope(*env, version)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := app.NewPooledClient()

	settings, err := config.LoadSettings(ctx, client, *configFile, *configURL, configAuthUser, configAuthPass)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.NewConfig(*port, *env, settings)

	geocoder, closeCache, err := newGeocoder(ctx, settings, client, logger)
	if err != nil {
		logger.Error("failed to set up geocoder", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	store, closeStore, err := newQuoteStore(ctx, logger)
	if err != nil {
		logger.Error("failed to set up quote history", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	application := app.New(cfg, logger, client, geocoder, store, version)
	application.StartMetricsCollection(ctx)

	if *configURL != "" {
		go application.ConfigService.RefreshConfig(ctx, *configURL, configAuthUser, configAuthPass, cfg.RefreshInterval)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "geocoder", geocoder.Name())
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			report.ReportError(err, sentry.LevelFatal)
			report.FlushSentry()
			logger.Error(err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}

// newGeocoder builds the configured provider behind a cache: Redis when
// TAXIFARE_REDIS_ADDR is set, an in-process cache otherwise.
func newGeocoder(ctx context.Context, settings models.Settings, client *http.Client, logger *slog.Logger) (geocode.Geocoder, func(), error) {
	var provider geocode.Geocoder
	switch settings.Geocoder.Provider {
	case models.GeocoderGoogle:
		g, err := geocode.NewGoogleGeocoder(client, settings.Geocoder.APIKey, "")
		if err != nil {
			return nil, nil, err
		}
		provider = g
	default:
		provider = geocode.NewNominatimGeocoder(client, settings.Geocoder.BaseURL, settings.Geocoder.UserAgent)
	}

	var cache geocode.Cache = geocode.NewMemoryCache(memoryCacheEntries)
	closeCache := func() {}

	if addr := os.Getenv("TAXIFARE_REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("TAXIFARE_REDIS_PASSWORD"),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", addr, err)
		}
		cache = geocode.NewRedisCache(rdb)
		closeCache = func() { _ = rdb.Close() }
		logger.Info("geocode cache on redis", "addr", addr)
	}

	ttl := time.Duration(settings.Geocoder.CacheTTLSeconds) * time.Second
	return geocode.NewCachingGeocoder(provider, cache, config.NewBackoffStore(), ttl, logger), closeCache, nil
}

// newQuoteStore opens the quote history when TAXIFARE_DATABASE_URL is set.
// Without it the store is nil and /v1/quotes answers 404.
func newQuoteStore(ctx context.Context, logger *slog.Logger) (quote.Store, func(), error) {
	dsn := os.Getenv("TAXIFARE_DATABASE_URL")
	if dsn == "" {
		logger.Info("quote history disabled", "reason", "TAXIFARE_DATABASE_URL not set")
		return nil, func() {}, nil
	}

	pool, err := quote.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	store := quote.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}
