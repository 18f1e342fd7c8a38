package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/CatalogLens/internal/cache"
	"github.com/Belphemur/CatalogLens/internal/client"
	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/filter"
	grpcserver "github.com/Belphemur/CatalogLens/internal/grpc"
	"github.com/Belphemur/CatalogLens/internal/httpapi"
	"github.com/Belphemur/CatalogLens/internal/ingest"
	"github.com/Belphemur/CatalogLens/internal/metrics"
	"github.com/Belphemur/CatalogLens/internal/parser"
	"github.com/Belphemur/CatalogLens/internal/services"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Strs("sources", cfg.Sources).
		Strs("allowed_roots", cfg.Ingest.AllowedRoots).
		Strs("allowed_url_prefixes", cfg.Ingest.AllowedURLPrefixes).
		Str("cache_provider", cfg.Cache.Provider).
		Str("duplicates", cfg.Ingest.Duplicates).
		Str("cast_match", cfg.Filter.CastMatch).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Msg("Application started with configuration")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
			logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
		}
	}

	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		logger.Warn().Err(err).Str("ttl", cfg.Cache.TTL).Msg("Invalid cache TTL, entries will not expire")
		ttl = 0
	}
	tableCache, err := cache.New(cache.ProviderConfig{
		Provider:      cfg.Cache.Provider,
		Size:          cfg.Cache.Size,
		TTL:           ttl,
		Logger:        cache.NewZerologLogger(logger),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         "tables",
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Cache.Provider).Msg("Failed to create table cache")
	}
	defer func() {
		if err := tableCache.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close table cache")
		}
	}()

	parseOpts := parser.Options{
		Encoding:  cfg.Ingest.Encoding,
		Delimiter: parser.ParseDelimiter(cfg.Ingest.Delimiter),
		MaxBytes:  cfg.Ingest.MaxBytes,
	}
	loader := ingest.NewLoader(
		client.NewClient(cfg),
		parser.NewTableParser(parseOpts),
		tableCache,
		ingest.ParseDuplicatePolicy(cfg.Ingest.Duplicates),
		parseOpts,
	)
	policy, err := services.NewSourcePolicy(cfg.Sources, cfg.Ingest.AllowedRoots, cfg.Ingest.AllowedURLPrefixes)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid source allowlist")
	}
	svc := services.NewDashboardService(loader, filter.NewEngine(filter.ParseCastMatch(cfg.Filter.CastMatch)), policy)

	grpcServer := grpcserver.NewGRPCServer(svc)

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer shutdown(metricsServer, "metrics")
	}

	if cfg.HTTP.Enabled {
		apiServer := httpapi.NewHTTPServer(cfg.Server.Address, cfg.HTTP.Port, svc)
		go func() {
			logger.Info().Str("address", apiServer.Addr).Msg("Starting HTTP API server")
			if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve HTTP API")
			}
		}()
		defer shutdown(apiServer, "HTTP API")
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		logger.Fatal().Err(err).Str("address", address).Msg("Failed to create listener")
	}

	logger.Info().Str("address", address).Msg("Starting gRPC server")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		logger.Fatal().Err(err).Msg("Failed to serve gRPC")
	}

	logger.Info().Msg("Server stopped gracefully")
}

func shutdown(srv *http.Server, name string) {
	logger := config.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Str("server", name).Msg("Failed to shutdown server")
	}
}
