// Command scoring-server runs the HTTP service that grades code submissions
// with an LLM against a caller-supplied rubric.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/code-scoring/engine/infrastructure/httpapi"
	"github.com/code-scoring/engine/infrastructure/llm"
	"github.com/code-scoring/engine/infrastructure/middleware"
	"github.com/code-scoring/engine/internal/application"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the service configuration file")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	config, err := application.LoadAppConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	levelName := config.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		levelName = env
	}
	if level, err := zerolog.ParseLevel(levelName); err == nil && levelName != "" {
		logger = logger.Level(level)
	}

	table, err := llm.LoadProviderTable(config.ProvidersPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load provider table")
	}

	registry, err := llm.NewRegistry(table)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build provider registry")
	}

	templates, err := application.NewTemplateStore(config.PromptsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load prompt templates")
	}

	metrics := middleware.NewPrometheusMetrics()

	caller := llm.NewHTTPCaller(table, nil,
		llm.WithTracing(),
		llm.WithMetrics(metrics),
		llm.WithRetry(table, logger),
		llm.WithRateLimit(table),
	)

	service := application.NewScoringService(registry, caller, templates, logger)
	handler := httpapi.NewHandler(service, metrics, config.BatchConcurrency, logger)

	server := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           httpapi.NewRouter(handler, config.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", config.ListenAddr).Msg("scoring server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
