package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/Johtaguerrero/artigogenio/internal/config"
	"github.com/Johtaguerrero/artigogenio/internal/domain/generation"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
	"github.com/Johtaguerrero/artigogenio/internal/domain/pipeline"
	"github.com/Johtaguerrero/artigogenio/internal/domain/retry"
	"github.com/Johtaguerrero/artigogenio/internal/domain/video"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/gemini"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/logger"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/metrics"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/search"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/store"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/wordpress"
	"github.com/Johtaguerrero/artigogenio/internal/interfaces/httpserver"
)

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiTimeout)

	textPolicy := retry.TextPolicy()
	textPolicy.MaxRetries = cfg.TextRetryMax
	textPolicy.InitialDelay = cfg.TextRetryInitialDelay
	imagePolicy := retry.ImagePolicy()
	imagePolicy.MaxRetries = cfg.ImageRetryMax
	imagePolicy.InitialDelay = cfg.ImageRetryInitial

	// One token per provider call, refilled at the configured per-minute
	// rate with a small burst for back-to-back pipeline stages.
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.ProviderRPM)), 2)
	breaker := llm.NewQuotaBreaker().OnTrip(metrics.BreakerTrips.Inc)

	dispatcher := llm.NewDispatcher(provider, llm.DispatcherConfig{
		TextModel:     cfg.TextModel,
		FallbackModel: cfg.FallbackModel,
		ImageModel:    cfg.ImageModel,
		TextPolicy:    textPolicy,
		ImagePolicy:   imagePolicy,
	}, limiter, breaker)

	var searcher pipeline.LinkSearcher
	if cfg.SerperAPIKey != "" {
		searcher = search.NewClient(cfg.SerperAPIKey, cfg.SearchTimeout)
	} else {
		log.Warn().Msg("SERPER_API_KEY not set, internal link discovery disabled")
	}

	st, err := buildStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize store")
	}

	videos := video.NewResolver(dispatcher)

	pipeCfg := pipeline.DefaultConfig()
	pipeCfg.EnableInternalLinks = searcher != nil
	pipe := pipeline.New(dispatcher, searcher, videos, st, st, pipeCfg, log, metrics.StageObserver{})

	publishers := func(creds wordpress.Credentials) generation.Publisher {
		return wordpress.NewClient(creds, cfg.PublishTimeout)
	}
	service := generation.NewService(pipe, dispatcher, videos, st, publishers, log)

	httpServer := httpserver.New(cfg, log, service, st)
	if err := httpServer.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}

	log.Info().Msg("server exited cleanly")
}

func buildStore(cfg *config.Config) (store.Store, error) {
	if cfg.RedisURL == "" {
		return store.NewMemory(cfg.StorageBudgetBytes), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return store.NewRedis(client, cfg.StorageBudgetBytes), nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
