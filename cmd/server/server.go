package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"kust-server/support-api/internal/config"
	"kust-server/support-api/internal/domain/chat"
	"kust-server/support-api/internal/domain/tool"
	"kust-server/support-api/internal/infrastructure/knowledge"
	"kust-server/support-api/internal/infrastructure/llmclient"
	"kust-server/support-api/internal/infrastructure/logger"
	"kust-server/support-api/internal/infrastructure/metrics"
	"kust-server/support-api/internal/infrastructure/observability"
	"kust-server/support-api/internal/infrastructure/session"
	"kust-server/support-api/internal/interfaces/httpserver"
)

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	kb := knowledge.NewStore()
	registry := tool.NewRegistry()
	registry.Register("get_info", func(ctx context.Context, query string) (any, error) {
		return kb.Lookup(query), nil
	})

	sessions := session.NewInMemoryStore(chat.SystemPrompt)
	llmClient := llmclient.NewClient(cfg.InferenceURL, cfg.InferenceKey, cfg.SummarizeTimeout, cfg.StreamTimeout)

	chatService := chat.NewService(llmClient, sessions, registry, chat.Options{
		Model:            cfg.InferenceModelID,
		MaxTurns:         cfg.MaxTurns,
		HistoryWindow:    cfg.HistoryWindow,
		RecentKeep:       cfg.RecentKeep,
		DetectorBuffer:   cfg.DetectorBuffer,
		SummarizeTimeout: cfg.SummarizeTimeout,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
	}, log)

	server := httpserver.New(cfg, log, chatService, sessions)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		return runJanitor(gctx, sessions, cfg, log)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// runJanitor evicts idle sessions on an interval so the in-memory store
// cannot grow without bound.
func runJanitor(ctx context.Context, sessions *session.InMemoryStore, cfg *config.Config, log zerolog.Logger) error {
	ticker := time.NewTicker(cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := sessions.Prune(cfg.SessionTTL); removed > 0 {
				log.Info().Int("removed", removed).Msg("pruned idle sessions")
			}
			metrics.ActiveSessions.Set(float64(sessions.Len()))
		}
	}
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
