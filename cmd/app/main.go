package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-channel-broadcast/internal/config"
	pg "telegram-channel-broadcast/internal/infra/db/postgres"
	"telegram-channel-broadcast/internal/infra/logging"
	"telegram-channel-broadcast/internal/infra/metrics"
	red "telegram-channel-broadcast/internal/infra/redis"
	"telegram-channel-broadcast/internal/infra/sched"
	tele "telegram-channel-broadcast/internal/infra/telegram"
	"telegram-channel-broadcast/internal/infra/web"
	"telegram-channel-broadcast/internal/infra/worker"
	"telegram-channel-broadcast/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	channelRepo := pg.NewPostgresChannelRepo(pool)
	sudoRepo := pg.NewPostgresSudoRepo(pool)
	scheduledRepo := pg.NewPostgresScheduledPostRepo(pool)

	// ---- Use cases ----
	directoryUC := usecase.NewDirectoryUseCase(channelRepo, sudoRepo, cfg.Bot.OwnerID, cfg.Broadcast.MaxChannels, logger)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, directoryUC, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}

	dispatcher := usecase.NewDispatcher(botAdapter.Gateway(), cfg.Broadcast.SendDelay, logger)

	pool2 := worker.NewPool(cfg.Broadcast.Dispatchers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	broadcastUC := usecase.NewBroadcastUseCase(directoryUC, scheduledRepo, dispatcher, pool2, logger)
	botAdapter.SetBroadcast(broadcastUC)

	if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Ops server ----
	opsServer := web.NewServer(directoryUC, cfg.Admin.APIKey, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Admin.Port)
		if err := opsServer.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Session expiry sweeper ----
	sweeper := sched.NewSessionSweeper(cfg.Session.SweepInterval, cfg.Session.TTL, broadcastUC, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = opsServer.Shutdown(shutdownCtx)
	botAdapter.StopPolling()
	cancel()
}
