package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"energy-analyzer/config"
	"energy-analyzer/internal/backend"
	"energy-analyzer/internal/bot"
	"energy-analyzer/internal/cache"
	"energy-analyzer/internal/dashboard"
	"energy-analyzer/internal/database"
	"energy-analyzer/internal/monitor"
	logx "energy-analyzer/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		logx.Init()
		logx.Fatal().Err(err).Msg("failed to load configuration")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment()})
	if !dotenv {
		logx.Info().Msg(".env not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, rdb := newCache(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	client, err := backend.New(backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		ForceHTTPS: cfg.Backend.ForceHTTPS,
	}, backend.WithCache(store, cfg.CacheTTL))
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create backend client")
	}
	logx.Info().Str("backend", client.BaseURL()).Msg("plans backend configured")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to open state database")
	}
	defer db.Close()

	var telegram *tgbotapi.BotAPI
	if cfg.BotEnabled() {
		telegram, err = bot.Init(cfg.Telegram.Token)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to start telegram bot")
		}
	} else {
		logx.Info().Msg("TELEGRAM_BOT_TOKEN not set, telegram bot disabled")
	}

	var wg sync.WaitGroup

	server := dashboard.New(client, dashboard.Options{
		UsageKwh:  cfg.Analytics.UsageKwh,
		BaseFee:   cfg.Analytics.BaseFee,
		RateLimit: cfg.HTTP.RateLimit,
		AccessLog: !cfg.Environment().IsProduction(),
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Listen(cfg.HTTP.Addr); err != nil {
			logx.Error().Err(err).Msg("dashboard stopped")
			stop()
		}
	}()

	refresher := monitor.New(client, cfg.RefreshInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		refresher.Run(ctx)
	}()

	if telegram != nil {
		b := bot.New(telegram, client, db, bot.Options{
			OperatorChatID: cfg.Telegram.ChatID,
			Defaults: database.ChatSettings{
				UsageKwh: cfg.Analytics.UsageKwh,
				BaseFee:  cfg.Analytics.BaseFee,
			},
		})

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := telegram.GetUpdatesChan(u)
		defer telegram.StopReceivingUpdates()

		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Run(ctx, updates)
		}()
	}

	<-ctx.Done()
	logx.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("dashboard shutdown failed")
	}
	wg.Wait()
}

// newCache connects to Redis when configured and falls back to the
// in-process cache otherwise or when Redis is unreachable.
func newCache(ctx context.Context, cfg *config.Config) (cache.Store, *redis.Client) {
	if !cfg.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set, using in-memory cache")
		return cache.NewMemory(), nil
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
		return cache.NewMemory(), nil
	}
	logx.Info().Msg("using redis cache")
	return cache.NewRedis(rdb, cache.DefaultPrefix), rdb
}
