package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sweeper/internal/bot"
	"sweeper/internal/config"
	"sweeper/internal/keyed"
	"sweeper/internal/modules/audit"
	"sweeper/internal/storage"
	"sweeper/internal/timers"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	var pending keyed.Store
	if cfg.RedisAddr != "" {
		redisStore := keyed.NewRedisStore(cfg.RedisAddr, "sweeper:")
		if err := redisStore.Ping(context.Background()); err != nil {
			logger.Fatal("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer redisStore.Close()
		pending = redisStore
	} else {
		pending = keyed.NewMemoryStore()
	}

	auditLogger := audit.NewLogger(store, logger)
	sched := timers.NewScheduler(time.Duration(cfg.Timers.MaxWaitHours)*time.Hour, logger)

	botSvc, err := bot.New(cfg, logger, store, sched, pending, auditLogger)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := botSvc.AntiSpam().Refresh(ctx); err != nil {
		logger.Warn("initial antispam refresh failed", zap.Error(err))
	}
	go botSvc.AntiSpam().Run(ctx)

	// Mutes and reminders that came due while the process was down fire
	// immediately during reload.
	if err := botSvc.Mutes().Reload(ctx); err != nil {
		logger.Error("mute reload failed", zap.Error(err))
	}
	if err := botSvc.Reminders().Reload(ctx); err != nil {
		logger.Error("reminder reload failed", zap.Error(err))
	}

	var server *http.Server
	if cfg.Health.Enabled {
		server = &http.Server{Addr: cfg.Health.Addr}
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if server != nil {
		_ = server.Shutdown(shutdownCtx)
	}
	botSvc.Close(shutdownCtx)
}
