package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mfeher/webdispatch/internal/api"
	"github.com/mfeher/webdispatch/internal/cache"
	"github.com/mfeher/webdispatch/internal/config"
	"github.com/mfeher/webdispatch/internal/model"
	"github.com/mfeher/webdispatch/internal/queue"
	"github.com/mfeher/webdispatch/internal/scheduler"
	"github.com/mfeher/webdispatch/internal/session"
	"github.com/mfeher/webdispatch/internal/store"
	"github.com/mfeher/webdispatch/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	fileStore := store.NewFileStore(cfg.Store.Path)
	svc := queue.NewService(fileStore)

	bridge := session.NewBridgeClient(cfg.Bridge.URL, session.BridgeOptions{
		Headless:  cfg.Bridge.Headless,
		AuthState: cfg.Bridge.AuthState,
		OpTimeout: cfg.Bridge.DeliverTimeout,
	})

	dispatcher := worker.NewDispatcher(fileStore, bridge)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		deliveryLog := cache.NewRedisDeliveryLog(rdb, cfg.Redis.TTL)

		dispatcher.WithSentHook(func(ctx context.Context, m model.Message) {
			if err := deliveryLog.RecordSent(ctx, m.ID, m.ThreadTarget, *m.SentAt); err != nil {
				slog.Warn("delivery log write failed", "id", m.ID, "error", err)
			}
		})
	}

	sched, err := scheduler.New(cfg.Worker.Interval, dispatcher.RunCycle)
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	if cfg.Worker.AutoStart {
		sched.Start()
	}

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: loggingMiddleware(api.Router(api.NewHandler(svc, sched))),
	}

	go func() {
		slog.Info("webdispatch listening",
			"addr", cfg.Server.Address,
			"interval", cfg.Worker.Interval.String(),
			"autostart", cfg.Worker.AutoStart,
			"redis", cfg.Redis.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
