package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yymzk/calbridge/internal/adapters/http/api"
	"github.com/yymzk/calbridge/internal/adapters/repository"
	"github.com/yymzk/calbridge/internal/adapters/source"
	"github.com/yymzk/calbridge/internal/adapters/target"
	syncer "github.com/yymzk/calbridge/internal/app"
	"github.com/yymzk/calbridge/internal/config"
	"github.com/yymzk/calbridge/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Minute // POST /sync blocks for the whole cycle
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.NewSQLiteStore(cfg.CachePath)
	if err != nil {
		log.Error(ctx, "failed to open schedule cache", logger.Error(err))
		return
	}
	defer store.Close()

	src, err := source.NewHTTPClient(cfg.SourceBaseURL)
	if err != nil {
		log.Error(ctx, "bad source base url", logger.Error(err))
		return
	}
	tgt, err := target.NewHTTPClient(cfg.TargetBaseURL)
	if err != nil {
		log.Error(ctx, "bad target base url", logger.Error(err))
		return
	}

	engine := syncer.New(src, tgt, store, cfg,
		syncer.WithLogger(log),
		syncer.WithFetchRetries(cfg.FetchRetries),
	)

	sched := syncer.NewScheduler(cfg.SyncInterval(), func(jobCtx context.Context) error {
		return engine.Sync(jobCtx, cfg.TargetCalendarID)
	})
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(engine.Progress(), sched).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// First cycle without waiting a full interval.
	go func() {
		if err := sched.TriggerNow(ctx); err != nil {
			log.Warn(ctx, "initial sync failed", logger.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "stopped")
}
