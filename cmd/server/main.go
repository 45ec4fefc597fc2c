package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chartfeed/internal/config"
	"chartfeed/internal/feed"
	"chartfeed/internal/feed/cache"
	"chartfeed/internal/feed/deriv"
	"chartfeed/internal/feed/ratelimit"
	"chartfeed/internal/logger"
	"chartfeed/internal/metrics"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.WithLevel(logger.Level(cfg.Log.Level)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New(nil)
	client := deriv.NewClientFromConfig(cfg.Feed, deriv.WithObserver(m.ObserveFeedCall))

	var history feed.HistorySource = client
	history = ratelimit.Wrap(history, cfg.Limits.MaxRequestsPerMinute, cfg.Limits.Burst,
		time.Duration(cfg.Limits.MinRequestIntervalSec)*time.Second)
	if cfg.Cache.TTLSeconds > 0 {
		history = &cache.Source{
			S:            history,
			TTL:          time.Duration(cfg.Cache.TTLSeconds) * time.Second,
			MaxItems:     cfg.Cache.MaxItems,
			FetchTimeout: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
		}
	}

	a := &api{
		history:   history,
		contracts: client,
		metrics:   m,
		log:       log,
		timeout:   time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
		maxBody:   cfg.Server.MaxBodyBytes,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      a.timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", logger.NewField("addr", srv.Addr), logger.NewField("feed", client.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err)
	}
}
