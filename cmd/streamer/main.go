package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"chartfeed/internal/config"
	"chartfeed/internal/feed"
	"chartfeed/internal/feed/deriv"
	"chartfeed/internal/logger"
	"chartfeed/internal/metrics"
	"chartfeed/internal/publish"
)

func main() {
	var (
		configPath  string
		metricsAddr string
		symbolsCSV  string
	)
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.StringVar(&metricsAddr, "metrics-addr", ":9090", "address serving /metrics, empty to disable")
	flag.StringVar(&symbolsCSV, "symbols", "", "comma-separated symbols, overrides stream.symbols")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.WithLevel(logger.Level(cfg.Log.Level)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if symbolsCSV != "" {
		cfg.Stream.Symbols = config.SplitList(symbolsCSV)
	}
	err = run(cfg, log, metricsAddr)
	if err != nil {
		log.Error(err)
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Interface, metricsAddr string) error {
	symbols := cfg.Stream.Symbols
	if len(symbols) == 0 {
		return errors.New("no symbols to stream; set STREAM_SYMBOLS or -symbols")
	}
	style := feed.Style(cfg.Stream.Style)
	if !style.IsAvailable() {
		return fmt.Errorf("unknown stream style %q", cfg.Stream.Style)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := rdb.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	m := metrics.New(nil)
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	s := &streamer{
		sub:         deriv.NewClientFromConfig(cfg.Feed, deriv.WithObserver(m.ObserveFeedCall)),
		pub:         publish.New(rdb, cfg.Redis.ChannelPrefix),
		metrics:     m,
		log:         log,
		style:       style,
		count:       cfg.Stream.Count,
		granularity: cfg.Stream.Granularity,
	}
	log.Info("streaming", logger.NewField("symbols", symbols), logger.NewField("redis", cfg.Redis.Addr))
	if err := s.run(ctx, symbols); err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}
