package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chartfeed/internal/config"
	"chartfeed/internal/feed"
	"chartfeed/internal/feed/deriv"
	"chartfeed/internal/feed/ratelimit"
	"chartfeed/internal/logger"
	"chartfeed/internal/normalize"
	"chartfeed/internal/quote"
)

type symbolQuotes struct {
	Symbol string        `json:"symbol"`
	Status string        `json:"status"`
	Quotes []quote.Quote `json:"quotes"`
}

type options struct {
	symbols     []string
	style       feed.Style
	count       int
	granularity int
	limit       int
}

type contractSource interface {
	OpenContract(ctx context.Context, contractID int64) (*feed.OpenContract, error)
}

func main() {
	var (
		symbolsCSV string
		style      string
		contractID int64
		timeoutSec int
		configPath string
		opts       options
	)
	flag.StringVar(&symbolsCSV, "symbols", "R_100", "comma-separated symbols")
	flag.StringVar(&style, "style", string(feed.StyleTicks), "history style: ticks or candles")
	flag.IntVar(&opts.count, "count", 100, "number of ticks or candles")
	flag.IntVar(&opts.granularity, "granularity", 60, "candle size in seconds")
	flag.Int64Var(&contractID, "contract", 0, "fetch an open contract's ticks instead of history")
	flag.IntVar(&timeoutSec, "timeout", 15, "timeout seconds")
	flag.IntVar(&opts.limit, "limit", 10, "max quotes printed per symbol (0 = all)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()
	opts.symbols = config.SplitList(symbolsCSV)
	opts.style = feed.Style(style)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.WithLevel(logger.Level(cfg.Log.Level)), logger.WithOutputPaths("stderr"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	client := deriv.NewClientFromConfig(cfg.Feed)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	var results []symbolQuotes
	if contractID > 0 {
		var r symbolQuotes
		r, err = fetchContract(ctx, client, contractID)
		results = []symbolQuotes{r}
	} else {
		src := ratelimit.Wrap(client, cfg.Limits.MaxRequestsPerMinute, cfg.Limits.Burst,
			time.Duration(cfg.Limits.MinRequestIntervalSec)*time.Second)
		results, err = fetchHistory(ctx, src, opts, log)
	}
	cancel()
	if err == nil {
		for i := range results {
			results[i] = trim(results[i], opts.limit)
		}
		err = printJSON(os.Stdout, results)
	}
	if err != nil {
		log.Error(err)
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func fetchContract(ctx context.Context, src contractSource, id int64) (symbolQuotes, error) {
	c, err := src.OpenContract(ctx, id)
	if err != nil {
		return symbolQuotes{}, fmt.Errorf("contract %d: %w", id, err)
	}
	quotes, err := normalize.ContractStream(c)
	if errors.Is(err, normalize.ErrIncompleteContract) {
		return symbolQuotes{Status: normalize.StatusIncomplete.String()}, nil
	}
	return symbolQuotes{Symbol: c.Underlying, Status: normalize.StatusOK.String(), Quotes: quotes}, err
}

// fetchHistory asks src for every symbol, at most four at a time. The first
// failure cancels the rest.
func fetchHistory(ctx context.Context, src feed.HistorySource, opts options, log logger.Interface) ([]symbolQuotes, error) {
	if len(opts.symbols) == 0 {
		return nil, errors.New("no symbols provided")
	}
	results := make([]symbolQuotes, len(opts.symbols))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, sym := range opts.symbols {
		g.Go(func() error {
			req := feed.HistoryRequest{Symbol: sym, Style: opts.style, Count: opts.count}
			if req.Style == feed.StyleCandles {
				req.Granularity = opts.granularity
			}
			resp, err := src.History(gctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", sym, err)
			}
			quotes, ok := normalize.History(resp)
			out := symbolQuotes{Symbol: sym, Status: normalize.StatusOK.String(), Quotes: quotes}
			if !ok {
				out.Status = normalize.StatusAbsent.String()
			}
			log.Info("fetched", logger.NewField("symbol", sym), logger.NewField("quotes", len(quotes)))
			mu.Lock()
			results[i] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func trim(s symbolQuotes, limit int) symbolQuotes {
	if limit > 0 && len(s.Quotes) > limit {
		s.Quotes = s.Quotes[len(s.Quotes)-limit:]
	}
	if s.Quotes == nil {
		s.Quotes = []quote.Quote{}
	}
	return s
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
