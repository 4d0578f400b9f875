// Command pricetrack displays real-time and historical price data for the
// configured stocks and ETFs.
//
// Modes:
//
//	pricetrack            one-shot table, cache-aware
//	pricetrack -refresh   one-shot, bypassing the cache freshness check
//	pricetrack -daemon    keep the cache warm in the background
//	pricetrack -watch     live-updating display fed by the trade stream
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricetrack/internal/cache"
	"pricetrack/internal/config"
	"pricetrack/internal/display"
	"pricetrack/internal/finnhub"
	"pricetrack/internal/live"
	"pricetrack/internal/track"
	"pricetrack/internal/util"
)

func main() {
	refresh := flag.Bool("refresh", false, "force fetching fresh data in one-shot mode")
	daemon := flag.Bool("daemon", false, "run in daemon mode, periodically updating the cache")
	watch := flag.Bool("watch", false, "run in watch mode with real-time price updates")
	interval := flag.Float64("interval", 0, "refresh interval in seconds for watch mode")
	flag.Parse()

	intervalSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "interval" {
			intervalSet = true
		}
	})

	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfgPath := "pricetrack.yaml"
	if p := os.Getenv("PRICETRACK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	// The credential is required before any network activity.
	if cfg.Finnhub.APIKey == "" {
		log.Fatal("FINNHUB_API_KEY is not set")
	}

	tickers, err := config.LoadTickers(cfg.Files.Tickers, logger)
	if err != nil {
		log.Fatalf("failed to load tickers: %v", err)
	}
	if len(tickers) == 0 {
		log.Fatal("no tickers to process")
	}

	settings := config.LoadSettings(cfg.Files.Settings, logger)

	opts := track.Options{
		Wants: track.Wants{
			EPS:           settings.Columns.EPS,
			PERatio:       settings.Columns.PERatio,
			Dividend:      settings.Columns.Dividend,
			YTDChange:     settings.Columns.YTDChange,
			TenYearChange: settings.Columns.TenYearChange,
		},
		CacheEnabled: settings.Cache.Enabled,
		CacheMaxAge:  time.Duration(settings.Cache.Interval) * time.Minute,
	}

	runner := &track.Runner{
		Source: finnhub.NewClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL),
		Cache:  cache.New(cfg.Files.Cache, logger),
		Renderer: display.New(os.Stdout, display.Columns{
			EPS:           settings.Columns.EPS,
			PERatio:       settings.Columns.PERatio,
			Dividend:      settings.Columns.Dividend,
			YTDChange:     settings.Columns.YTDChange,
			TenYearChange: settings.Columns.TenYearChange,
		}),
		Limiter: util.NewRateLimiter(cfg.Daemon.RateLimitPerMin),
		Log:     logger,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *daemon:
		if err := runner.RunDaemon(ctx, tickers, opts); err != nil && ctx.Err() == nil {
			log.Fatalf("daemon stopped: %v", err)
		}

	case *watch:
		watchEvery := time.Duration(settings.WatchInterval * float64(time.Second))
		if intervalSet {
			if *interval > 0 {
				watchEvery = time.Duration(*interval * float64(time.Second))
			} else {
				logger.Warn("interval must be positive, using settings value",
					"interval", *interval, "settings", settings.WatchInterval)
			}
		}

		prices := live.NewPriceTable()
		symbols := make([]string, len(tickers))
		for i, spec := range tickers {
			symbols[i] = spec.Symbol
		}
		stream := finnhub.NewStream(cfg.Finnhub.StreamURL, cfg.Finnhub.APIKey, symbols, prices, logger)
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("stream stopped", "error", err)
			}
		}()

		runner.RunWatch(ctx, tickers, prices, opts, watchEvery)
		logger.Info("stopping watch mode")

	default:
		runner.RunOnce(ctx, tickers, opts, *refresh)
	}
}
