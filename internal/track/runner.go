package track

import (
	"context"
	"log/slog"
	"time"

	"pricetrack/internal/domain"
	"pricetrack/internal/live"
	"pricetrack/internal/util"
)

// Renderer is the presentation surface the orchestrator drives.
type Renderer interface {
	// Render draws the full record list, replacing any prior output.
	Render(records []domain.Record)

	// StaleFallback reports, after the table, the symbols whose rows came
	// from stale cache entries because a live fetch failed.
	StaleFallback(symbols []string)

	// Clear wipes the screen before a watch-mode rerender.
	Clear()
}

// Store is the cache surface the orchestrator consumes. *cache.Cache
// satisfies it.
type Store interface {
	GetFresh(symbol string, maxAge time.Duration) (domain.Record, bool)
	Get(symbol string) (domain.Record, bool)
	Update(symbol string, rec domain.Record)
}

// SleepFunc pauses for d or until ctx is cancelled. The orchestrator's loops
// sleep through it so tests can drive many cycles without wall-clock delay.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Options carries the per-run settings the orchestrator honors.
type Options struct {
	Wants        Wants
	CacheEnabled bool

	// CacheMaxAge bounds one-shot freshness reads and spaces daemon cycles.
	CacheMaxAge time.Duration
}

// Runner orchestrates the three run modes over a gateway, a cache, and a
// renderer. Source and Renderer are required; Cache may be nil only when
// caching is disabled.
type Runner struct {
	Source   Source
	Cache    Store
	Renderer Renderer

	// Limiter paces daemon-mode fetches; nil falls back to a one-second
	// pause between tickers.
	Limiter *util.RateLimiter

	Log   *slog.Logger
	Sleep SleepFunc
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return defaultSleep(ctx, d)
}

// RunOnce processes each ticker in listed order and renders the result set
// once. With caching enabled it serves fresh entries without a network call
// (unless forceRefresh bypasses the freshness check), writes back successful
// fetches, and falls back to stale entries when a fetch fails, reporting
// those symbols in one consolidated warning after the table.
func (r *Runner) RunOnce(ctx context.Context, tickers []domain.TickerSpec, opts Options, forceRefresh bool) {
	records := make([]domain.Record, 0, len(tickers))
	var stale []string

	for _, spec := range tickers {
		if opts.CacheEnabled && !forceRefresh {
			if rec, ok := r.Cache.GetFresh(spec.Symbol, opts.CacheMaxAge); ok {
				records = append(records, rec)
				continue
			}
		}

		rec := Aggregate(ctx, r.Source, spec, opts.Wants)
		if !rec.Unavailable() {
			if opts.CacheEnabled {
				r.Cache.Update(spec.Symbol, rec)
			}
			records = append(records, rec)
			continue
		}

		if opts.CacheEnabled {
			if cached, ok := r.Cache.Get(spec.Symbol); ok {
				records = append(records, cached)
				stale = append(stale, spec.Symbol)
				continue
			}
		}
		records = append(records, rec)
	}

	r.Renderer.Render(records)
	if len(stale) > 0 {
		r.Renderer.StaleFallback(stale)
	}
}

// RunDaemon keeps the cache warm until ctx is cancelled. Every cycle fetches
// all tickers in order, caching successes unconditionally and skipping
// failures; per-ticker pacing respects the upstream rate limit, and cycles
// are spaced by the cache interval. Individual failures never abort a cycle.
func (r *Runner) RunDaemon(ctx context.Context, tickers []domain.TickerSpec, opts Options) error {
	log := r.logger()
	for {
		updated := 0
		for _, spec := range tickers {
			if err := r.pace(ctx); err != nil {
				return err
			}
			rec := Aggregate(ctx, r.Source, spec, opts.Wants)
			if rec.Unavailable() {
				log.Warn("fetch failed, skipping this cycle", "symbol", spec.Symbol)
				continue
			}
			r.Cache.Update(spec.Symbol, rec)
			updated++
		}
		log.Info("cache refresh pass complete", "updated", updated, "tickers", len(tickers))

		if err := r.sleep(ctx, opts.CacheMaxAge); err != nil {
			return err
		}
	}
}

func (r *Runner) pace(ctx context.Context) error {
	if r.Limiter != nil {
		return r.Limiter.Wait(ctx)
	}
	return r.sleep(ctx, time.Second)
}

// RunWatch drives the live display loop: one static snapshot per ticker up
// front, then a rerender every interval with the latest streamed price (or
// the snapshot baseline when no tick has arrived). The caller starts the
// stream feeding prices before invoking RunWatch. Context cancellation is the
// designed clean exit, so RunWatch returns nil.
func (r *Runner) RunWatch(ctx context.Context, tickers []domain.TickerSpec, prices *live.PriceTable, opts Options, interval time.Duration) error {
	snapshots := make([]domain.Snapshot, 0, len(tickers))
	for _, spec := range tickers {
		snapshots = append(snapshots, AggregateStatic(ctx, r.Source, spec, opts.Wants))
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		records := make([]domain.Record, 0, len(snapshots))
		for _, snap := range snapshots {
			records = append(records, LiveRecord(snap, prices))
		}
		r.Renderer.Clear()
		r.Renderer.Render(records)

		if err := r.sleep(ctx, interval); err != nil {
			return nil
		}
	}
}

// LiveRecord builds the rendered record for one snapshot, preferring the
// latest streamed price over the captured baseline and recomputing all three
// percentage changes against the snapshot's base prices. Failure snapshots
// pass through unchanged.
func LiveRecord(snap domain.Snapshot, prices *live.PriceTable) domain.Record {
	if snap.Unavailable() {
		return domain.NewUnavailable(snap.Symbol, snap.Message)
	}

	current := snap.BaselinePrice
	if p, ok := prices.Get(snap.Symbol); ok {
		current = domain.Float64(p)
	}

	return domain.Record{
		Symbol:        snap.Symbol,
		CompanyName:   snap.CompanyName,
		CurrentPrice:  current,
		EPS:           snap.EPS,
		PERatio:       snap.PERatio,
		DividendYield: snap.DividendYield,
		DailyChange:   PctChange(current, snap.PrevClose),
		YTDChange:     PctChange(current, snap.YTDPrice),
		TenYearChange: PctChange(current, snap.TenYearPrice),
	}
}
