package track

import (
	"context"

	"pricetrack/internal/domain"
	"pricetrack/internal/finnhub"
)

// unavailableMessage is the user-facing reason shown for tickers whose quote
// could not be fetched.
const unavailableMessage = "Data unavailable"

// Source is the read surface of the market-data gateway the aggregator
// consumes. *finnhub.Client satisfies it; tests substitute counting fakes.
type Source interface {
	GetQuote(ctx context.Context, symbol string) (*finnhub.Quote, error)
	CompanyName(ctx context.Context, symbol string) (string, error)
	Financials(ctx context.Context, symbol string) (*finnhub.Metrics, error)
	YearStartClose(ctx context.Context, symbol string) (*float64, error)
	TenYearClose(ctx context.Context, symbol string) (*float64, error)
}

// Wants selects the optional metrics a run should resolve. The historical
// closes are fetched only when their change column is wanted; that gating
// keeps the per-ticker API call count down and is part of the contract, not
// an optimization.
type Wants struct {
	EPS           bool
	PERatio       bool
	Dividend      bool
	YTDChange     bool
	TenYearChange bool
}

// Aggregate composes gateway calls into one Record for spec. The quote is
// fetched first; if it is unobtainable the failure variant is returned and
// no further calls are made. Everything after the quote is best-effort:
// individual lookup failures become nil fields, never errors.
func Aggregate(ctx context.Context, src Source, spec domain.TickerSpec, wants Wants) domain.Record {
	quote, ok := fetchQuote(ctx, src, spec.Symbol)
	if !ok {
		return domain.NewUnavailable(spec.Symbol, unavailableMessage)
	}

	rec := domain.Record{
		Symbol:      spec.Symbol,
		CompanyName: resolveName(ctx, src, spec),
	}
	if m, err := src.Financials(ctx, spec.Symbol); err == nil && m != nil {
		rec.EPS = m.EPS
		rec.PERatio = m.PERatio
		rec.DividendYield = m.DividendYield
	}

	ytdPrice, tenYearPrice := fetchBasePrices(ctx, src, spec.Symbol, wants)

	current := domain.Float64(quote.Current)
	rec.CurrentPrice = current
	rec.DailyChange = PctChange(current, domain.Float64(quote.PrevClose))
	rec.YTDChange = PctChange(current, ytdPrice)
	rec.TenYearChange = PctChange(current, tenYearPrice)
	return rec
}

// AggregateStatic fetches the same data as Aggregate but returns the raw
// base prices instead of computed changes, for watch mode to recompute
// against live ticks on every render.
func AggregateStatic(ctx context.Context, src Source, spec domain.TickerSpec, wants Wants) domain.Snapshot {
	quote, ok := fetchQuote(ctx, src, spec.Symbol)
	if !ok {
		return domain.Snapshot{Symbol: spec.Symbol, Message: unavailableMessage}
	}

	snap := domain.Snapshot{
		Symbol:        spec.Symbol,
		CompanyName:   resolveName(ctx, src, spec),
		PrevClose:     domain.Float64(quote.PrevClose),
		BaselinePrice: domain.Float64(quote.Current),
	}
	if m, err := src.Financials(ctx, spec.Symbol); err == nil && m != nil {
		snap.EPS = m.EPS
		snap.PERatio = m.PERatio
		snap.DividendYield = m.DividendYield
	}
	snap.YTDPrice, snap.TenYearPrice = fetchBasePrices(ctx, src, spec.Symbol, wants)
	return snap
}

// fetchQuote returns the quote for symbol, reporting !ok for upstream errors
// or a zero current price. Finnhub reports c=0 for unknown symbols, so a
// zero price is treated as an invalid ticker; that heuristic would
// misclassify an instrument genuinely priced at zero.
func fetchQuote(ctx context.Context, src Source, symbol string) (*finnhub.Quote, bool) {
	quote, err := src.GetQuote(ctx, symbol)
	if err != nil || quote == nil || quote.Current == 0 {
		return nil, false
	}
	return quote, true
}

// resolveName applies the name precedence: a user-supplied display name wins
// outright (the profile endpoint is not consulted), otherwise the provider
// profile is queried, and failing that the name stays unset.
func resolveName(ctx context.Context, src Source, spec domain.TickerSpec) *string {
	if spec.Name != "" {
		return domain.String(spec.Name)
	}
	name, err := src.CompanyName(ctx, spec.Symbol)
	if err != nil || name == "" {
		return nil
	}
	return domain.String(name)
}

// fetchBasePrices resolves the historical base closes, calling the candle
// endpoint only for the periods actually wanted.
func fetchBasePrices(ctx context.Context, src Source, symbol string, wants Wants) (ytd, tenYear *float64) {
	if wants.YTDChange {
		ytd, _ = src.YearStartClose(ctx, symbol)
	}
	if wants.TenYearChange {
		tenYear, _ = src.TenYearClose(ctx, symbol)
	}
	return ytd, tenYear
}
