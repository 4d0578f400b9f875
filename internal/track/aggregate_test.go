package track

import (
	"context"
	"errors"
	"math"
	"testing"

	"pricetrack/internal/domain"
	"pricetrack/internal/finnhub"
)

// fakeSource is a scriptable Source that counts calls per endpoint.
type fakeSource struct {
	quotes  map[string]*finnhub.Quote // missing symbol => error
	names   map[string]string
	metrics *finnhub.Metrics
	ytd     *float64
	tenYear *float64
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		quotes: map[string]*finnhub.Quote{},
		names:  map[string]string{},
		calls:  map[string]int{},
	}
}

func (f *fakeSource) GetQuote(_ context.Context, symbol string) (*finnhub.Quote, error) {
	f.calls["quote"]++
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, errors.New("api error")
	}
	return q, nil
}

func (f *fakeSource) CompanyName(_ context.Context, symbol string) (string, error) {
	f.calls["profile"]++
	return f.names[symbol], nil
}

func (f *fakeSource) Financials(_ context.Context, symbol string) (*finnhub.Metrics, error) {
	f.calls["financials"]++
	if f.metrics == nil {
		return nil, errors.New("api error")
	}
	return f.metrics, nil
}

func (f *fakeSource) YearStartClose(_ context.Context, symbol string) (*float64, error) {
	f.calls["candles"]++
	return f.ytd, nil
}

func (f *fakeSource) TenYearClose(_ context.Context, symbol string) (*float64, error) {
	f.calls["candles"]++
	return f.tenYear, nil
}

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestPctChangeTotality(t *testing.T) {
	if got := PctChange(nil, domain.Float64(100)); got != nil {
		t.Errorf("PctChange(nil, 100) = %v, want nil", *got)
	}
	if got := PctChange(domain.Float64(100), nil); got != nil {
		t.Errorf("PctChange(100, nil) = %v, want nil", *got)
	}
	if got := PctChange(domain.Float64(100), domain.Float64(0)); got != nil {
		t.Errorf("PctChange(100, 0) = %v, want nil", *got)
	}
	got := PctChange(domain.Float64(110), domain.Float64(100))
	if got == nil || !approxEqual(*got, 10.0) {
		t.Errorf("PctChange(110, 100) = %v, want 10.0", got)
	}
}

func TestAggregateShortCircuitOnQuoteFailure(t *testing.T) {
	src := newFakeSource() // no quotes scripted: every quote call errors

	rec := Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "ZZZZ"}, Wants{YTDChange: true, TenYearChange: true})

	if !rec.Unavailable() {
		t.Fatal("expected failure variant when the quote is unobtainable")
	}
	if rec.Message != "Data unavailable" {
		t.Errorf("Message = %q, want %q", rec.Message, "Data unavailable")
	}
	if src.calls["profile"] != 0 || src.calls["financials"] != 0 || src.calls["candles"] != 0 {
		t.Errorf("no further fetches expected after quote failure, got %v", src.calls)
	}
}

func TestAggregateZeroPriceIsInvalid(t *testing.T) {
	src := newFakeSource()
	src.quotes["DEAD"] = &finnhub.Quote{Current: 0, PrevClose: 12.5}

	rec := Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "DEAD"}, Wants{})

	if !rec.Unavailable() {
		t.Error("a zero current price should be treated as an invalid ticker")
	}
}

func TestAggregateNamePrecedence(t *testing.T) {
	src := newFakeSource()
	src.quotes["VTI"] = &finnhub.Quote{Current: 250, PrevClose: 248}
	src.names["VTI"] = "Provider Name"

	rec := Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "VTI", Name: "My Fund"}, Wants{})

	if src.calls["profile"] != 0 {
		t.Error("profile must not be queried when a display name is configured")
	}
	if rec.CompanyName == nil || *rec.CompanyName != "My Fund" {
		t.Errorf("CompanyName = %v, want the configured display name", rec.CompanyName)
	}
}

func TestAggregateProfileFallback(t *testing.T) {
	src := newFakeSource()
	src.quotes["AAPL"] = &finnhub.Quote{Current: 145.67, PrevClose: 144}
	src.names["AAPL"] = "Apple Inc."

	rec := Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "AAPL"}, Wants{})

	if src.calls["profile"] != 1 {
		t.Errorf("profile calls = %d, want 1", src.calls["profile"])
	}
	if rec.CompanyName == nil || *rec.CompanyName != "Apple Inc." {
		t.Errorf("CompanyName = %v, want provider profile name", rec.CompanyName)
	}
}

func TestAggregateConditionalHistoricalFetch(t *testing.T) {
	src := newFakeSource()
	src.quotes["AAPL"] = &finnhub.Quote{Current: 145.67, PrevClose: 144}

	Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "AAPL"}, Wants{})
	if src.calls["candles"] != 0 {
		t.Errorf("candle calls = %d, want 0 when no change column is wanted", src.calls["candles"])
	}

	Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "AAPL"}, Wants{YTDChange: true, TenYearChange: true})
	if src.calls["candles"] != 2 {
		t.Errorf("candle calls = %d, want 2 with both change columns wanted", src.calls["candles"])
	}
}

func TestAggregateComputesChanges(t *testing.T) {
	src := newFakeSource()
	src.quotes["AAPL"] = &finnhub.Quote{Current: 145.67, PrevClose: 144}
	src.metrics = &finnhub.Metrics{EPS: domain.Float64(6.05)}
	src.ytd = domain.Float64(130)
	src.tenYear = domain.Float64(29)

	rec := Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "AAPL"}, Wants{YTDChange: true, TenYearChange: true})

	if rec.Unavailable() {
		t.Fatalf("unexpected failure variant: %q", rec.Message)
	}
	if rec.CurrentPrice == nil || *rec.CurrentPrice != 145.67 {
		t.Errorf("CurrentPrice = %v, want 145.67", rec.CurrentPrice)
	}
	if rec.DailyChange == nil || !approxEqual(*rec.DailyChange, (145.67-144)/144*100) {
		t.Errorf("DailyChange = %v, want ≈1.16", rec.DailyChange)
	}
	if rec.YTDChange == nil || !approxEqual(*rec.YTDChange, (145.67-130)/130*100) {
		t.Errorf("YTDChange = %v", rec.YTDChange)
	}
	if rec.TenYearChange == nil || !approxEqual(*rec.TenYearChange, (145.67-29)/29*100) {
		t.Errorf("TenYearChange = %v", rec.TenYearChange)
	}
	if rec.EPS == nil || *rec.EPS != 6.05 {
		t.Errorf("EPS = %v, want 6.05", rec.EPS)
	}
	if rec.PERatio != nil {
		t.Error("PERatio should stay nil when the metric is absent upstream")
	}
}

func TestAggregateFinancialsFailureLeavesNils(t *testing.T) {
	src := newFakeSource()
	src.quotes["AAPL"] = &finnhub.Quote{Current: 145.67, PrevClose: 144}
	// metrics nil: Financials errors

	rec := Aggregate(context.Background(), src, domain.TickerSpec{Symbol: "AAPL"}, Wants{})

	if rec.Unavailable() {
		t.Fatal("metrics failure must not fail the whole record")
	}
	if rec.EPS != nil || rec.PERatio != nil || rec.DividendYield != nil {
		t.Error("all metric fields should be nil after a financials failure")
	}
}

func TestAggregateStaticKeepsBasePrices(t *testing.T) {
	src := newFakeSource()
	src.quotes["AAPL"] = &finnhub.Quote{Current: 100, PrevClose: 98}
	src.ytd = domain.Float64(90)
	src.tenYear = domain.Float64(25)

	snap := AggregateStatic(context.Background(), src, domain.TickerSpec{Symbol: "AAPL"}, Wants{YTDChange: true, TenYearChange: true})

	if snap.Unavailable() {
		t.Fatalf("unexpected failure variant: %q", snap.Message)
	}
	if snap.BaselinePrice == nil || *snap.BaselinePrice != 100 {
		t.Errorf("BaselinePrice = %v, want 100", snap.BaselinePrice)
	}
	if snap.PrevClose == nil || *snap.PrevClose != 98 {
		t.Errorf("PrevClose = %v, want 98", snap.PrevClose)
	}
	if snap.YTDPrice == nil || *snap.YTDPrice != 90 {
		t.Errorf("YTDPrice = %v, want 90", snap.YTDPrice)
	}
	if snap.TenYearPrice == nil || *snap.TenYearPrice != 25 {
		t.Errorf("TenYearPrice = %v, want 25", snap.TenYearPrice)
	}
}
