// Package finnhub implements the gateway to the Finnhub market-data API:
// REST lookups for quotes, company profiles, financial metrics, and
// historical candles, plus the websocket trade stream.
//
// REST failures surface as errors; the aggregator resolves them into absent
// values so they never propagate further up.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production Finnhub REST endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Quote is the current and previous-session closing price for a symbol.
// Finnhub reports zeros for unknown symbols rather than an error.
type Quote struct {
	Current   float64 `json:"c"`
	PrevClose float64 `json:"pc"`
}

// Metrics holds the basic financial metrics the tracker displays. Each field
// is independently nullable; Finnhub omits metrics it has no data for.
type Metrics struct {
	EPS           *float64
	PERatio       *float64
	DividendYield *float64
}

// Client is an HTTP client for the Finnhub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a Client authenticated with token. An empty baseURL
// selects the production endpoint.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// get performs an authenticated GET against path and decodes the JSON body
// into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("token", c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// GetQuote fetches the current quote for symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	q := &Quote{}
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, q); err != nil {
		return nil, err
	}
	return q, nil
}

// CompanyName fetches the company name from the profile endpoint. An empty
// string means Finnhub has no profile for the symbol.
func (c *Client) CompanyName(ctx context.Context, symbol string) (string, error) {
	var profile struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &profile); err != nil {
		return "", err
	}
	return profile.Name, nil
}

// Financials fetches basic financial metrics (EPS, PE ratio, dividend yield)
// for symbol. Metrics absent upstream come back as nil fields.
func (c *Client) Financials(ctx context.Context, symbol string) (*Metrics, error) {
	var resp struct {
		Metric struct {
			EPSTTM           *float64 `json:"epsTTM"`
			PETTM            *float64 `json:"peTTM"`
			DividendYieldTTM *float64 `json:"currentDividendYieldTTM"`
		} `json:"metric"`
	}
	if err := c.get(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}}, &resp); err != nil {
		return nil, err
	}
	return &Metrics{
		EPS:           resp.Metric.EPSTTM,
		PERatio:       resp.Metric.PETTM,
		DividendYield: resp.Metric.DividendYieldTTM,
	}, nil
}

// closeInWindow fetches daily candles over [from, to] and returns the first
// close, or nil when the range holds no trading data.
func (c *Client) closeInWindow(ctx context.Context, symbol string, from, to time.Time) (*float64, error) {
	var resp struct {
		Status string    `json:"s"`
		Close  []float64 `json:"c"`
	}
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {strconv.FormatInt(from.Unix(), 10)},
		"to":         {strconv.FormatInt(to.Unix(), 10)},
	}
	if err := c.get(ctx, "/stock/candle", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" || len(resp.Close) == 0 {
		return nil, nil
	}
	first := resp.Close[0]
	return &first, nil
}

// YearStartClose returns the first daily close of the current calendar year.
// The ten-day window from January 1st absorbs non-trading days.
func (c *Client) YearStartClose(ctx context.Context, symbol string) (*float64, error) {
	start := time.Date(c.now().UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return c.closeInWindow(ctx, symbol, start, start.AddDate(0, 0, 10))
}

// TenYearClose returns the first daily close from roughly ten years ago
// (365-day years; a five-day window captures a trading day).
func (c *Client) TenYearClose(ctx context.Context, symbol string) (*float64, error) {
	day := c.now().UTC().AddDate(0, 0, -365*10)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return c.closeInWindow(ctx, symbol, start, start.AddDate(0, 0, 5))
}
