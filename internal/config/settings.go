package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"pricetrack/internal/domain"
)

// ---------------------------------------------------------------------------
// Display settings (settings.json)
// ---------------------------------------------------------------------------

// Settings are the user's display and caching preferences.
type Settings struct {
	Columns       Columns       `json:"columns"`
	Cache         CacheSettings `json:"cache"`
	WatchInterval float64       `json:"watch_interval"` // seconds
}

// Columns selects the optional metric columns.
type Columns struct {
	EPS           bool `json:"eps"`
	PERatio       bool `json:"pe_ratio"`
	Dividend      bool `json:"dividend"`
	YTDChange     bool `json:"ytd_change"`
	TenYearChange bool `json:"ten_year_change"`
}

// CacheSettings controls the persistent cache. Interval is in minutes and
// doubles as the daemon's cycle spacing.
type CacheSettings struct {
	Enabled  bool `json:"enabled"`
	Interval int  `json:"interval"`
}

// DefaultSettings returns the settings used when the file is missing or
// invalid: no optional columns, caching disabled, hourly interval, ten-second
// watch refresh.
func DefaultSettings() Settings {
	return Settings{
		Cache:         CacheSettings{Enabled: false, Interval: 60},
		WatchInterval: 10,
	}
}

// LoadSettings reads settings from a JSON file. Missing keys keep their
// defaults; a missing or invalid file logs a warning and returns the
// defaults wholesale.
func LoadSettings(path string, log *slog.Logger) Settings {
	if log == nil {
		log = slog.Default()
	}

	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("could not load settings, using defaults", "path", path, "error", err)
		return DefaultSettings()
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Warn("could not parse settings, using defaults", "path", path, "error", err)
		return DefaultSettings()
	}
	if settings.Cache.Interval <= 0 {
		settings.Cache.Interval = DefaultSettings().Cache.Interval
	}
	if settings.WatchInterval <= 0 {
		settings.WatchInterval = DefaultSettings().WatchInterval
	}
	return settings
}

// ---------------------------------------------------------------------------
// Ticker list (tickers.json)
// ---------------------------------------------------------------------------

// LoadTickers reads the ticker list from a JSON file. Entries may be plain
// strings ("AAPL") or objects ({"ticker": "AAPL", "name": "Apple Inc."}).
// Invalid entries are skipped with a warning; an unreadable or malformed
// file is an error, since the tool cannot run without tickers.
func LoadTickers(path string, log *slog.Logger) ([]domain.TickerSpec, error) {
	if log == nil {
		log = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tickers: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tickers must be a JSON list: %w", err)
	}

	tickers := make([]domain.TickerSpec, 0, len(raw))
	for _, item := range raw {
		var symbol string
		if err := json.Unmarshal(item, &symbol); err == nil {
			tickers = append(tickers, domain.TickerSpec{Symbol: symbol})
			continue
		}

		var obj struct {
			Ticker string `json:"ticker"`
			Name   any    `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.Ticker == "" {
			log.Warn("skipping invalid ticker entry", "entry", string(item))
			continue
		}

		spec := domain.TickerSpec{Symbol: obj.Ticker}
		if obj.Name != nil {
			if name, ok := obj.Name.(string); ok {
				spec.Name = name
			} else {
				log.Warn("ignoring non-string ticker name", "symbol", obj.Ticker)
			}
		}
		tickers = append(tickers, spec)
	}
	return tickers, nil
}
