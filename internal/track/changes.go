// Package track aggregates per-ticker market data into display records and
// orchestrates the tool's three run modes: one-shot display, background
// cache-refresh daemon, and live watch.
package track

import "pricetrack/internal/domain"

// PctChange returns the percentage change from base to current, or nil when
// either input is missing or base is zero (the division would be undefined).
func PctChange(current, base *float64) *float64 {
	if current == nil || base == nil || *base == 0 {
		return nil
	}
	return domain.Float64((*current - *base) / *base * 100)
}
