// Package live provides a shared in-memory table of the latest streamed
// price per symbol, written by the stream goroutine and read by the watch
// render loop.
package live

import "sync"

// PriceTable holds the most recent streamed price for each symbol. The stream
// delivery callback is the sole writer and the render loop the sole reader;
// the lock is held only for the duration of a single get or set, never across
// a whole render pass.
type PriceTable struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewPriceTable creates an empty price table.
func NewPriceTable() *PriceTable {
	return &PriceTable{prices: make(map[string]float64)}
}

// Set records the latest price for a symbol, replacing any earlier tick.
func (t *PriceTable) Set(symbol string, price float64) {
	t.mu.Lock()
	t.prices[symbol] = price
	t.mu.Unlock()
}

// Get returns the latest price for a symbol. A symbol with no tick yet is
// not an error; callers fall back to their static baseline.
func (t *PriceTable) Get(symbol string) (float64, bool) {
	t.mu.RLock()
	p, ok := t.prices[symbol]
	t.mu.RUnlock()
	return p, ok
}

// Len returns the number of symbols with at least one tick (for logging).
func (t *PriceTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.prices)
}
