package live

import (
	"sync"
	"testing"
)

func TestPriceTableLatestWins(t *testing.T) {
	pt := NewPriceTable()

	pt.Set("AAPL", 100.0)
	pt.Set("AAPL", 105.5)

	got, ok := pt.Get("AAPL")
	if !ok {
		t.Fatal("Get returned no price for AAPL")
	}
	if got != 105.5 {
		t.Errorf("Get(AAPL) = %v, want 105.5", got)
	}
}

func TestPriceTableMissingSymbol(t *testing.T) {
	pt := NewPriceTable()

	if _, ok := pt.Get("MSFT"); ok {
		t.Error("Get should report absence for a symbol with no ticks")
	}
}

func TestPriceTableConcurrentAccess(t *testing.T) {
	pt := NewPriceTable()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			pt.Set("TSLA", float64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			pt.Get("TSLA")
		}
	}()
	wg.Wait()

	if got, ok := pt.Get("TSLA"); !ok || got != 999 {
		t.Errorf("final price = %v (ok=%v), want 999", got, ok)
	}
}
