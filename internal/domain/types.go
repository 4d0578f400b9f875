// Package domain defines the shared data types exchanged between the
// aggregator, cache, orchestrator, and display layers.
package domain

// TickerSpec identifies one configured instrument. Name is an optional
// user-supplied display name; when set it always overrides the provider's
// company profile.
type TickerSpec struct {
	Symbol string
	Name   string
}

// Record is the aggregated result for one ticker. It has exactly two shapes:
// a successful aggregation populates the data fields and leaves Message
// empty, while an unfetchable ticker populates only Symbol and Message.
// Consumers must branch on Unavailable before touching the data fields.
//
// All numeric fields are independently nullable; nil means the upstream
// source lacked the value or a computation involving it was undefined.
//
// The JSON tags fix the on-disk cache payload shape.
type Record struct {
	Symbol        string   `json:"ticker"`
	CompanyName   *string  `json:"company_name"`
	CurrentPrice  *float64 `json:"current_price"`
	EPS           *float64 `json:"eps"`
	PERatio       *float64 `json:"pe_ratio"`
	DividendYield *float64 `json:"dividend"`
	DailyChange   *float64 `json:"daily_change"`
	YTDChange     *float64 `json:"ytd_change"`
	TenYearChange *float64 `json:"ten_year_change"`
	Message       string   `json:"message,omitempty"`
}

// Unavailable reports whether r is the failure variant.
func (r Record) Unavailable() bool { return r.Message != "" }

// NewUnavailable builds the failure variant of Record for a symbol.
func NewUnavailable(symbol, message string) Record {
	return Record{Symbol: symbol, Message: message}
}

// Snapshot holds the static portion of a ticker's data for watch mode,
// captured once per session. BaselinePrice is the current price at capture
// time; the render loop supersedes it with a live tick when one exists.
// Like Record, a non-empty Message marks the failure variant.
type Snapshot struct {
	Symbol        string
	Message       string
	CompanyName   *string
	PrevClose     *float64
	BaselinePrice *float64
	EPS           *float64
	PERatio       *float64
	DividendYield *float64
	YTDPrice      *float64
	TenYearPrice  *float64
}

// Unavailable reports whether s is the failure variant.
func (s Snapshot) Unavailable() bool { return s.Message != "" }

// Float64 returns a pointer to v. Convenience for building nullable fields.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
