// Package display renders ticker records as a terminal table.
package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"pricetrack/internal/domain"
)

// Styles.
var (
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Columns selects which optional columns the table shows. The base columns
// (ticker, company name, current price, daily change) are always present.
type Columns struct {
	EPS           bool
	PERatio       bool
	Dividend      bool
	YTDChange     bool
	TenYearChange bool
}

// Table renders record lists to a writer. It implements track.Renderer.
type Table struct {
	out  io.Writer
	cols Columns
}

// New creates a Table writing to out with the given optional columns.
func New(out io.Writer, cols Columns) *Table {
	return &Table{out: out, cols: cols}
}

// headers returns the active column titles in display order.
func (t *Table) headers() []string {
	h := []string{"Ticker", "Company Name", "Current Price", "Daily % Change"}
	if t.cols.EPS {
		h = append(h, "EPS")
	}
	if t.cols.PERatio {
		h = append(h, "PE Ratio")
	}
	if t.cols.Dividend {
		h = append(h, "Dividend")
	}
	if t.cols.YTDChange {
		h = append(h, "YTD % Change")
	}
	if t.cols.TenYearChange {
		h = append(h, "10-Year % Change")
	}
	return h
}

// row builds the cells for one record. A failure record shows its message in
// the company-name column and leaves the rest blank.
func (t *Table) row(rec domain.Record, width int) []string {
	if rec.Unavailable() {
		cells := make([]string, width)
		cells[0] = rec.Symbol
		cells[1] = rec.Message
		return cells
	}

	name := "N/A"
	if rec.CompanyName != nil {
		name = *rec.CompanyName
	}
	cells := []string{rec.Symbol, name, FormatValue(rec.CurrentPrice), FormatPercent(rec.DailyChange)}
	if t.cols.EPS {
		cells = append(cells, FormatValue(rec.EPS))
	}
	if t.cols.PERatio {
		cells = append(cells, FormatValue(rec.PERatio))
	}
	if t.cols.Dividend {
		cells = append(cells, FormatValue(rec.DividendYield))
	}
	if t.cols.YTDChange {
		cells = append(cells, FormatPercent(rec.YTDChange))
	}
	if t.cols.TenYearChange {
		cells = append(cells, FormatPercent(rec.TenYearChange))
	}
	return cells
}

// Render draws the full record list as one table.
func (t *Table) Render(records []domain.Record) {
	headers := t.headers()

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("245"))).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers(applyHeaderStyle(headers)...)

	for _, rec := range records {
		tbl.Row(t.row(rec, len(headers))...)
	}

	fmt.Fprintln(t.out, tbl.Render())
}

// StaleFallback prints the consolidated warning for symbols whose rows came
// from stale cache entries. Shown after the table, never interleaved with it.
func (t *Table) StaleFallback(symbols []string) {
	fmt.Fprintln(t.out, warnStyle.Render("Warning: used cached data for some tickers due to refresh failures:"))
	for _, sym := range symbols {
		fmt.Fprintln(t.out, warnStyle.Render("- "+sym))
	}
}

// Clear wipes the screen and homes the cursor before a watch-mode rerender.
func (t *Table) Clear() {
	fmt.Fprint(t.out, "\033[2J\033[H")
}

func applyHeaderStyle(headers []string) []string {
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = headerStyle.Render(h)
	}
	return styled
}

// FormatValue formats a nullable price or metric to two decimals, N/A when
// absent.
func FormatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatPercent formats a nullable percentage change, colored green for
// gains and red for losses; zero stays unstyled.
func FormatPercent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	s := fmt.Sprintf("%.2f%%", *v)
	switch {
	case *v > 0:
		return gainStyle.Render(s)
	case *v < 0:
		return lossStyle.Render(s)
	default:
		return s
	}
}
