// =============================================================================
// sheet2jpk - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - sheet     (produces Rows and Ledgers from a workbook)
//   - jpkvat    (converts Rows into typed invoice records)
//   - config    (carries the column mapping)
//   - converter (moves Ledgers through the pipeline)
//
// =============================================================================

package types

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// ROW TYPES
// =============================================================================

// Row is a single spreadsheet row as delivered by a spreadsheet driver.
// Cell values are untyped: strings, numbers or time.Time values, exactly as
// the driver could read them.
type Row struct {
	// Line is the 1-based row number in the source sheet.
	// Useful for error reporting.
	Line int

	// Cells maps a column header to the cell value in this row.
	Cells map[string]any
}

// Get returns the raw value stored under the given column header, or nil.
func (r Row) Get(column string) any {
	if r.Cells == nil {
		return nil
	}
	return r.Cells[column]
}

// Text returns the cell value as trimmed text. Missing cells are "".
func (r Row) Text(column string) string {
	switch v := r.Get(column).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger holds the rows of one sheet split into sales and purchases and
// grouped by reporting period key ("YYYY/MM").
type Ledger struct {
	// Sales maps a period key to the sales rows of that period.
	Sales map[string][]Row

	// Purchases maps a period key to the purchase rows of that period.
	Purchases map[string][]Row

	// Skipped lists rows the driver could not assign to a record set or period.
	Skipped []SkippedRow
}

// SkippedRow describes a row that was left out of the ledger.
type SkippedRow struct {
	Line   int
	Reason string
}

// NewLedger returns an empty ledger ready for use.
func NewLedger() *Ledger {
	return &Ledger{
		Sales:     make(map[string][]Row),
		Purchases: make(map[string][]Row),
	}
}

// Count returns the number of sales and purchase rows in the given period.
func (l *Ledger) Count(period string) int {
	return len(l.Sales[period]) + len(l.Purchases[period])
}

// Periods returns the sorted keys of all periods holding at least one row.
// Sales and purchases are counted together.
func (l *Ledger) Periods() []string {
	counts := make(map[string]int)
	for period, rows := range l.Sales {
		counts[period] += len(rows)
	}
	for period, rows := range l.Purchases {
		counts[period] += len(rows)
	}

	periods := make([]string, 0, len(counts))
	for period, n := range counts {
		if n > 0 {
			periods = append(periods, period)
		}
	}
	sort.Strings(periods)

	return periods
}

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// Columns names the sheet header of every invoice attribute.
//
// CUSTOMIZATION: Override these in the `columns:` section of config.yaml when
// a workbook uses different header captions.
type Columns struct {
	Number    string `yaml:"number"`
	Document  string `yaml:"document"`
	IssueDate string `yaml:"issue_date"`
	SaleDate  string `yaml:"sale_date"`
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	TaxID     string `yaml:"tax_id"`
	Net       string `yaml:"net"`
	VAT       string `yaml:"vat"`
}

// DefaultColumns returns the header captions used by the reference workbook.
func DefaultColumns() Columns {
	return Columns{
		Number:    "LP",
		Document:  "Nr Dokumentu",
		IssueDate: "Data Wystawienia",
		SaleDate:  "Data Sprzedaży",
		Name:      "Nazwa Kontrahenta",
		Address:   "Adres Kontrahenta",
		TaxID:     "NIP",
		Net:       "Netto",
		VAT:       "Kwota VAT",
	}
}

// WithDefaults fills every empty caption from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&c.Number, d.Number)
	fill(&c.Document, d.Document)
	fill(&c.IssueDate, d.IssueDate)
	fill(&c.SaleDate, d.SaleDate)
	fill(&c.Name, d.Name)
	fill(&c.Address, d.Address)
	fill(&c.TaxID, d.TaxID)
	fill(&c.Net, d.Net)
	fill(&c.VAT, d.VAT)
	return c
}
